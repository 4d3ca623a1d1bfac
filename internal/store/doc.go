// Package store declares the persistence interfaces for the collection
// model and the errors every implementation reports.
package store
