// Package task runs background jobs such as generating flashcards from a
// highlight. Tasks are persisted before they are queued so that a restart
// can rehydrate and resume them through a Registry of per-type factories.
package task
