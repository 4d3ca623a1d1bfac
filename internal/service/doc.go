// Package service contains the application use cases. Services coordinate
// the stores defined in internal/store and the domain types, applying
// transactional boundaries when an operation writes to more than one
// store.
//
// Every operation is scoped to a user: a service resolves the user's
// collection first and only touches decks, notes and cards inside it.
//
// Errors that carry a message fit for API clients are returned as
// *ServiceError with Message set; everything else is wrapped with %w so the
// API layer can still match store and domain sentinels.
package service
