// Package domain holds the Anki collection model: users, collections,
// decks, notetypes, notes, cards, review log entries and highlights,
// together with their validation rules.
package domain
