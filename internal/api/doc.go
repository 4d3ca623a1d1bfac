// Package api implements the HTTP handlers for auth, decks, cards, AI
// generation, highlights and imports. Handlers decode and validate requests,
// call the service layer, and map service errors to status codes and safe
// messages.
package api
