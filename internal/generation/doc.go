// Package generation defines the Generator interface through which the
// service asks a language model for flashcard content, along with the
// errors every implementation reports. The Gemini implementation lives in
// internal/platform/gemini.
package generation
