// Package importer reads flashcards from exported files: Anki text exports,
// CSV and TSV, Excel workbooks and Anki packages (.apkg, .colpkg).
//
// Parsers work on in-memory file contents and report per-row problems in the
// Result instead of failing the whole import. Only unreadable files
// (corrupt archives, unsupported formats) return an error.
package importer
