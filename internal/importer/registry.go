package importer

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
)

// MaxFileSize is the largest upload accepted, in bytes.
const MaxFileSize = 50 << 20

// Source is an uploaded file.
type Source struct {
	Name string
	Data []byte
}

// Ext returns the lowercased extension of the file name, including the dot.
func (s Source) Ext() string {
	return strings.ToLower(filepath.Ext(s.Name))
}

// Options tune a single parse.
type Options struct {
	// DeckFilter keeps only cards from the named deck (Anki packages only).
	DeckFilter string
}

// Parser turns one file format into flashcards.
type Parser interface {
	Parse(ctx context.Context, src Source, opts Options) (*Result, error)
}

// Registry maps file extensions to parsers.
type Registry struct {
	parsers      map[string]Parser
	descriptions map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers:      map[string]Parser{},
		descriptions: map[string]string{},
	}
}

// DefaultRegistry returns a registry with every built-in parser.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(".txt", TxtParser{}, "Anki text export (tab-separated with optional headers)")
	r.Register(".csv", CSVParser{}, "Comma-separated values")
	r.Register(".tsv", CSVParser{}, "Tab-separated values")
	r.Register(".xlsx", XLSXParser{}, "Microsoft Excel workbook")
	r.Register(".xls", XLSXParser{}, "Microsoft Excel 97-2003 workbook")
	r.Register(".apkg", APKGParser{}, "Anki deck package")
	r.Register(".colpkg", APKGParser{}, "Anki collection package")
	return r
}

// Register adds or replaces the parser for ext.
func (r *Registry) Register(ext string, p Parser, description string) {
	ext = strings.ToLower(ext)
	r.parsers[ext] = p
	r.descriptions[ext] = description
}

// Formats returns the registered extensions in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Description returns the human description of ext.
func (r *Registry) Description(ext string) string {
	if d, ok := r.descriptions[ext]; ok {
		return d
	}
	return "Unknown"
}

// Supported reports whether filename has a registered parser.
func (r *Registry) Supported(filename string) bool {
	_, ok := r.parsers[Source{Name: filename}.Ext()]
	return ok
}

// ParserFor returns the parser for filename or a *FormatError.
func (r *Registry) ParserFor(filename string) (Parser, error) {
	p, ok := r.parsers[Source{Name: filename}.Ext()]
	if !ok {
		expected := "None registered"
		if len(r.parsers) > 0 {
			expected = "Supported formats: " + strings.Join(r.Formats(), ", ")
		}
		return nil, &FormatError{Filename: filename, Expected: expected}
	}
	return p, nil
}

// Parse looks up the parser for src and runs it.
func (r *Registry) Parse(ctx context.Context, src Source, opts Options) (*Result, error) {
	p, err := r.ParserFor(src.Name)
	if err != nil {
		return nil, err
	}
	return p.Parse(ctx, src, opts)
}
