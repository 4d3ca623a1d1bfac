package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const (
	fieldSeparator   = "\x1f"
	maxDatabaseBytes = 512 << 20
	defaultAnkiDeck  = "Default"
)

// Database names in the order they are tried. Recent exports carry a
// placeholder collection.anki2 next to the real collection.anki21.
var packageDatabases = []string{"collection.anki21", "collection.anki2"}

// APKGParser reads Anki deck (.apkg) and collection (.colpkg) packages.
type APKGParser struct{}

func (APKGParser) Parse(ctx context.Context, src Source, opts Options) (*Result, error) {
	dbPath, cleanup, err := extractDatabase(src)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &PackageError{Msg: "failed to open Anki database", Err: err}
	}
	defer func() { _ = db.Close() }()

	pkg, err := readPackageInfo(ctx, db)
	if err != nil {
		return nil, err
	}

	res := newResult(src.Name)
	res.DeckDetected = len(pkg.decks) > 0
	res.Decks = pkg.deckNames()
	res.Settings = Settings{
		"decks":      pkg.decks,
		"models":     pkg.models,
		"note_count": pkg.noteCount,
		"card_count": pkg.cardCount,
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT n.id, n.flds, n.tags, c.did
		FROM notes n
		JOIN cards c ON c.nid = n.id
		ORDER BY n.id, c.did`)
	if err != nil {
		return nil, &PackageError{Msg: "database error", Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			noteID int64
			flds   string
			tags   string
			deckID int64
		)
		if err := rows.Scan(&noteID, &flds, &tags, &deckID); err != nil {
			return nil, &PackageError{Msg: "database error", Err: err}
		}

		deck, ok := pkg.decks[strconv.FormatInt(deckID, 10)]
		if !ok {
			deck = defaultAnkiDeck
		}
		if opts.DeckFilter != "" && !strings.EqualFold(deck, opts.DeckFilter) {
			continue
		}

		if card, msg := noteCard(noteID, flds, tags, deck, src.Name); msg != "" {
			res.AddError(msg)
		} else {
			res.AddCard(card)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &PackageError{Msg: "database error", Err: err}
	}

	res.finish("package")
	return res, nil
}

func noteCard(noteID int64, flds, tags, deck, source string) (Flashcard, string) {
	fields := strings.Split(flds, fieldSeparator)
	if len(fields) < 2 {
		return Flashcard{}, fmt.Sprintf("Note %d: Not enough fields", noteID)
	}

	front := strings.TrimSpace(fields[0])
	back := strings.TrimSpace(fields[1])
	hasHTML := ContainsHTML(front) || ContainsHTML(back)

	checkFront, checkBack := front, back
	if hasHTML {
		checkFront, checkBack = StripHTML(front), StripHTML(back)
	}
	if msg := validateSides(checkFront, checkBack, "Front", "Back"); msg != "" {
		return Flashcard{}, fmt.Sprintf("Note %d: %s", noteID, msg)
	}

	card := NewFlashcard(front, back, deck, strings.Fields(tags), source)
	card.HTMLEnabled = hasHTML
	if len(fields) > 2 {
		card.Extra = MergeExtra(fields[2:], "\n")
	}
	return card, ""
}

// extractDatabase copies the package's SQLite database to a temporary file.
func extractDatabase(src Source) (string, func(), error) {
	zr, err := zip.NewReader(bytes.NewReader(src.Data), int64(len(src.Data)))
	if err != nil {
		return "", nil, &PackageError{Msg: fmt.Sprintf("Invalid or corrupted Anki package (%s)", src.Name), Err: err}
	}

	entry := findDatabase(zr)
	if entry == nil {
		for _, f := range zr.File {
			if path.Base(f.Name) == "collection.anki21b" {
				return "", nil, &PackageError{Msg: "Anki package uses the compressed collection format; " +
					"export it with \"Support older Anki versions\" enabled"}
			}
		}
		return "", nil, &PackageError{Msg: fmt.Sprintf("No Anki database found in package (%s)", src.Name)}
	}

	rc, err := entry.Open()
	if err != nil {
		return "", nil, &PackageError{Msg: "failed to read Anki database", Err: err}
	}
	defer func() { _ = rc.Close() }()

	tmp, err := os.CreateTemp("", "anki_import_*.db")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary database file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	n, err := io.Copy(tmp, io.LimitReader(rc, maxDatabaseBytes+1))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > maxDatabaseBytes {
		err = errors.New("database exceeds size limit")
	}
	if err != nil {
		cleanup()
		return "", nil, &PackageError{Msg: "failed to extract Anki database", Err: err}
	}
	return tmp.Name(), cleanup, nil
}

func findDatabase(zr *zip.Reader) *zip.File {
	byName := map[string]*zip.File{}
	for _, f := range zr.File {
		byName[f.Name] = f
	}
	for _, name := range packageDatabases {
		if f, ok := byName[name]; ok {
			return f
		}
	}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".anki21") || strings.HasSuffix(f.Name, ".anki2") {
			return f
		}
	}
	return nil
}

type packageInfo struct {
	decks     map[string]string
	models    map[string]string
	noteCount int
	cardCount int
}

func (p packageInfo) deckNames() []string {
	names := make([]string, 0, len(p.decks))
	for _, n := range p.decks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// readPackageInfo loads deck and notetype names from the legacy JSON columns
// of col, falling back to the decks and notetypes tables of newer schemas.
func readPackageInfo(ctx context.Context, db *sql.DB) (packageInfo, error) {
	info := packageInfo{decks: map[string]string{}, models: map[string]string{}}

	var decksJSON, modelsJSON sql.NullString
	err := db.QueryRowContext(ctx, `SELECT decks, models FROM col`).Scan(&decksJSON, &modelsJSON)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return info, &PackageError{Msg: "database error", Err: err}
	}
	info.decks = namesFromJSON(decksJSON.String)
	info.models = namesFromJSON(modelsJSON.String)

	if len(info.decks) == 0 {
		if info.decks, err = namesFromTable(ctx, db, "decks"); err != nil {
			return info, err
		}
	}
	if len(info.models) == 0 {
		if info.models, err = namesFromTable(ctx, db, "notetypes"); err != nil {
			return info, err
		}
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&info.noteCount); err != nil {
		return info, &PackageError{Msg: "database error", Err: err}
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&info.cardCount); err != nil {
		return info, &PackageError{Msg: "database error", Err: err}
	}
	return info, nil
}

func namesFromJSON(raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	var entries map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return out
	}
	for id, e := range entries {
		name := e.Name
		if name == "" {
			name = "Unknown"
		}
		out[id] = name
	}
	return out
}

// namesFromTable reads id/name pairs from table when it exists. Hierarchy
// levels stored with the field separator are joined with "::".
func namesFromTable(ctx context.Context, db *sql.DB, table string) (map[string]string, error) {
	out := map[string]string{}

	var exists int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&exists)
	if err != nil {
		return out, &PackageError{Msg: "database error", Err: err}
	}
	if exists == 0 {
		return out, nil
	}

	rows, err := db.QueryContext(ctx, `SELECT id, name FROM `+table)
	if err != nil {
		return out, &PackageError{Msg: "database error", Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return out, &PackageError{Msg: "database error", Err: err}
		}
		out[strconv.FormatInt(id, 10)] = strings.ReplaceAll(name, fieldSeparator, "::")
	}
	return out, rows.Err()
}
