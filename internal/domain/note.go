package domain

import (
	"crypto/sha1"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// FieldSeparator joins note fields in Note.Fields.
const FieldSeparator = "\x1f"

// Note holds the content shared by the cards generated from it. Fields is
// the separator-joined field list; SortField is the first field and Csum its
// checksum, used for duplicate detection within a notetype.
type Note struct {
	ID         int64  `json:"id"`
	GUID       string `json:"guid"`
	NotetypeID int64  `json:"mid"`
	Mod        int64  `json:"mod"`
	Usn        int    `json:"usn"`
	Tags       string `json:"tags"`
	Fields     string `json:"flds"`
	SortField  string `json:"sfld"`
	Csum       int64  `json:"csum"`
	Flags      int    `json:"flags"`
	Data       string `json:"data"`
}

// NewNote builds an unsaved note from its field values.
func NewNote(notetypeID int64, fields []string, tags string, mod int64) (*Note, error) {
	if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
		return nil, NewValidationError("front", "cannot be empty", ErrEmptyContent)
	}
	n := &Note{
		GUID:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		NotetypeID: notetypeID,
		Mod:        mod,
	}
	n.SetFields(fields)
	n.Tags = FormatTags(tags)
	return n, nil
}

// SetFields replaces the note's fields and refreshes the sort field and checksum.
func (n *Note) SetFields(fields []string) {
	n.Fields = strings.Join(fields, FieldSeparator)
	n.SortField = ""
	if len(fields) > 0 {
		n.SortField = fields[0]
	}
	n.Csum = FieldChecksum(n.SortField)
}

// FieldList splits Fields into its values.
func (n *Note) FieldList() []string {
	return strings.Split(n.Fields, FieldSeparator)
}

// Front returns the first field.
func (n *Note) Front() string {
	return fieldAt(n.FieldList(), 0)
}

// Back returns the second field, or "" if the note has only one.
func (n *Note) Back() string {
	return fieldAt(n.FieldList(), 1)
}

// TagList returns the note's tags in stored order.
func (n *Note) TagList() []string {
	return strings.Fields(n.Tags)
}

func fieldAt(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// FormatTags converts a space separated tag string to the stored form,
// which surrounds the tags with single spaces so that " tag " substring
// matches are exact. Empty input yields "".
func FormatTags(tags string) string {
	parts := strings.Fields(tags)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ") + " "
}

// FieldChecksum is the first 8 bytes of SHA-1(field) read big-endian and
// reinterpreted as a signed 64-bit value so it fits a BIGINT column.
func FieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
