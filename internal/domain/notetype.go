package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Stock notetype names.
const (
	NotetypeBasic         = "Basic"
	NotetypeBasicReversed = "Basic (and reversed card)"
)

// Notetype describes the fields of a note and the card templates generated from it.
type Notetype struct {
	ID           int64           `json:"id"`
	CollectionID int64           `json:"collection_id"`
	Name         string          `json:"name"`
	MtimeSecs    int64           `json:"mtime_secs"`
	Usn          int             `json:"usn"`
	Config       json.RawMessage `json:"config"`

	Fields    []Field    `json:"fields,omitempty"`
	Templates []Template `json:"templates,omitempty"`
}

// Field is a named slot in a notetype, keyed by (NotetypeID, Ord).
type Field struct {
	NotetypeID int64           `json:"ntid"`
	Ord        int             `json:"ord"`
	Name       string          `json:"name"`
	Config     json.RawMessage `json:"config"`
}

// Template produces one card per note, keyed by (NotetypeID, Ord).
type Template struct {
	NotetypeID int64           `json:"ntid"`
	Ord        int             `json:"ord"`
	Name       string          `json:"name"`
	MtimeSecs  int64           `json:"mtime_secs"`
	Usn        int             `json:"usn"`
	Config     json.RawMessage `json:"config"`
}

type templateConfig struct {
	QFormat string `json:"qfmt"`
	AFormat string `json:"afmt"`
}

type stockNotetype struct {
	name      string
	fields    []string
	templates []templateConfig
}

var stockNotetypes = []stockNotetype{
	{
		name:   NotetypeBasic,
		fields: []string{"Front", "Back"},
		templates: []templateConfig{
			{QFormat: "{{Front}}", AFormat: "{{FrontSide}}<hr id=answer>{{Back}}"},
		},
	},
	{
		name:   NotetypeBasicReversed,
		fields: []string{"Front", "Back"},
		templates: []templateConfig{
			{QFormat: "{{Front}}", AFormat: "{{FrontSide}}<hr id=answer>{{Back}}"},
			{QFormat: "{{Back}}", AFormat: "{{FrontSide}}<hr id=answer>{{Front}}"},
		},
	},
}

// StockNotetypes returns fresh copies of the notetypes seeded into every
// collection. IDs are left zero; templates are named "Card N".
func StockNotetypes(collectionID int64, now time.Time) []*Notetype {
	secs := now.Unix()
	out := make([]*Notetype, 0, len(stockNotetypes))
	for _, st := range stockNotetypes {
		nt := &Notetype{
			CollectionID: collectionID,
			Name:         st.name,
			MtimeSecs:    secs,
			Config:       json.RawMessage(`{}`),
		}
		for i, f := range st.fields {
			nt.Fields = append(nt.Fields, Field{Ord: i, Name: f, Config: json.RawMessage(`{}`)})
		}
		for i, tc := range st.templates {
			raw, _ := json.Marshal(tc)
			nt.Templates = append(nt.Templates, Template{
				Ord:       i,
				Name:      "Card " + strconv.Itoa(i+1),
				MtimeSecs: secs,
				Config:    raw,
			})
		}
		out = append(out, nt)
	}
	return out
}
