package domain

import (
	"strings"
	"time"
)

// MaxDeckNameLength bounds deck names.
const MaxDeckNameLength = 255

// Deck kinds.
const (
	DeckKindNormal   = 0
	DeckKindFiltered = 1
)

// Deck is a named set of cards inside a collection.
type Deck struct {
	ID           int64  `json:"id"`
	CollectionID int64  `json:"collection_id"`
	ConfigID     int64  `json:"config_id"`
	Name         string `json:"name"`
	MtimeSecs    int64  `json:"mtime_secs"`
	Usn          int    `json:"usn"`
	Common       string `json:"common"`
	Kind         int    `json:"kind"`
}

// NewDeck validates name and returns an unsaved normal deck.
func NewDeck(collectionID, configID int64, name string, now time.Time) (*Deck, error) {
	d := &Deck{
		CollectionID: collectionID,
		ConfigID:     configID,
		Name:         strings.TrimSpace(name),
		MtimeSecs:    now.Unix(),
		Kind:         DeckKindNormal,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the deck name.
func (d *Deck) Validate() error {
	return ValidateDeckName(d.Name)
}

// ValidateDeckName rejects empty or overlong names.
func ValidateDeckName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("name", "cannot be empty", ErrEmptyContent)
	}
	if len(name) > MaxDeckNameLength {
		return NewValidationError("name", "is too long", ErrValidation)
	}
	return nil
}
