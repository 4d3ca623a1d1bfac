package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CollectionSchemaVersion is the Anki schema version recorded on new collections.
const CollectionSchemaVersion = 11

// Collection is the per-user container for decks, notetypes and deck configs.
// Crt is the creation time in seconds and anchors day-based due values.
type Collection struct {
	ID     int64     `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Crt    int64     `json:"crt"`
	Mod    int64     `json:"mod"`
	Ver    int       `json:"ver"`
	Usn    int       `json:"usn"`
}

// NewCollection returns a collection for userID created at now.
func NewCollection(userID uuid.UUID, now time.Time) *Collection {
	secs := now.Unix()
	return &Collection{
		UserID: userID,
		Crt:    secs,
		Mod:    secs,
		Ver:    CollectionSchemaVersion,
	}
}

// DaysSinceCreation is the review-day index for t. Review card due values
// are expressed in these days.
func (c *Collection) DaysSinceCreation(t time.Time) int64 {
	d := (t.Unix() - c.Crt) / 86400
	if d < 0 {
		return 0
	}
	return d
}

// DeckConfig holds the study options shared by one or more decks.
type DeckConfig struct {
	ID           int64           `json:"id"`
	CollectionID int64           `json:"collection_id"`
	Name         string          `json:"name"`
	MtimeSecs    int64           `json:"mtime_secs"`
	Usn          int             `json:"usn"`
	Config       json.RawMessage `json:"config"`
}

// DefaultDeckConfigName names the config created with every collection.
const DefaultDeckConfigName = "Default"

// DeckConfigOptions is the decoded form of DeckConfig.Config.
type DeckConfigOptions struct {
	NewPerDay        int   `json:"new_per_day"`
	ReviewsPerDay    int   `json:"reviews_per_day"`
	LearnStepsMins   []int `json:"learn_steps_mins"`
	RelearnStepsMins []int `json:"relearn_steps_mins"`
	InitialEase      int   `json:"initial_ease"`
	MaxIvlDays       int   `json:"max_ivl_days"`
}

// DefaultDeckConfigOptions mirrors the stock Anki study options.
func DefaultDeckConfigOptions() DeckConfigOptions {
	return DeckConfigOptions{
		NewPerDay:        20,
		ReviewsPerDay:    200,
		LearnStepsMins:   []int{1, 10},
		RelearnStepsMins: []int{10},
		InitialEase:      2500,
		MaxIvlDays:       36500,
	}
}

// NewDefaultDeckConfig builds the default config for a collection.
func NewDefaultDeckConfig(collectionID int64, now time.Time) (*DeckConfig, error) {
	raw, err := json.Marshal(DefaultDeckConfigOptions())
	if err != nil {
		return nil, err
	}
	return &DeckConfig{
		CollectionID: collectionID,
		Name:         DefaultDeckConfigName,
		MtimeSecs:    now.Unix(),
		Config:       raw,
	}, nil
}
