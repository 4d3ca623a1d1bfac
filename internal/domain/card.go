package domain

import "fmt"

// CardType is the learning stage of a card.
type CardType int

// Card types
const (
	CardTypeNew        CardType = 0
	CardTypeLearning   CardType = 1
	CardTypeReview     CardType = 2
	CardTypeRelearning CardType = 3
)

var cardTypeLabels = map[CardType]string{
	CardTypeNew:        "new",
	CardTypeLearning:   "learning",
	CardTypeReview:     "review",
	CardTypeRelearning: "relearning",
}

// Label returns the lower-case name of the type.
func (t CardType) Label() string {
	if l, ok := cardTypeLabels[t]; ok {
		return l
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Valid reports whether t is a known card type.
func (t CardType) Valid() bool {
	_, ok := cardTypeLabels[t]
	return ok
}

// CardQueue is the scheduling queue a card currently sits in.
type CardQueue int

// Card queues
const (
	QueueUserBuried  CardQueue = -3
	QueueSchedBuried CardQueue = -2
	QueueSuspended   CardQueue = -1
	QueueNew         CardQueue = 0
	QueueLearning    CardQueue = 1
	QueueReview      CardQueue = 2
	QueueDayLearning CardQueue = 3
	QueuePreview     CardQueue = 4
)

var queueLabels = map[CardQueue]string{
	QueueUserBuried:  "user buried",
	QueueSchedBuried: "sched buried",
	QueueSuspended:   "suspended",
	QueueNew:         "new",
	QueueLearning:    "learning",
	QueueReview:      "review",
	QueueDayLearning: "in learning",
	QueuePreview:     "preview",
}

// Label returns the display name of the queue.
func (q CardQueue) Label() string {
	if l, ok := queueLabels[q]; ok {
		return l
	}
	return fmt.Sprintf("unknown(%d)", int(q))
}

// InitialFactor is the ease factor, in permille, given to new cards.
const InitialFactor = 2500

// Card is one reviewable item generated from a note template.
//
// Due is interpreted by queue: a position for new cards, a unix timestamp
// in seconds for learning cards, and a day index relative to the
// collection's creation for review cards.
type Card struct {
	ID     int64     `json:"id"`
	NoteID int64     `json:"nid"`
	DeckID int64     `json:"did"`
	Ord    int       `json:"ord"`
	Mod    int64     `json:"mod"`
	Usn    int       `json:"usn"`
	Type   CardType  `json:"type"`
	Queue  CardQueue `json:"queue"`
	Due    int64     `json:"due"`
	Ivl    int       `json:"ivl"`
	Factor int       `json:"factor"`
	Reps   int       `json:"reps"`
	Lapses int       `json:"lapses"`
	Left   int       `json:"left"`
	Odue   int64     `json:"odue"`
	Odid   int64     `json:"odid"`
	Flags  int       `json:"flags"`
	Data   string    `json:"data"`
}

// NewCard returns an unsaved new card for template ord of a note.
func NewCard(noteID, deckID int64, ord int, due, mod int64) *Card {
	return &Card{
		NoteID: noteID,
		DeckID: deckID,
		Ord:    ord,
		Mod:    mod,
		Type:   CardTypeNew,
		Queue:  QueueNew,
		Due:    due,
		Factor: InitialFactor,
		Data:   "{}",
	}
}
