package domain

// RevLog records a single review. Ivl and LastIvl follow the Anki
// convention: positive values are days, negative values are seconds for
// learning steps. Type is the card type before the review and Time is the
// time spent answering in milliseconds.
type RevLog struct {
	ID      int64    `json:"id"`
	CardID  int64    `json:"cid"`
	Usn     int      `json:"usn"`
	Ease    int      `json:"ease"`
	Ivl     int      `json:"ivl"`
	LastIvl int      `json:"last_ivl"`
	Factor  int      `json:"factor"`
	Time    int      `json:"time"`
	Type    CardType `json:"type"`
}
