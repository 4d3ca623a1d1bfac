package domain

import "testing"

func TestNewCard(t *testing.T) {
	t.Parallel()

	card := NewCard(7, 3, 1, 42, 1700000000)

	if card.NoteID != 7 || card.DeckID != 3 || card.Ord != 1 {
		t.Errorf("unexpected identity fields: %+v", card)
	}
	if card.Type != CardTypeNew || card.Queue != QueueNew {
		t.Errorf("expected new card in new queue, got type=%d queue=%d", card.Type, card.Queue)
	}
	if card.Due != 42 {
		t.Errorf("expected due 42, got %d", card.Due)
	}
	if card.Factor != InitialFactor {
		t.Errorf("expected factor %d, got %d", InitialFactor, card.Factor)
	}
}

func TestCardLabels(t *testing.T) {
	t.Parallel()

	typeLabels := map[CardType]string{
		CardTypeNew:        "new",
		CardTypeLearning:   "learning",
		CardTypeReview:     "review",
		CardTypeRelearning: "relearning",
		CardType(9):        "unknown(9)",
	}
	for ct, want := range typeLabels {
		if got := ct.Label(); got != want {
			t.Errorf("CardType(%d).Label() = %q, want %q", ct, got, want)
		}
	}

	queueLabelsWant := map[CardQueue]string{
		QueueUserBuried:  "user buried",
		QueueSchedBuried: "sched buried",
		QueueSuspended:   "suspended",
		QueueNew:         "new",
		QueueDayLearning: "in learning",
		QueuePreview:     "preview",
	}
	for q, want := range queueLabelsWant {
		if got := q.Label(); got != want {
			t.Errorf("CardQueue(%d).Label() = %q, want %q", q, got, want)
		}
	}

	if CardType(4).Valid() {
		t.Error("CardType(4) should not be valid")
	}
}
