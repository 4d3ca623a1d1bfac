package srs

import (
	"github.com/phrazzld/flashcard-api/internal/domain"
)

// clock carries the two time bases a card can be due in.
type clock struct {
	nowSecs int64 // unix seconds, for learning queues
	today   int64 // days since collection creation, for the review queue
}

// schedule applies one answer to a copy of card and returns the copy along
// with the review log entry describing the transition. The input is never
// modified.
func schedule(card domain.Card, ease Ease, c clock, p *Params) (domain.Card, domain.RevLog) {
	log := domain.RevLog{
		CardID:  card.ID,
		Ease:    int(ease),
		LastIvl: lastIvl(card, p),
		Type:    card.Type,
	}

	card.Reps++

	switch card.Type {
	case domain.CardTypeNew:
		learn(&card, domain.CardTypeLearning, c, p)

	case domain.CardTypeLearning:
		switch ease {
		case EaseGood:
			graduate(&card, p.GraduatingIvl, c, p)
		case EaseEasy:
			graduate(&card, p.EasyIvl, c, p)
		default:
			learn(&card, domain.CardTypeLearning, c, p)
		}

	case domain.CardTypeRelearning:
		switch ease {
		case EaseGood, EaseEasy:
			graduate(&card, max(1, card.Ivl), c, p)
		default:
			learn(&card, domain.CardTypeRelearning, c, p)
		}

	default:
		review(&card, ease, c, p)
	}

	log.Ivl = currentIvl(card, p)
	log.Factor = card.Factor
	return card, log
}

// learn puts the card into a learning queue one step from now.
func learn(card *domain.Card, t domain.CardType, c clock, p *Params) {
	card.Type = t
	card.Queue = domain.QueueLearning
	card.Due = c.nowSecs + int64(p.LearnStepSeconds)
}

// graduate moves the card to the review queue with the given interval.
func graduate(card *domain.Card, ivl int, c clock, p *Params) {
	card.Type = domain.CardTypeReview
	card.Queue = domain.QueueReview
	card.Ivl = min(ivl, p.MaxIvl)
	card.Due = c.today + int64(card.Ivl)
}

// review handles a card already in the review queue.
func review(card *domain.Card, ease Ease, c clock, p *Params) {
	if ease == EaseAgain {
		card.Lapses++
		card.Ivl = 1
		card.Factor = adjustFactor(card.Factor, ease, p)
		learn(card, domain.CardTypeRelearning, c, p)
		return
	}

	var next float64
	switch ease {
	case EaseHard:
		next = float64(card.Ivl) * p.HardMultiplier
	case EaseGood:
		next = float64(card.Ivl) * float64(card.Factor) / 1000
	case EaseEasy:
		next = float64(card.Ivl) * float64(card.Factor) / 1000 * p.EasyBonus
	}

	// A successful review always lengthens the interval by at least a day.
	ivl := max(int(next), card.Ivl+1)

	card.Factor = adjustFactor(card.Factor, ease, p)
	graduate(card, ivl, c, p)
}

func adjustFactor(factor int, ease Ease, p *Params) int {
	if factor == 0 {
		factor = domain.InitialFactor
	}
	return max(factor+p.FactorAdjustment[ease], p.MinFactor)
}

// currentIvl is the revlog interval for the card's state: days for review
// cards, negative seconds for learning steps.
func currentIvl(card domain.Card, p *Params) int {
	if card.Queue == domain.QueueLearning {
		return -p.LearnStepSeconds
	}
	return card.Ivl
}

func lastIvl(card domain.Card, p *Params) int {
	switch card.Type {
	case domain.CardTypeNew:
		return 0
	case domain.CardTypeReview:
		return card.Ivl
	default:
		return -p.LearnStepSeconds
	}
}
