package srs

// Ease is the answer button pressed during a review.
type Ease int

// Ease values, matching the Anki answer buttons.
const (
	EaseAgain Ease = 1
	EaseHard  Ease = 2
	EaseGood  Ease = 3
	EaseEasy  Ease = 4
)

// Valid reports whether e is one of the four answer buttons.
func (e Ease) Valid() bool {
	return e >= EaseAgain && e <= EaseEasy
}

// Params defines the tunable values of the scheduler. Factors are in
// permille (2500 means 2.5x).
type Params struct {
	// MinFactor is the floor applied after every factor adjustment.
	MinFactor int

	// FactorAdjustment is added to a review card's factor for each ease.
	FactorAdjustment map[Ease]int

	// HardMultiplier scales the interval of a review card answered "hard".
	HardMultiplier float64

	// EasyBonus additionally scales the interval of a card answered "easy".
	EasyBonus float64

	// GraduatingIvl and EasyIvl are the first review intervals, in days,
	// for learning cards answered "good" and "easy".
	GraduatingIvl int
	EasyIvl       int

	// LearnStepSeconds is the delay before a learning or relearning card
	// is shown again.
	LearnStepSeconds int

	// MaxIvl caps review intervals, in days.
	MaxIvl int
}

// ParamsConfig overrides selected defaults. Zero values keep the default.
type ParamsConfig struct {
	MinFactor        int
	HardMultiplier   float64
	EasyBonus        float64
	GraduatingIvl    int
	EasyIvl          int
	LearnStepSeconds int
	MaxIvl           int
}

// NewDefaultParams returns the stock scheduler parameters.
func NewDefaultParams() *Params {
	return &Params{
		MinFactor: 1300,
		FactorAdjustment: map[Ease]int{
			EaseAgain: -200,
			EaseHard:  -150,
			EaseGood:  0,
			EaseEasy:  150,
		},
		HardMultiplier:   1.2,
		EasyBonus:        1.3,
		GraduatingIvl:    1,
		EasyIvl:          4,
		LearnStepSeconds: 600,
		MaxIvl:           36500,
	}
}

// NewParams applies config on top of the defaults.
func NewParams(config ParamsConfig) *Params {
	p := NewDefaultParams()
	if config.MinFactor > 0 {
		p.MinFactor = config.MinFactor
	}
	if config.HardMultiplier > 0 {
		p.HardMultiplier = config.HardMultiplier
	}
	if config.EasyBonus > 0 {
		p.EasyBonus = config.EasyBonus
	}
	if config.GraduatingIvl > 0 {
		p.GraduatingIvl = config.GraduatingIvl
	}
	if config.EasyIvl > 0 {
		p.EasyIvl = config.EasyIvl
	}
	if config.LearnStepSeconds > 0 {
		p.LearnStepSeconds = config.LearnStepSeconds
	}
	if config.MaxIvl > 0 {
		p.MaxIvl = config.MaxIvl
	}
	return p
}
