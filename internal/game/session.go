// Package game implements the guess-the-industry session: the player is
// shown an industry name and estimates its capital-market coordinates
// (debt ratio, beta, cost of capital); the score is the normalized distance
// between the guess and the benchmark row.
//
// A session is an explicit state machine passed by value: setup -> playing
// -> finished, with finished -> playing on the next round. Transitions
// return new Session values; the server holds no session map, the client
// carries the session in each request.
package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/iwvelando/capital-lab/internal/dataset"
	"github.com/iwvelando/capital-lab/pkg/constants"
)

// State is the session lifecycle phase.
type State string

const (
	StateSetup    State = "setup"
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Coordinates locates a point on the three benchmark axes. DebtPct and WACC
// are percentage points, Beta is unitless.
type Coordinates struct {
	DebtPct float64 `json:"debtPct"`
	Beta    float64 `json:"beta"`
	WACC    float64 `json:"wacc"`
}

// Session is the whole game state. The zero value is unusable; construct
// with New.
type Session struct {
	ID            string  `json:"id"`
	State         State   `json:"state"`
	Industry      string  `json:"industry"`
	Round         int     `json:"round"`
	TotalDistance float64 `json:"totalDistance"`
}

// Outcome scores one guess against the benchmark row.
type Outcome struct {
	Actual   Coordinates `json:"actual"`
	Guess    Coordinates `json:"guess"`
	Errors   Coordinates `json:"errors"`
	Distance float64     `json:"distance"`
}

// New creates a fresh session in the setup state.
func New() Session {
	return Session{ID: uuid.NewString(), State: StateSetup}
}

// Start begins the first round: a random industry from the table becomes
// the target. Valid from setup or finished.
func (s Session) Start(industries []dataset.Industry, rng *rand.Rand) (Session, error) {
	if s.State != StateSetup && s.State != StateFinished {
		return s, fmt.Errorf("cannot start a round from state %q", s.State)
	}
	if len(industries) == 0 {
		return s, fmt.Errorf("cannot start a round with an empty industry table")
	}
	s.Industry = industries[rng.Intn(len(industries))].Name
	s.State = StatePlaying
	s.Round++
	return s, nil
}

// SubmitGuess scores the guess against the actual benchmark row and moves
// the session to finished. Valid only while playing, and only against the
// session's own target industry.
func (s Session) SubmitGuess(guess Coordinates, actual dataset.Industry) (Session, Outcome, error) {
	if s.State != StatePlaying {
		return s, Outcome{}, fmt.Errorf("cannot submit a guess from state %q", s.State)
	}
	if actual.Name != s.Industry {
		return s, Outcome{}, fmt.Errorf("guess target %q does not match session target %q", actual.Name, s.Industry)
	}

	outcome := Score(guess, actual)
	s.State = StateFinished
	s.TotalDistance += outcome.Distance
	return s, outcome, nil
}

// NextRound starts another round from the finished state.
func (s Session) NextRound(industries []dataset.Industry, rng *rand.Rand) (Session, error) {
	if s.State != StateFinished {
		return s, fmt.Errorf("cannot advance to the next round from state %q", s.State)
	}
	return s.Start(industries, rng)
}

// Score computes the per-axis errors and the normalized distance between a
// guess and the benchmark row. Each axis error is divided by the axis span
// before the Euclidean combination, so a full-span miss on any one axis
// contributes 1.0.
func Score(guess Coordinates, actual dataset.Industry) Outcome {
	errors := Coordinates{
		DebtPct: guess.DebtPct - actual.DebtPct,
		Beta:    guess.Beta - actual.Beta,
		WACC:    guess.WACC - actual.WACC,
	}
	distance := math.Sqrt(
		math.Pow(errors.DebtPct/constants.DebtAxisMax, 2) +
			math.Pow(errors.Beta/constants.BetaAxisMax, 2) +
			math.Pow(errors.WACC/constants.WACCAxisMax, 2),
	)
	return Outcome{
		Actual:   Coordinates{DebtPct: actual.DebtPct, Beta: actual.Beta, WACC: actual.WACC},
		Guess:    guess,
		Errors:   errors,
		Distance: distance,
	}
}
