// Package turngen produces valid turn sequences for seeded stories. It is
// pure generation: nothing here touches the database, callers persist the
// returned turns themselves.
package turngen

import (
	"fmt"
	"math/rand"

	"github.com/zhammer/scribly/internal/models"
)

const (
	// DefaultPassOdds is the chance an interior turn is a pass instead of
	// a write, modeling a participant skipping their turn.
	DefaultPassOdds = 0.1

	// DefaultWriteAndFinishOdds is the chance the terminal turn of a
	// complete story writes text while finishing, instead of a bare finish.
	DefaultWriteAndFinishOdds = 0.5
)

// Generator builds turn sequences. The shape of a sequence (which turns are
// writes, passes, or finishes) is probabilistic; inject a seeded rand source
// to make generation reproducible.
type Generator struct {
	rnd                *rand.Rand
	PassOdds           float64
	WriteAndFinishOdds float64

	// Text produces the body for writing turns. Replaceable in tests.
	Text func(rnd *rand.Rand) string
}

// New returns a Generator backed by the given rand source with default odds.
func New(rnd *rand.Rand) *Generator {
	return &Generator{
		rnd:                rnd,
		PassOdds:           DefaultPassOdds,
		WriteAndFinishOdds: DefaultWriteAndFinishOdds,
		Text:               Sentence,
	}
}

// NewSeeded returns a Generator seeded with the given value.
func NewSeeded(seed int64) *Generator {
	return New(rand.New(rand.NewSource(seed)))
}

func (g *Generator) odds(likelihood float64) bool {
	return g.rnd.Float64() < likelihood
}

// Generate produces turnCount turns for the given participants, assigning
// turn i to participants[i mod len(participants)].
//
// Rules:
//   - Turn 0 is always a write: a story cannot open with a pass or finish.
//   - If complete, the final turn is finish or write_and_finish; this is
//     the only way a story reaches its terminal state.
//   - Every other turn is a write, or occasionally a pass.
//
// When turnCount is 1 and complete is set, the terminal rule wins but the
// opening turn must still write, so the single turn is always
// write_and_finish.
func (g *Generator) Generate(participants []models.User, turnCount int, complete bool) ([]models.Turn, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("generate turns: need at least one participant")
	}
	if turnCount < 1 {
		return nil, fmt.Errorf("generate turns: turn count %d must be at least 1", turnCount)
	}

	turns := make([]models.Turn, 0, turnCount)
	for i := 0; i < turnCount; i++ {
		user := participants[i%len(participants)]
		turns = append(turns, g.generateTurn(user, i, turnCount, complete))
	}
	return turns, nil
}

func (g *Generator) generateTurn(user models.User, index, turnCount int, complete bool) models.Turn {
	last := index == turnCount-1

	if index == 0 {
		if complete && last {
			// both the opening-write and terminal rules apply
			return models.Turn{TakenBy: user.ID, Action: models.TurnActionWriteAndFinish, Text: g.Text(g.rnd)}
		}
		return models.Turn{TakenBy: user.ID, Action: models.TurnActionWrite, Text: g.Text(g.rnd)}
	}

	if complete && last {
		if g.odds(g.WriteAndFinishOdds) {
			return models.Turn{TakenBy: user.ID, Action: models.TurnActionWriteAndFinish, Text: g.Text(g.rnd)}
		}
		return models.Turn{TakenBy: user.ID, Action: models.TurnActionFinish}
	}

	if g.odds(g.PassOdds) {
		return models.Turn{TakenBy: user.ID, Action: models.TurnActionPass}
	}
	return models.Turn{TakenBy: user.ID, Action: models.TurnActionWrite, Text: g.Text(g.rnd)}
}
