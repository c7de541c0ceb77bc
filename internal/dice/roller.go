// Package dice implements the randomness primitive for the engine: d20 rolls
// under normal/advantage/disadvantage and arbitrary dice pools.
package dice

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fvicente/mazmorra/internal/errors"
)

// Mode selects how a d20 is rolled.
type Mode string

const (
	ModeNormal       Mode = "normal"
	ModeAdvantage    Mode = "advantage"
	ModeDisadvantage Mode = "disadvantage"
)

// D20Result describes a single d20 roll. When two dice were rolled
// (advantage or disadvantage) both raw values appear in Rolls and the
// discarded one in Dropped. Crit flags are computed from the kept die only.
type D20Result struct {
	Mode        Mode
	Rolls       []int // raw dice in roll order
	Kept        int
	Dropped     int // zero when a single die was rolled
	NaturalCrit bool
	NaturalFail bool
}

// Roller provides dice rolls. Implementations must be safe for concurrent
// use; the engine injects a seeded roller in tests.
type Roller interface {
	// RollD20 rolls a d20 under the given mode.
	RollD20(mode Mode) (*D20Result, error)

	// Roll returns count independent uniform rolls in [1, sides].
	Roll(count, sides int) ([]int, error)
}

// Sum reduces a sequence of rolls to its total.
func Sum(rolls []int) int {
	total := 0
	for _, r := range rolls {
		total += r
	}
	return total
}

type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a time-seeded roller.
func NewRoller() Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededRoller creates a deterministic roller for tests.
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) Roll(count, sides int) ([]int, error) {
	if count < 1 {
		return nil, errors.InvalidArgument("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.InvalidArgument("invalid dice size")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, count)
	for i := 0; i < count; i++ {
		out[i] = r.rng.Intn(sides) + 1
	}
	return out, nil
}

func (r *randomRoller) RollD20(mode Mode) (*D20Result, error) {
	switch mode {
	case ModeNormal, "":
		rolls, err := r.Roll(1, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(ModeNormal, rolls, rolls[0]), nil
	case ModeAdvantage:
		rolls, err := r.Roll(2, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(mode, rolls, max(rolls[0], rolls[1])), nil
	case ModeDisadvantage:
		rolls, err := r.Roll(2, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(mode, rolls, min(rolls[0], rolls[1])), nil
	default:
		return nil, errors.InvalidArgumentf("unknown roll mode %q", mode)
	}
}

func newD20Result(mode Mode, rolls []int, kept int) *D20Result {
	result := &D20Result{
		Mode:        mode,
		Rolls:       rolls,
		Kept:        kept,
		NaturalCrit: kept == 20,
		NaturalFail: kept == 1,
	}
	if len(rolls) == 2 {
		if rolls[0] == kept {
			result.Dropped = rolls[1]
		} else {
			result.Dropped = rolls[0]
		}
	}
	return result
}

// ParseNotation parses a dice expression like "2d6+3" into its parts.
// The bonus is optional; "1d20" is valid.
func ParseNotation(notation string) (count, sides, bonus int, err error) {
	expr := strings.TrimSpace(notation)
	if idx := strings.Index(expr, "+"); idx >= 0 {
		bonus, err = strconv.Atoi(strings.TrimSpace(expr[idx+1:]))
		if err != nil {
			return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation %q", notation)
		}
		expr = expr[:idx]
	}

	parts := strings.Split(strings.TrimSpace(expr), "d")
	if len(parts) != 2 {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation %q", notation)
	}

	count, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation %q", notation)
	}
	sides, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, errors.InvalidArgumentf("invalid dice notation %q", notation)
	}

	return count, sides, bonus, nil
}

// RollNotation rolls a dice expression like "2d6+3" and returns the total
// along with the individual rolls.
func RollNotation(r Roller, notation string) (total int, rolls []int, err error) {
	count, sides, bonus, err := ParseNotation(notation)
	if err != nil {
		return 0, nil, err
	}

	rolls, err = r.Roll(count, sides)
	if err != nil {
		return 0, nil, err
	}

	return Sum(rolls) + bonus, rolls, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
