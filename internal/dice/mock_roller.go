package dice

import (
	"fmt"
	"sync"
)

// MockRoller implements Roller for testing with predetermined results.
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller.
func NewMockRoller() *MockRoller {
	return &MockRoller{rolls: []int{}}
}

// SetNextRoll appends a roll to the queue of predetermined results.
func (m *MockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls replaces the queue of predetermined results.
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index.
func (m *MockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

func (m *MockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	m.rollIndex++
	return roll, nil
}

// Roll implements Roller.Roll, consuming one predetermined value per die.
func (m *MockRoller) Roll(count, sides int) ([]int, error) {
	rolls := make([]int, count)
	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		if roll < 1 || roll > sides {
			return nil, fmt.Errorf("invalid roll %d for d%d", roll, sides)
		}
		rolls[i] = roll
	}
	return rolls, nil
}

// RollD20 implements Roller.RollD20. Normal mode consumes one predetermined
// value; advantage and disadvantage consume two.
func (m *MockRoller) RollD20(mode Mode) (*D20Result, error) {
	switch mode {
	case ModeNormal, "":
		rolls, err := m.Roll(1, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(ModeNormal, rolls, rolls[0]), nil
	case ModeAdvantage:
		rolls, err := m.Roll(2, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(mode, rolls, max(rolls[0], rolls[1])), nil
	case ModeDisadvantage:
		rolls, err := m.Roll(2, 20)
		if err != nil {
			return nil, err
		}
		return newD20Result(mode, rolls, min(rolls[0], rolls[1])), nil
	default:
		return nil, fmt.Errorf("unknown roll mode %q", mode)
	}
}
