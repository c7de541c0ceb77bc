// Package combat defines the combat encounter data model: combatants, the
// initiative order, the turn-phase state machine data, trigger results and
// surprise semantics.
package combat

import (
	"fmt"
	"time"

	"github.com/fvicente/mazmorra/internal/domain/character"
)

// Side tags which team a combatant fights for.
type Side string

const (
	SidePlayers Side = "players"
	SideEnemies Side = "enemies"
	SideNone    Side = "none"
)

// Status is a combatant's life state.
type Status string

const (
	StatusActive      Status = "active"
	StatusUnconscious Status = "unconscious"
	StatusDead        Status = "dead"
)

// Combatant is one slot in the initiative order, referencing either a party
// character or an enemy instance.
type Combatant struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	Side            Side                 `json:"side"`
	Controller      character.Controller `json:"controller"`
	Initiative      int                  `json:"initiative"`
	InitiativeBonus int                  `json:"initiativeBonus"` // dexterity modifier, also the tie-break
	CurrentHP       int                  `json:"currentHp"`
	MaxHP           int                  `json:"maxHp"`
	AC              int                  `json:"ac"`
	Status          Status               `json:"status"`
	Surprised       bool                 `json:"surprised"`
	// Spells the combatant can cast, offered to the tactician verbatim.
	Spells []string `json:"spells,omitempty"`

	// CharacterID is set for party members.
	CharacterID string `json:"characterId,omitempty"`
	// EnemyInstanceID is set for enemies.
	EnemyInstanceID string `json:"enemyInstanceId,omitempty"`
}

// CanAct reports whether the combatant may take a turn right now.
// Surprise is handled separately: a surprised combatant is skipped once.
func (c *Combatant) CanAct() bool {
	return c.Status == StatusActive && c.CurrentHP > 0
}

// ApplyDamage subtracts damage from current HP, flooring at zero. Crossing
// to zero downs the combatant: party members fall unconscious and can be
// revived, enemies die.
func (c *Combatant) ApplyDamage(damage int) {
	if damage <= 0 {
		return
	}
	c.CurrentHP -= damage
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		if c.Side == SidePlayers {
			c.Status = StatusUnconscious
		} else {
			c.Status = StatusDead
		}
	}
}

// Heal restores HP, capped at max. Healing cannot raise the dead.
func (c *Combatant) Heal(amount int) {
	if amount <= 0 || c.Status == StatusDead {
		return
	}
	c.CurrentHP += amount
	if c.CurrentHP > c.MaxHP {
		c.CurrentHP = c.MaxHP
	}
	if c.CurrentHP > 0 {
		c.Status = StatusActive
	}
}

// Phase is a state of the per-turn combat state machine.
type Phase string

const (
	PhaseSetup            Phase = "setup"
	PhaseTurnStart        Phase = "turn_start"
	PhaseWaitingForAction Phase = "waiting_for_action"
	PhaseProcessingAction Phase = "processing_action"
	PhaseActionResolved   Phase = "action_resolved"
	PhaseTurnEnd          Phase = "turn_end"
	PhaseCombatEnd        Phase = "combat_end"
)

// State is one combat encounter's full state. The initiative order is built
// once at combat start and consumed via the advancing turn index.
type State struct {
	ID         string `json:"id"`
	LocationID string `json:"locationId"`
	// LocationDescription gives the tactician scene flavor without a
	// lookup back into the adventure.
	LocationDescription string       `json:"locationDescription,omitempty"`
	Phase               Phase        `json:"phase"`
	Round               int          `json:"round"`
	Turn                int          `json:"turn"` // index into Order
	Order               []*Combatant `json:"order"`
	Hook                string       `json:"hook,omitempty"` // narrative lead-in shown before the first turn
	Log                 []string     `json:"log,omitempty"`
	Winner              Side         `json:"winner,omitempty"`
	StartedAt           time.Time    `json:"startedAt"`
	EndedAt             *time.Time   `json:"endedAt,omitempty"`
}

// Current returns the combatant at the turn index, or nil when the index is
// outside the order.
func (s *State) Current() *Combatant {
	if s.Turn < 0 || s.Turn >= len(s.Order) {
		return nil
	}
	return s.Order[s.Turn]
}

// Combatant returns the order entry with the given id, or nil.
func (s *State) Combatant(id string) *Combatant {
	for _, c := range s.Order {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CheckEnd reports whether combat is over and who won. Combat ends when all
// enemy-side combatants are dead, or when every player-side combatant is
// dead or unconscious.
func (s *State) CheckEnd() (over bool, winner Side) {
	enemiesStanding := 0
	playersStanding := 0
	for _, c := range s.Order {
		if !c.CanAct() {
			continue
		}
		switch c.Side {
		case SideEnemies:
			enemiesStanding++
		case SidePlayers:
			playersStanding++
		}
	}

	if enemiesStanding == 0 {
		return true, SidePlayers
	}
	if playersStanding == 0 {
		return true, SideEnemies
	}
	return false, SideNone
}

// AddLogEntry appends a round-prefixed entry to the combat log, keeping the
// log bounded.
func (s *State) AddLogEntry(entry string) {
	s.Log = append(s.Log, fmt.Sprintf("Round %d: %s", s.Round, entry))
	if len(s.Log) > 50 {
		s.Log = s.Log[len(s.Log)-50:]
	}
}

// End marks the encounter finished.
func (s *State) End(winner Side) {
	now := time.Now()
	s.Phase = PhaseCombatEnd
	s.Winner = winner
	s.EndedAt = &now
}
