// Package sessions persists game session snapshots: the party, transcript,
// current location, world state and any in-flight combat. A snapshot is the
// full save; loading one resumes play exactly where it stopped.
package sessions

import (
	"context"
	"time"

	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	"github.com/fvicente/mazmorra/internal/domain/world"
)

// Snapshot is one saved game session.
type Snapshot struct {
	ID                string                 `json:"id"`
	AdventureTitle    string                 `json:"adventureTitle,omitempty"`
	Party             []*character.Character `json:"party"`
	CurrentLocationID string                 `json:"currentLocationId"`
	Transcript        []string               `json:"transcript,omitempty"`
	DiceLog           []string               `json:"diceLog,omitempty"`
	InCombat          bool                   `json:"inCombat"`
	Combat            *combat.State          `json:"combat,omitempty"`
	World             *world.State           `json:"world"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// AppendTranscript adds a line to the session transcript, keeping it
// bounded.
func (s *Snapshot) AppendTranscript(line string) {
	s.Transcript = append(s.Transcript, line)
	if len(s.Transcript) > 200 {
		s.Transcript = s.Transcript[len(s.Transcript)-200:]
	}
}

// AppendDiceLog records one resolved roll.
func (s *Snapshot) AppendDiceLog(entry string) {
	s.DiceLog = append(s.DiceLog, entry)
	if len(s.DiceLog) > 200 {
		s.DiceLog = s.DiceLog[len(s.DiceLog)-200:]
	}
}

// Repository stores session snapshots.
type Repository interface {
	Create(ctx context.Context, snap *Snapshot) error
	Get(ctx context.Context, id string) (*Snapshot, error)
	Update(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Snapshot, error)
}
