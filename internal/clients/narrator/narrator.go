// Package narrator defines the narrative generation collaborator: the
// external text model that turns structured turn context into prose. The
// engine operates on typed structures internally and serializes only at
// this boundary.
package narrator

//go:generate mockgen -destination=mock/mock_narrator.go -package=mocknarrator -source=narrator.go

import (
	"context"
	"encoding/json"

	"github.com/fvicente/mazmorra/internal/domain/action"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	"github.com/fvicente/mazmorra/internal/domain/world"
)

// LocationBundle is the merged static+effective view of the scene handed to
// the narrator.
type LocationBundle struct {
	Location           *adventure.Location `json:"location"`
	Enemies            []*world.Enemy      `json:"enemies,omitempty"`
	VisibleConnections []string            `json:"visibleConnections,omitempty"`
	// SuppressEnemyNames hides enemy identities from the scene description,
	// used when an undetected ambush is about to fire.
	SuppressEnemyNames bool `json:"-"`
}

// CombatBundle is combat context attached to combat-turn narration.
type CombatBundle struct {
	Round int                 `json:"round"`
	Order []*combat.Combatant `json:"order"`
}

// Request is the input contract for one narration call.
type Request struct {
	RawInput   string              `json:"rawInput"`
	Action     *action.Interpreted `json:"action"`
	Location   *LocationBundle     `json:"location,omitempty"`
	Transcript []string            `json:"transcript,omitempty"`
	Combat     *CombatBundle       `json:"combat,omitempty"`
}

// Result is the output contract: markdown prose plus an optional JSON
// string of partial character-stat updates.
type Result struct {
	Narration      string
	StatUpdateJSON string
}

// StatUpdates parses the optional stat-update payload. The JSON must be
// validated before trusting it; a parse failure discards the update (the
// caller logs a warning) and never fails the turn.
func (r *Result) StatUpdates() (map[string]any, bool) {
	if r.StatUpdateJSON == "" {
		return nil, false
	}
	if !json.Valid([]byte(r.StatUpdateJSON)) {
		return nil, false
	}
	var updates map[string]any
	if err := json.Unmarshal([]byte(r.StatUpdateJSON), &updates); err != nil {
		return nil, false
	}
	return updates, true
}

// Narrator generates prose for a turn.
type Narrator interface {
	Narrate(ctx context.Context, req *Request) (*Result, error)
}
