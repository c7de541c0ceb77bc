// Package tactician decides combat actions for AI-controlled combatants and
// produces short in-character reactions for companion characters. The engine
// owns all dice: a tactician only requests rolls by notation, never outcomes.
package tactician

//go:generate mockgen -destination=mock/mock_tactician.go -package=mocktactician -source=tactician.go

import (
	"context"
)

// RollKind classifies a roll requested by the tactician.
type RollKind string

const (
	RollAttack RollKind = "attack"
	RollDamage RollKind = "damage"
	RollEffect RollKind = "effect"
)

// RollRequest asks the engine to perform one roll. Notation uses standard
// dice notation ("1d20+4", "2d6"); the bonus is baked into the notation.
type RollRequest struct {
	Kind     RollKind `json:"kind"`
	Notation string   `json:"notation"`
}

// CombatantView is the subset of combatant state exposed to the tactician.
type CombatantView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CurrentHP int    `json:"current_hp"`
	MaxHP     int    `json:"max_hp"`
	AC        int    `json:"ac"`
	Status    string `json:"status"`
}

// TurnContext carries everything the tactician needs to pick an action.
type TurnContext struct {
	Actor               CombatantView   `json:"actor"`
	Allies              []CombatantView `json:"allies"`
	Opponents           []CombatantView `json:"opponents"`
	LocationDescription string          `json:"location_description,omitempty"`
	Transcript          []string        `json:"transcript,omitempty"`
	Spells              []string        `json:"spells,omitempty"`
	Round               int             `json:"round"`
}

// Decision is a chosen combat action. TargetID names an opponent or ally by
// combatant ID; Rolls lists the rolls the engine must perform, in order.
type Decision struct {
	Narration string        `json:"narration"`
	TargetID  string        `json:"target_id,omitempty"`
	Rolls     []RollRequest `json:"rolls,omitempty"`
}

// Tactician picks an action for the combatant whose turn it is.
type Tactician interface {
	DecideAction(ctx context.Context, tc *TurnContext) (*Decision, error)
}

// Reaction is a single companion's short in-character line.
type Reaction struct {
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	Line          string `json:"line"`
}

// ReactionInput describes the moment companions are reacting to.
type ReactionInput struct {
	CharacterID   string   `json:"character_id"`
	CharacterName string   `json:"character_name"`
	Personality   string   `json:"personality,omitempty"`
	PlayerInput   string   `json:"player_input"`
	Narration     string   `json:"narration,omitempty"`
	Transcript    []string `json:"transcript,omitempty"`
}

// CompanionReactor produces a companion's reaction to a player action. A nil
// reaction with nil error means the companion stays silent.
type CompanionReactor interface {
	React(ctx context.Context, in *ReactionInput) (*Reaction, error)
}
