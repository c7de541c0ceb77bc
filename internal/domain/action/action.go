// Package action defines the structured, interpreted form of a player's
// free-text input. The natural-language interpretation itself happens in an
// external collaborator; the engine only consumes this typed record.
package action

// Type classifies what the player is trying to do.
type Type string

const (
	TypeMove         Type = "move"
	TypeInteract     Type = "interact"
	TypeAttack       Type = "attack"
	TypeNarrate      Type = "narrate"
	TypeOOC          Type = "ooc"
	TypeContinueTurn Type = "continue_turn"
)

// Interpreted is the structured reading of one player input.
type Interpreted struct {
	Type     Type   `json:"actionType"`
	TargetID string `json:"targetId,omitempty"`
	Raw      string `json:"raw,omitempty"`
}

// IsSignificant reports whether companions should consider reacting to the
// action. Chatter and bookkeeping actions do not warrant reactions.
func (a *Interpreted) IsSignificant() bool {
	switch a.Type {
	case TypeMove, TypeAttack, TypeInteract:
		return true
	default:
		return false
	}
}
