package combat

// TriggerReason names the game condition that mandates starting combat.
type TriggerReason string

const (
	TriggerAmbush         TriggerReason = "ambush"
	TriggerProximity      TriggerReason = "proximity"
	TriggerStealthFail    TriggerReason = "stealth_fail"
	TriggerMimic          TriggerReason = "mimic"
	TriggerProvocation    TriggerReason = "provocation"
	TriggerPlayerSurprise TriggerReason = "player_surprise"
	TriggerNone           TriggerReason = "none"
)

// SurpriseSide names which side gets the drop on the other.
type SurpriseSide string

const (
	SurprisePlayer SurpriseSide = "player"
	SurpriseEnemy  SurpriseSide = "enemy"
	SurpriseNone   SurpriseSide = "none"
)

// TriggerResult is the decision value produced by a trigger evaluation.
// It is ephemeral: produced fresh every evaluation and never persisted.
type TriggerResult struct {
	ShouldStartCombat  bool
	Reason             TriggerReason
	SurpriseSide       SurpriseSide
	TriggeringEntityID string
	Hook               string // narrative hook shown before the first turn
}

// NoTrigger is the terminal "nothing happens" result.
func NoTrigger() *TriggerResult {
	return &TriggerResult{Reason: TriggerNone, SurpriseSide: SurpriseNone}
}
