package combat

// SurpriseContext carries everything needed to decide which side is
// surprised at combat start.
type SurpriseContext struct {
	// ExplicitSide wins over everything else when supplied.
	ExplicitSide SurpriseSide
	// Reason is the combat trigger reason, mapped via a fixed table.
	Reason TriggerReason
	// PlayerInitiatedAttack marks a player attacking out of combat.
	PlayerInitiatedAttack bool
}

// DetermineSurprise resolves which side is surprised. Precedence: the
// explicit side, then the trigger-reason table, then the player-attack
// flag, then none. An explicit SurpriseNone is a real answer and wins
// over the table; only the zero value falls through.
func DetermineSurprise(ctx SurpriseContext) SurpriseSide {
	if ctx.ExplicitSide != "" {
		return ctx.ExplicitSide
	}

	switch ctx.Reason {
	case TriggerAmbush, TriggerMimic:
		return SurpriseEnemy
	case TriggerPlayerSurprise:
		return SurprisePlayer
	case TriggerProximity, TriggerStealthFail, TriggerProvocation:
		return SurpriseNone
	}

	if ctx.PlayerInitiatedAttack {
		return SurprisePlayer
	}
	return SurpriseNone
}

// MarkCombatantsSurprised tags every combatant on the side OPPOSITE the
// surprising party: when the enemy has surprise, the players are surprised.
// The side is inferred from the combatant's side tag, never its controller
// (an AI companion is still player-side). A surprised combatant loses its
// first turn in the coming round.
func MarkCombatantsSurprised(order []*Combatant, surprising SurpriseSide) {
	var victim Side
	switch surprising {
	case SurpriseEnemy:
		victim = SidePlayers
	case SurprisePlayer:
		victim = SideEnemies
	default:
		return
	}

	for _, c := range order {
		if c.Side == victim {
			c.Surprised = true
		}
	}
}

// ClearSurprise resets a single combatant's surprise flag after their first
// turn was skipped. Surprise suppresses exactly one turn.
func ClearSurprise(c *Combatant) {
	c.Surprised = false
}
