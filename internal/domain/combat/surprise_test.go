package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/combat"
)

func TestDetermineSurprise_ExplicitSideWins(t *testing.T) {
	side := combat.DetermineSurprise(combat.SurpriseContext{
		ExplicitSide: combat.SurprisePlayer,
		Reason:       combat.TriggerAmbush, // table would say enemy
	})
	assert.Equal(t, combat.SurprisePlayer, side)
}

func TestDetermineSurprise_ExplicitNoneBeatsReasonTable(t *testing.T) {
	side := combat.DetermineSurprise(combat.SurpriseContext{
		ExplicitSide: combat.SurpriseNone,
		Reason:       combat.TriggerMimic, // table would say enemy
	})
	assert.Equal(t, combat.SurpriseNone, side)
}

func TestDetermineSurprise_ReasonTable(t *testing.T) {
	cases := []struct {
		reason combat.TriggerReason
		want   combat.SurpriseSide
	}{
		{combat.TriggerAmbush, combat.SurpriseEnemy},
		{combat.TriggerMimic, combat.SurpriseEnemy},
		{combat.TriggerPlayerSurprise, combat.SurprisePlayer},
		{combat.TriggerProximity, combat.SurpriseNone},
		{combat.TriggerStealthFail, combat.SurpriseNone},
		{combat.TriggerProvocation, combat.SurpriseNone},
	}

	for _, tc := range cases {
		t.Run(string(tc.reason), func(t *testing.T) {
			got := combat.DetermineSurprise(combat.SurpriseContext{Reason: tc.reason})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetermineSurprise_PlayerAttackFlagFallback(t *testing.T) {
	side := combat.DetermineSurprise(combat.SurpriseContext{PlayerInitiatedAttack: true})
	assert.Equal(t, combat.SurprisePlayer, side)

	side = combat.DetermineSurprise(combat.SurpriseContext{})
	assert.Equal(t, combat.SurpriseNone, side)
}

func TestMarkCombatantsSurprised_TagsOppositeSideBySideTag(t *testing.T) {
	order := []*combat.Combatant{
		{ID: "hero", Side: combat.SidePlayers, Controller: character.ControllerPlayer},
		{ID: "ally", Side: combat.SidePlayers, Controller: character.ControllerAI},
		{ID: "goblin", Side: combat.SideEnemies, Controller: character.ControllerAI},
	}

	combat.MarkCombatantsSurprised(order, combat.SurpriseEnemy)

	// The AI companion is player-side and gets surprised with the hero.
	assert.True(t, order[0].Surprised)
	assert.True(t, order[1].Surprised)
	assert.False(t, order[2].Surprised)
}

func TestMarkCombatantsSurprised_NoneIsNoOp(t *testing.T) {
	order := []*combat.Combatant{
		{ID: "hero", Side: combat.SidePlayers},
		{ID: "goblin", Side: combat.SideEnemies},
	}

	combat.MarkCombatantsSurprised(order, combat.SurpriseNone)

	assert.False(t, order[0].Surprised)
	assert.False(t, order[1].Surprised)
}

func TestClearSurprise(t *testing.T) {
	c := &combat.Combatant{Surprised: true}
	combat.ClearSurprise(c)
	assert.False(t, c.Surprised)
}
