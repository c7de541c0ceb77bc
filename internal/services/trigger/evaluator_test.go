package trigger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fvicente/mazmorra/internal/domain/action"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/services/exploration"
	"github.com/fvicente/mazmorra/internal/services/trigger"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
	"github.com/fvicente/mazmorra/internal/uuid"
)

func newEvaluator(t *testing.T) *trigger.Evaluator {
	t.Helper()
	ws, err := worldsvc.New(&worldsvc.Config{UUIDGenerator: uuid.NewGoogleUUIDGenerator()})
	require.NoError(t, err)
	es, err := exploration.New(&exploration.Config{WorldService: ws})
	require.NoError(t, err)
	ev, err := trigger.New(&trigger.Config{ExplorationService: es})
	require.NoError(t, err)
	return ev
}

func ambushLocation() *adventure.Location {
	return &adventure.Location{
		ID: "grove", Title: "Shadowed Grove", Mode: adventure.ModeWilderness,
		Hazards: []*adventure.Hazard{{
			ID: "bandit-ambush", Name: "Bandit Ambush", Type: adventure.HazardAmbush,
			Active: true, DetectionDC: 15,
			Narration: "Bandits drop from the trees!",
		}},
	}
}

func hostileEnemy(id, name string) *worlddomain.Enemy {
	return &worlddomain.Enemy{
		InstanceID: id, TemplateID: name, Name: name,
		HP: worlddomain.HitPoints{Current: 7, Max: 7}, AC: 12,
		Disposition: adventure.DispositionHostile,
		Status:      worlddomain.EnemyStatusActive,
	}
}

func TestEvaluateExploration_AmbushPreemptsProximity(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := ambushLocation()
	enemies := []*worlddomain.Enemy{hostileEnemy("g1", "Goblin")}

	res := ev.EvaluateExploration(state, loc, enemies, trigger.StealthNotAttempted)
	assert.True(t, res.ShouldStartCombat)
	assert.Equal(t, combat.TriggerAmbush, res.Reason)
	assert.Equal(t, combat.SurpriseEnemy, res.SurpriseSide)
	assert.Equal(t, "bandit-ambush", res.TriggeringEntityID)
	assert.Equal(t, "Bandits drop from the trees!", res.Hook)
}

func TestEvaluateExploration_DiscoveredAmbushDoesNotFire(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := ambushLocation()

	ls := worlddomain.NewLocationState()
	ls.DiscoveredSecrets["bandit-ambush"] = true
	state.Locations["grove"] = ls

	res := ev.EvaluateExploration(state, loc, nil, trigger.StealthNotAttempted)
	assert.False(t, res.ShouldStartCombat)
	assert.Equal(t, combat.TriggerNone, res.Reason)
}

func TestEvaluateExploration_ProximityAndStealth(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := &adventure.Location{ID: "den", Title: "Den"}
	enemies := []*worlddomain.Enemy{hostileEnemy("g1", "Goblin")}

	res := ev.EvaluateExploration(state, loc, enemies, trigger.StealthNotAttempted)
	assert.Equal(t, combat.TriggerProximity, res.Reason)
	assert.Equal(t, combat.SurpriseNone, res.SurpriseSide)

	res = ev.EvaluateExploration(state, loc, enemies, trigger.StealthFailure)
	assert.Equal(t, combat.TriggerStealthFail, res.Reason)

	res = ev.EvaluateExploration(state, loc, enemies, trigger.StealthSuccess)
	assert.False(t, res.ShouldStartCombat, "successful stealth suppresses the trigger")
}

func TestEvaluateExploration_HiddenAndDeadEnemiesIgnored(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := &adventure.Location{ID: "den", Title: "Den"}

	hidden := hostileEnemy("h1", "Lurker")
	hidden.Disposition = adventure.DispositionHidden
	dead := hostileEnemy("d1", "Goblin")
	dead.Status = worlddomain.EnemyStatusDead

	res := ev.EvaluateExploration(state, loc, []*worlddomain.Enemy{hidden, dead}, trigger.StealthNotAttempted)
	assert.False(t, res.ShouldStartCombat)
}

func TestEvaluateInteraction_MimicExactAndFuzzy(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := &adventure.Location{
		ID: "vault", Title: "Vault",
		Hazards: []*adventure.Hazard{{
			ID: "cofre_mimico", Name: "Cofre", Type: adventure.HazardMimic,
			Active: true, Narration: "The chest sprouts teeth!",
		}},
	}

	res := ev.EvaluateInteraction(state, loc, nil, "cofre_mimico", false)
	assert.Equal(t, combat.TriggerMimic, res.Reason)
	assert.Equal(t, combat.SurpriseEnemy, res.SurpriseSide)
	assert.Equal(t, "cofre_mimico", res.TriggeringEntityID)

	// Substring match: the player just says "cofre".
	res = ev.EvaluateInteraction(state, loc, nil, "cofre", false)
	assert.Equal(t, combat.TriggerMimic, res.Reason)
	assert.Equal(t, "cofre_mimico", res.TriggeringEntityID)

	// Unrelated object does not wake the mimic.
	res = ev.EvaluateInteraction(state, loc, nil, "estatua", false)
	assert.False(t, res.ShouldStartCombat)
}

func TestEvaluateInteraction_DiscoveredMimicStillSpringsWithoutSurprise(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := &adventure.Location{
		ID: "vault", Title: "Vault",
		Hazards: []*adventure.Hazard{{
			ID: "cofre_mimico", Name: "Cofre", Type: adventure.HazardMimic,
			Active: true, Narration: "The chest sprouts teeth!",
		}},
	}

	ls := worlddomain.NewLocationState()
	ls.DiscoveredSecrets["cofre_mimico"] = true
	state.Locations["vault"] = ls

	// The party spotted the mimic earlier but pokes it anyway.
	res := ev.EvaluateInteraction(state, loc, nil, "cofre", false)
	assert.True(t, res.ShouldStartCombat)
	assert.Equal(t, combat.TriggerMimic, res.Reason)
	assert.Equal(t, combat.SurpriseNone, res.SurpriseSide, "a known mimic surprises nobody")
	assert.Equal(t, "cofre_mimico", res.TriggeringEntityID)

	// A mimic fought and cleared does not spring twice.
	ls.ClearedHazards["cofre_mimico"] = true
	res = ev.EvaluateInteraction(state, loc, nil, "cofre", false)
	assert.False(t, res.ShouldStartCombat)
}

func TestEvaluateInteraction_ProvocationNoSurprise(t *testing.T) {
	ev := newEvaluator(t)
	state := worlddomain.NewState()
	loc := &adventure.Location{ID: "camp", Title: "Camp"}
	enemies := []*worlddomain.Enemy{hostileEnemy("b1", "Bandit")}

	res := ev.EvaluateInteraction(state, loc, enemies, "bandit", true)
	assert.Equal(t, combat.TriggerProvocation, res.Reason)
	assert.Equal(t, combat.SurpriseNone, res.SurpriseSide)

	res = ev.EvaluateInteraction(state, loc, nil, "door", false)
	assert.False(t, res.ShouldStartCombat)
}

func TestEvaluatePlayerAction_AttackGrantsPlayerSurprise(t *testing.T) {
	ev := newEvaluator(t)
	enemies := []*worlddomain.Enemy{hostileEnemy("g1", "Goblin"), hostileEnemy("g2", "Orc")}

	res := ev.EvaluatePlayerAction(&action.Interpreted{Type: action.TypeAttack, TargetID: "orc"}, enemies)
	assert.True(t, res.ShouldStartCombat)
	assert.Equal(t, combat.TriggerPlayerSurprise, res.Reason)
	assert.Equal(t, combat.SurprisePlayer, res.SurpriseSide)
	assert.Equal(t, "g2", res.TriggeringEntityID, "fuzzy target matched by name")

	res = ev.EvaluatePlayerAction(&action.Interpreted{Type: action.TypeMove}, enemies)
	assert.False(t, res.ShouldStartCombat)

	res = ev.EvaluatePlayerAction(&action.Interpreted{Type: action.TypeAttack}, nil)
	assert.False(t, res.ShouldStartCombat, "nothing to attack")
}
