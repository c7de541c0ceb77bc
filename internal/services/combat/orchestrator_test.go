package combat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fvicente/mazmorra/internal/clients/tactician"
	mocktactician "github.com/fvicente/mazmorra/internal/clients/tactician/mock"
	"github.com/fvicente/mazmorra/internal/dice"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	combatdomain "github.com/fvicente/mazmorra/internal/domain/combat"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	combatsvc "github.com/fvicente/mazmorra/internal/services/combat"
	"github.com/fvicente/mazmorra/internal/services/initiation"
	"github.com/fvicente/mazmorra/internal/uuid"
)

func newOrchestrator(t *testing.T, roller dice.Roller, tac tactician.Tactician) *combatsvc.Orchestrator {
	t.Helper()
	o, err := combatsvc.New(&combatsvc.Config{
		Roller:        roller,
		Tactician:     tac,
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
	})
	require.NoError(t, err)
	return o
}

func hero() *character.Character {
	dexMod := 2
	return &character.Character{
		ID: "hero", Name: "Hero",
		Controller: character.ControllerPlayer,
		Status:     character.StatusActive,
		HP:         character.HitPoints{Current: 20, Max: 20},
		AC:         15,
		Attributes: map[character.Attribute]*character.AbilityScore{
			character.AttributeDexterity: {Score: 14, Bonus: &dexMod},
		},
	}
}

func goblin() *worlddomain.Enemy {
	return &worlddomain.Enemy{
		InstanceID: "goblin-1", TemplateID: "goblin", Name: "Goblin",
		HP: worlddomain.HitPoints{Current: 10, Max: 10}, AC: 12,
		Disposition: adventure.DispositionHostile,
		Status:      worlddomain.EnemyStatusActive,
	}
}

func payload(party []*character.Character, enemies []*worlddomain.Enemy, surprise combatdomain.SurpriseSide) *initiation.Payload {
	return &initiation.Payload{
		LocationID:   "lair",
		Party:        party,
		Enemies:      enemies,
		SurpriseSide: surprise,
		Reason:       combatdomain.TriggerProximity,
	}
}

func TestSetup_InitiativeOrderAndTieBreak(t *testing.T) {
	roller := dice.NewMockRoller()
	// Hero rolls 10 (+2 dex = 12), goblin rolls 12 (+0 = 12): tie broken by
	// the higher modifier, so the hero goes first.
	roller.SetRolls([]int{10, 12})

	o := newOrchestrator(t, roller, nil)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	assert.Equal(t, combatdomain.PhaseTurnStart, state.Phase)
	assert.Equal(t, 1, state.Round)
	assert.Equal(t, 0, state.Turn)
	require.Len(t, state.Order, 2)
	assert.Equal(t, "Hero", state.Order[0].Name)
	assert.Equal(t, 12, state.Order[0].Initiative)
	assert.Equal(t, "Goblin", state.Order[1].Name)
}

func TestSetup_SurpriseTagsOppositeSide(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 4})

	o := newOrchestrator(t, roller, nil)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseEnemy))
	require.NoError(t, err)

	for _, c := range state.Order {
		if c.Side == combatdomain.SidePlayers {
			assert.True(t, c.Surprised, "enemy surprise catches the players")
		} else {
			assert.False(t, c.Surprised)
		}
	}
}

func TestStep_PlayerTurnSuspends(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 4}) // hero 20, goblin 4

	o := newOrchestrator(t, roller, nil)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, res.AwaitingPlayer)
	assert.Equal(t, "Hero", res.ActorName)
	assert.Equal(t, combatdomain.PhaseWaitingForAction, state.Phase)
}

func TestStep_SurpriseSuppressesExactlyOneTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)
	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).Return(&tactician.Decision{
		Narration: "The goblin snarls.",
	}, nil).AnyTimes()

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{4, 18}) // goblin first with 18

	o := newOrchestrator(t, roller, nil)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurprisePlayer))
	require.NoError(t, err)

	gob := state.Order[0]
	require.Equal(t, "Goblin", gob.Name)
	require.True(t, gob.Surprised, "player surprise catches the goblin")

	// First step: the surprised goblin's turn is skipped, landing on the hero.
	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, res.AwaitingPlayer)
	assert.Equal(t, "Hero", res.ActorName)
	assert.False(t, gob.Surprised, "surprise cleared by the skip")
	assert.Contains(t, res.Narration, "caught off guard")

	// The hero passes; round 2 the goblin acts normally.
	o2 := newOrchestrator(t, roller, tac)
	res, err = o2.SubmitPlayerAction(state, &combatsvc.PlayerAction{Kind: "pass"})
	require.NoError(t, err)
	assert.True(t, res.MoreAITurnsPending)

	res, err = o2.Step(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "Goblin", res.ActorName)
	assert.False(t, res.AwaitingPlayer)
}

func TestStep_TurnContextCarriesSpellsAndScene(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)

	var captured *tactician.TurnContext
	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tc *tactician.TurnContext) (*tactician.Decision, error) {
			captured = tc
			return &tactician.Decision{Narration: "Mirena weighs her options."}, nil
		})

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{18, 2}) // companion acts first

	companion := hero()
	companion.ID = "mirena"
	companion.Name = "Mirena"
	companion.Controller = character.ControllerAI
	companion.Spells = []string{"cure wounds", "faerie fire"}

	p := payload([]*character.Character{companion}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone)
	p.LocationDescription = "A low cave strewn with gnawed bones."

	o := newOrchestrator(t, roller, tac)
	state, err := o.Setup(p)
	require.NoError(t, err)
	assert.Equal(t, "A low cave strewn with gnawed bones.", state.LocationDescription)

	_, err = o.Step(context.Background(), state)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Mirena", captured.Actor.Name)
	assert.Equal(t, []string{"cure wounds", "faerie fire"}, captured.Spells)
	assert.Equal(t, "A low cave strewn with gnawed bones.", captured.LocationDescription)
}

func TestStep_TacticianFailureDefaultsToNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)
	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).Return(nil, errors.Unavailable("model down"))

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{2, 18}) // goblin acts first

	o := newOrchestrator(t, roller, tac)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, res.Narration, "does nothing")
	assert.False(t, res.CombatEnded)

	for _, c := range state.Order {
		assert.Equal(t, c.MaxHP, c.CurrentHP, "a defaulted turn changes no HP")
	}
}

func TestStep_AttackMissingDamageRollWastesTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{2, 18}) // goblin acts first

	o := newOrchestrator(t, roller, tac)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	heroC := state.Order[1]
	require.Equal(t, "Hero", heroC.Name)

	// An attack arrives with only a to-hit roll and no damage roll.
	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).Return(&tactician.Decision{
		Narration: "The goblin swings.",
		TargetID:  heroC.ID,
		Rolls:     []tactician.RollRequest{{Kind: tactician.RollAttack, Notation: "1d20"}},
	}, nil)

	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	assert.Contains(t, res.Narration, "does nothing")
	assert.Equal(t, heroC.MaxHP, heroC.CurrentHP, "a malformed attack deals no damage")
}

// Hero (20 HP) vs Goblin (10 HP, AC 12): the hero attacks twice, hitting
// both times for 6 damage, killing the goblin and winning combat.
func TestCombat_EndToEnd_HeroKillsGoblin(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)
	// The goblin posturing without a target resolves as a wasted turn.
	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).Return(&tactician.Decision{
		Narration: "The goblin stabs wildly.",
	}, nil).AnyTimes()

	roller := dice.NewMockRoller()
	// Initiative: hero 18(+2)=20, goblin 4.
	roller.SetRolls([]int{18, 4})

	o := newOrchestrator(t, roller, tac)
	state, err := o.Setup(payload([]*character.Character{hero()}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	gob := state.Order[1]
	require.Equal(t, "Goblin", gob.Name)

	// Round 1: hero's turn suspends, then attacks. To-hit 16+2=18 vs AC 12,
	// damage 6. Goblin at 4 HP.
	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	require.True(t, res.AwaitingPlayer)

	roller.SetRolls([]int{16, 6})
	res, err = o.SubmitPlayerAction(state, &combatsvc.PlayerAction{
		Kind: "attack", TargetID: gob.ID, Notation: "1d6",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, gob.CurrentHP)
	assert.False(t, res.CombatEnded)
	assert.True(t, res.MoreAITurnsPending, "goblin's AI turn is next")

	// Goblin's turn: tactician defaults to nothing (no target set).
	res, err = o.Step(context.Background(), state)
	require.NoError(t, err)
	require.False(t, res.AwaitingPlayer)
	require.False(t, res.CombatEnded)

	// Round 2: hero finishes the goblin. To-hit 10+2=12 vs AC 12 (exact hit),
	// damage 6 drops it past zero.
	res, err = o.Step(context.Background(), state)
	require.NoError(t, err)
	require.True(t, res.AwaitingPlayer)

	roller.SetRolls([]int{10, 6})
	res, err = o.SubmitPlayerAction(state, &combatsvc.PlayerAction{
		Kind: "attack", TargetID: gob.ID, Notation: "1d6",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, gob.CurrentHP)
	assert.Equal(t, combatdomain.StatusDead, gob.Status, "enemies crossing zero die")
	assert.True(t, res.CombatEnded)
	assert.Equal(t, combatdomain.SidePlayers, res.Winner)
	assert.Equal(t, combatdomain.PhaseCombatEnd, state.Phase)
	assert.NotNil(t, state.EndedAt)
}

func TestCombat_PlayerCrossingZeroGoesUnconscious(t *testing.T) {
	ctrl := gomock.NewController(t)
	tac := mocktactician.NewMockTactician(ctrl)

	roller := dice.NewMockRoller()
	roller.SetRolls([]int{2, 18}) // goblin acts first

	weakHero := hero()
	weakHero.HP = character.HitPoints{Current: 5, Max: 20}

	o := newOrchestrator(t, roller, tac)
	state, err := o.Setup(payload([]*character.Character{weakHero}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	heroC := state.Order[1]
	require.Equal(t, "Hero", heroC.Name)

	tac.EXPECT().DecideAction(gomock.Any(), gomock.Any()).Return(&tactician.Decision{
		Narration: "The goblin lunges.",
		TargetID:  heroC.ID,
		Rolls: []tactician.RollRequest{
			{Kind: tactician.RollAttack, Notation: "1d20+4"},
			{Kind: tactician.RollDamage, Notation: "1d6+2"},
		},
	}, nil)

	// Attack 14+4=18 vs AC 15 hits; damage 6+2=8 drops the hero from 5 to 0.
	roller.SetRolls([]int{14, 6})
	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, 0, heroC.CurrentHP)
	assert.Equal(t, combatdomain.StatusUnconscious, heroC.Status, "players crossing zero fall unconscious")
	assert.True(t, res.CombatEnded)
	assert.Equal(t, combatdomain.SideEnemies, res.Winner)
}

func TestHeal_CappedAtMaxAndRevives(t *testing.T) {
	roller := dice.NewMockRoller()
	o := newOrchestrator(t, roller, nil)

	healer := hero()
	ally := &character.Character{
		ID: "ally", Name: "Ally",
		Controller: character.ControllerPlayer,
		Status:     character.StatusActive,
		HP:         character.HitPoints{Current: 18, Max: 20},
		AC:         14,
	}
	roller.SetRolls([]int{18, 10, 4})
	state, err := o.Setup(payload([]*character.Character{healer, ally}, []*worlddomain.Enemy{goblin()}, combatdomain.SurpriseNone))
	require.NoError(t, err)

	res, err := o.Step(context.Background(), state)
	require.NoError(t, err)
	require.True(t, res.AwaitingPlayer)

	var allyC *combatdomain.Combatant
	for _, c := range state.Order {
		if c.Name == "Ally" {
			allyC = c
		}
	}
	require.NotNil(t, allyC)

	// Heal rolls 8, but the ally only needs 2.
	roller.SetRolls([]int{8})
	_, err = o.SubmitPlayerAction(state, &combatsvc.PlayerAction{
		Kind: "heal", TargetID: allyC.ID, Notation: "1d8",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, allyC.CurrentHP, "healing capped at max")
}
