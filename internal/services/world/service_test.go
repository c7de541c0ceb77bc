package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
	"github.com/fvicente/mazmorra/internal/testutils"
	"github.com/fvicente/mazmorra/internal/uuid"
	mockuuid "github.com/fvicente/mazmorra/internal/uuid/mocks"
)

func newService(t *testing.T) *worldsvc.Service {
	t.Helper()
	svc, err := worldsvc.New(&worldsvc.Config{
		UUIDGenerator: uuid.NewGoogleUUIDGenerator(),
	})
	require.NoError(t, err)
	return svc
}

func testAdventure() *adventure.Adventure {
	return &adventure.Adventure{
		Title:           "Test",
		StartLocationID: "plaza",
		Locations: map[string]*adventure.Location{
			"plaza": {ID: "plaza", Title: "Plaza"},
			"crypt": {
				ID:              "crypt",
				Title:           "Crypt",
				EntitiesPresent: []string{"goblin", "goblin", "missing"},
			},
		},
		Entities: map[string]*adventure.Entity{
			"goblin": {
				ID:          "goblin",
				Name:        "Goblin",
				Disposition: adventure.DispositionHostile,
				HP:          &adventure.HitPoints{Current: 7, Max: 7},
				AC:          13,
			},
		},
	}
}

func TestNew_RequiresUUIDGenerator(t *testing.T) {
	_, err := worldsvc.New(&worldsvc.Config{})
	assert.Error(t, err)
}

func TestGetOrCreateLocationState_Idempotent(t *testing.T) {
	svc := newService(t)
	state := worlddomain.NewState()

	first := svc.GetOrCreateLocationState(state, "plaza")
	second := svc.GetOrCreateLocationState(state, "plaza")

	assert.Same(t, first, second)
	assert.False(t, first.Visited)
	assert.Zero(t, first.VisitCount)
}

func TestRegisterVisit_FirstVisitTurnSetOnce(t *testing.T) {
	svc := newService(t)
	state := worlddomain.NewState()

	ls := svc.RegisterVisit(state, "plaza", 3)
	assert.True(t, ls.Visited)
	assert.Equal(t, 3, ls.FirstVisitTurn)
	assert.Equal(t, 3, ls.LastVisitTurn)
	assert.Equal(t, 1, ls.VisitCount)

	svc.RegisterVisit(state, "plaza", 9)
	assert.Equal(t, 3, ls.FirstVisitTurn)
	assert.Equal(t, 9, ls.LastVisitTurn)
	assert.Equal(t, 2, ls.VisitCount)

	assert.Equal(t, worlddomain.VisitVisited, state.VisitStatusOf("plaza"))
}

func TestUpdateConnection_DefaultsThenMerge(t *testing.T) {
	svc := newService(t)
	state := worlddomain.NewState()

	locked := true
	cs := svc.UpdateConnection(state, "plaza", "crypt", worlddomain.ConnectionUpdate{IsLocked: &locked})

	// Created with open/unlocked/unblocked defaults, then merged.
	assert.True(t, cs.IsOpen)
	assert.True(t, cs.IsLocked)
	assert.False(t, cs.IsBlocked)

	open := false
	svc.UpdateConnection(state, "plaza", "crypt", worlddomain.ConnectionUpdate{IsOpen: &open})
	assert.False(t, cs.IsOpen)
	assert.True(t, cs.IsLocked, "untouched fields survive the merge")
}

func TestEffectiveLocation_UnvisitedSpawnsFromTemplates(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockGen := mockuuid.NewMockGenerator(ctrl)
	mockGen.EXPECT().New().Return("inst-1")
	mockGen.EXPECT().New().Return("inst-2")

	svc, err := worldsvc.New(&worldsvc.Config{UUIDGenerator: mockGen})
	require.NoError(t, err)

	adv := testAdventure()
	state := worlddomain.NewState()

	eff, err := svc.EffectiveLocation(adv, state, "crypt")
	require.NoError(t, err)
	assert.False(t, eff.Visited)
	require.Len(t, eff.Enemies, 2, "unknown templates are skipped")

	assert.Equal(t, "inst-1", eff.Enemies[0].InstanceID)
	assert.Equal(t, "inst-2", eff.Enemies[1].InstanceID)
	for _, e := range eff.Enemies {
		assert.Equal(t, "goblin", e.TemplateID)
		assert.Equal(t, 7, e.HP.Current)
		assert.Equal(t, 7, e.HP.Max)
		assert.Equal(t, 13, e.AC)
		assert.Equal(t, worlddomain.EnemyStatusActive, e.Status)
	}

	// Repeat calls see the same instances, not fresh spawns.
	again, err := svc.EffectiveLocation(adv, state, "crypt")
	require.NoError(t, err)
	assert.Equal(t, eff.Enemies, again.Enemies)
}

func TestEffectiveLocation_VisitedRosterIsGroundTruth(t *testing.T) {
	svc := newService(t)
	adv := testAdventure()
	state := worlddomain.NewState()

	svc.RegisterVisit(state, "crypt", 1)
	svc.ReplaceEnemies(state, "crypt", []*worlddomain.Enemy{})

	eff, err := svc.EffectiveLocation(adv, state, "crypt")
	require.NoError(t, err)
	assert.True(t, eff.Visited)
	assert.Empty(t, eff.Enemies, "cleared room stays cleared despite static templates")
}

func TestEffectiveLocation_UnknownLocation(t *testing.T) {
	svc := newService(t)

	_, err := svc.EffectiveLocation(testAdventure(), worlddomain.NewState(), "nowhere")
	assert.Error(t, err)
}

func TestReplaceEnemies_SwapsRosterWholesale(t *testing.T) {
	svc := newService(t)
	adv := testutils.CreateTestAdventure()
	state := worlddomain.NewState()

	svc.ReplaceEnemies(state, "chamber", []*worlddomain.Enemy{
		testutils.CreateTestEnemy("inst-a", "goblin", "Goblin", 7),
		testutils.CreateTestEnemy("inst-b", "goblin", "Goblin", 7),
	})

	eff, err := svc.EffectiveLocation(adv, state, "chamber")
	require.NoError(t, err)
	require.Len(t, eff.Enemies, 2)
	assert.Equal(t, "inst-a", eff.Enemies[0].InstanceID)

	// A later replace discards the previous roster entirely.
	svc.ReplaceEnemies(state, "chamber", []*worlddomain.Enemy{
		testutils.CreateTestEnemy("inst-c", "goblin", "Goblin", 7),
	})
	eff, err = svc.EffectiveLocation(adv, state, "chamber")
	require.NoError(t, err)
	require.Len(t, eff.Enemies, 1)
	assert.Equal(t, "inst-c", eff.Enemies[0].InstanceID)
}
