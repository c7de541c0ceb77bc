package adventure_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/errors"
)

const validAdventure = `{
	"title": "The Sunken Crypt",
	"startLocationId": "antechamber",
	"locations": {
		"antechamber": {
			"id": "antechamber",
			"title": "Antechamber",
			"connections": [
				{"targetId": "crypt", "direction": "down"}
			]
		},
		"crypt": {
			"id": "crypt",
			"title": "Crypt",
			"entitiesPresent": ["skeleton"],
			"hazards": [
				{"id": "pit", "type": "trap", "active": true, "detectionDC": 12}
			]
		}
	},
	"entities": {
		"skeleton": {"id": "skeleton", "name": "Skeleton", "disposition": "hostile"}
	}
}`

func TestParse_Valid(t *testing.T) {
	adv, err := adventure.Parse([]byte(validAdventure))
	require.NoError(t, err)

	assert.Equal(t, "The Sunken Crypt", adv.Title)
	assert.Equal(t, "antechamber", adv.StartLocationID)
	require.NotNil(t, adv.Location("crypt"))
	require.NotNil(t, adv.Entity("skeleton"))
	assert.Len(t, adv.Location("crypt").ActiveHazards(adventure.HazardTrap), 1)
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := adventure.Parse([]byte(`{"title": `))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestParse_AggregatesValidationIssues(t *testing.T) {
	_, err := adventure.Parse([]byte(`{
		"startLocationId": "nowhere",
		"locations": {
			"room": {
				"id": "mismatched",
				"title": "Room",
				"entitiesPresent": ["ghost"]
			}
		},
		"entities": {
			"nameless": {"id": "nameless"}
		}
	}`))
	require.Error(t, err)

	var issues *errors.ValidationErrors
	require.ErrorAs(t, err, &issues)

	paths := make([]string, 0, len(issues.Issues))
	for _, issue := range issues.Issues {
		paths = append(paths, issue.Path)
	}
	// One pass reports everything: the broken start ref, the key mismatch,
	// the undefined entity ref and the nameless entity.
	assert.Contains(t, paths, "startLocationId")
	assert.Contains(t, paths, "locations.room.id")
	assert.Contains(t, paths, "locations.room.entitiesPresent[0]")
	assert.Contains(t, paths, "entities.nameless.name")
}

func TestParse_DuplicateHazardIDs(t *testing.T) {
	_, err := adventure.Parse([]byte(`{
		"startLocationId": "room",
		"locations": {
			"room": {
				"id": "room",
				"title": "Room",
				"hazards": [
					{"id": "pit", "type": "trap", "active": true, "detectionDC": 10},
					{"id": "pit", "type": "trap", "active": true, "detectionDC": 10}
				]
			}
		}
	}`))
	require.Error(t, err)

	var issues *errors.ValidationErrors
	require.ErrorAs(t, err, &issues)
	assert.Len(t, issues.Issues, 1)
}

func TestParse_SanitizesDanglingConnections(t *testing.T) {
	adv, err := adventure.Parse([]byte(`{
		"startLocationId": "room",
		"locations": {
			"room": {
				"id": "room",
				"title": "Room",
				"connections": [
					{"targetId": "gone", "direction": "east"}
				],
				"exits": ["also_gone"]
			}
		}
	}`))
	require.NoError(t, err)

	room := adv.Location("room")
	assert.Empty(t, room.Connections)
	assert.Empty(t, room.Exits)
	require.Len(t, room.Interactables, 1)
	assert.Equal(t, "blocked-path-gone", room.Interactables[0].ID)
	assert.Contains(t, room.Interactables[0].Description, "east")
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adventure.json")
	require.NoError(t, os.WriteFile(path, []byte(validAdventure), 0o644))

	adv, err := adventure.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "The Sunken Crypt", adv.Title)

	_, err = adventure.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestEdges_DedupesLegacyExits(t *testing.T) {
	loc := &adventure.Location{
		ID: "hall",
		Connections: []*adventure.Connection{
			{TargetID: "yard", Direction: "north"},
		},
		Exits: []string{"yard", "cellar"},
	}

	edges := loc.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "yard", edges[0].TargetID)
	assert.Equal(t, "north", edges[0].Direction)
	assert.Equal(t, "cellar", edges[1].TargetID)
}
