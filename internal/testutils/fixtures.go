package testutils

import (
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/world"
)

func intPtr(v int) *int { return &v }

// CreateTestHero creates a fully formed player-controlled character
func CreateTestHero(id, name string) *character.Character {
	return &character.Character{
		ID:               id,
		Name:             name,
		Controller:       character.ControllerPlayer,
		Level:            3,
		ProficiencyBonus: 2,
		Status:           character.StatusActive,
		Attributes: map[character.Attribute]*character.AbilityScore{
			character.AttributeStrength:     {Score: 16, Bonus: intPtr(3)},
			character.AttributeDexterity:    {Score: 14, Bonus: intPtr(2)},
			character.AttributeConstitution: {Score: 15, Bonus: intPtr(2)},
			character.AttributeIntelligence: {Score: 10, Bonus: intPtr(0)},
			character.AttributeWisdom:       {Score: 13, Bonus: intPtr(1)},
			character.AttributeCharisma:     {Score: 12, Bonus: intPtr(1)},
		},
		Skills: []*character.Skill{
			{Name: "Athletics", Proficient: true},
			{Name: "Perception", Proficient: true},
		},
		HP: character.HitPoints{Current: 24, Max: 24},
		AC: 16,
	}
}

// CreateTestCompanion creates an AI-controlled party member
func CreateTestCompanion(id, name string) *character.Character {
	c := CreateTestHero(id, name)
	c.Controller = character.ControllerAI
	c.HP = character.HitPoints{Current: 18, Max: 18}
	c.AC = 14
	return c
}

// CreateTestEnemy creates a live enemy instance
func CreateTestEnemy(instanceID, templateID, name string, hp int) *world.Enemy {
	return &world.Enemy{
		InstanceID:  instanceID,
		TemplateID:  templateID,
		Name:        name,
		HP:          world.HitPoints{Current: hp, Max: hp},
		AC:          13,
		Disposition: adventure.DispositionHostile,
		Status:      world.EnemyStatusActive,
	}
}

// CreateTestLocation creates a bare location node
func CreateTestLocation(id, title, region string) *adventure.Location {
	return &adventure.Location{
		ID:     id,
		Title:  title,
		Region: region,
		Mode:   adventure.ModeDungeon,
	}
}

// CreateTestAdventure creates a small two-location adventure with one
// hostile entity template at the second location
func CreateTestAdventure() *adventure.Adventure {
	entrance := CreateTestLocation("entrance", "Cave Entrance", "cave")
	entrance.Mode = adventure.ModeSafe
	entrance.Connections = []*adventure.Connection{
		{TargetID: "chamber", Direction: "north", Visibility: adventure.VisibilityOpen},
	}

	chamber := CreateTestLocation("chamber", "Bone Chamber", "cave")
	chamber.Connections = []*adventure.Connection{
		{TargetID: "entrance", Direction: "south", Visibility: adventure.VisibilityOpen},
	}
	chamber.EntitiesPresent = []string{"goblin"}

	return &adventure.Adventure{
		Title:           "Test Delve",
		StartLocationID: "entrance",
		Locations: map[string]*adventure.Location{
			"entrance": entrance,
			"chamber":  chamber,
		},
		Entities: map[string]*adventure.Entity{
			"goblin": {
				ID:          "goblin",
				Name:        "Goblin",
				Disposition: adventure.DispositionHostile,
				HP:          &adventure.HitPoints{Max: 7},
				AC:          13,
			},
		},
	}
}
