// Package character defines party members: player-controlled heroes and
// AI-controlled companions.
package character

import "strings"

// Controller identifies who decides a character's actions.
type Controller string

const (
	ControllerPlayer Controller = "player"
	ControllerAI     Controller = "ai"
)

// Status is a character's combat-relevant life state. Characters are never
// deleted; they are marked unconscious or dead through HP changes.
type Status string

const (
	StatusActive      Status = "active"
	StatusUnconscious Status = "unconscious"
	StatusDead        Status = "dead"
)

// Attribute is one of the six ability scores.
type Attribute string

const (
	AttributeStrength     Attribute = "strength"
	AttributeDexterity    Attribute = "dexterity"
	AttributeConstitution Attribute = "constitution"
	AttributeIntelligence Attribute = "intelligence"
	AttributeWisdom       Attribute = "wisdom"
	AttributeCharisma     Attribute = "charisma"
)

// AbilityScore is a raw score with an optionally precomputed modifier.
// When Bonus is nil the modifier is derived as floor((score-10)/2).
type AbilityScore struct {
	Score int  `json:"score"`
	Bonus *int `json:"bonus,omitempty"`
}

// Modifier returns the ability modifier, preferring the precomputed value.
func (a *AbilityScore) Modifier() int {
	if a == nil {
		return 0
	}
	if a.Bonus != nil {
		return *a.Bonus
	}
	mod := a.Score - 10
	if mod < 0 {
		// Integer division truncates toward zero; ability modifiers floor.
		return (mod - 1) / 2
	}
	return mod / 2
}

// Skill is one entry in a character's skill list.
type Skill struct {
	Name       string `json:"name"`
	Proficient bool   `json:"proficient"`
	Modifier   *int   `json:"modifier,omitempty"` // precomputed, used verbatim when present
}

// Item is an inventory entry.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// HitPoints is the canonical current/max HP shape.
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Character is a party member.
type Character struct {
	ID               string                      `json:"id"`
	Name             string                      `json:"name"`
	Controller       Controller                  `json:"controller"`
	Level            int                         `json:"level"`
	ProficiencyBonus int                         `json:"proficiencyBonus"`
	Attributes       map[Attribute]*AbilityScore `json:"attributes"`
	Skills           []*Skill                    `json:"skills"`
	HP               HitPoints                   `json:"hp"`
	AC               int                         `json:"ac"`
	Inventory        []*Item                     `json:"inventory,omitempty"`
	Spells           []string                    `json:"spells,omitempty"`
	Status           Status                      `json:"status"`
}

// AbilityModifier returns the modifier for the given attribute, zero when
// the attribute is absent from the sheet.
func (c *Character) AbilityModifier(attr Attribute) int {
	if c.Attributes == nil {
		return 0
	}
	return c.Attributes[attr].Modifier()
}

// FindSkill returns the skill entry whose normalized name matches, or nil.
func (c *Character) FindSkill(name string) *Skill {
	want := NormalizeSkillName(name)
	for _, s := range c.Skills {
		if NormalizeSkillName(s.Name) == want {
			return s
		}
	}
	return nil
}

// NormalizeSkillName lowers the name and collapses separators so "Sleight of
// Hand", "sleight_of_hand" and "sleight-of-hand" compare equal.
func NormalizeSkillName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.ReplaceAll(lowered, "_", " ")
	lowered = strings.ReplaceAll(lowered, "-", " ")
	return strings.Join(strings.Fields(lowered), " ")
}

// IsConscious reports whether the character can currently act.
func (c *Character) IsConscious() bool {
	return c.Status == StatusActive || c.Status == ""
}

// ApplyDamage subtracts damage from current HP, flooring at zero. Crossing
// to zero marks the character unconscious, never dead: party members go down
// and can be revived.
func (c *Character) ApplyDamage(damage int) {
	if damage <= 0 {
		return
	}
	c.HP.Current -= damage
	if c.HP.Current <= 0 {
		c.HP.Current = 0
		c.Status = StatusUnconscious
	}
}

// Heal restores HP, capped at max. A character back above zero is active.
func (c *Character) Heal(amount int) {
	if amount <= 0 || c.Status == StatusDead {
		return
	}
	c.HP.Current += amount
	if c.HP.Current > c.HP.Max {
		c.HP.Current = c.HP.Max
	}
	if c.HP.Current > 0 {
		c.Status = StatusActive
	}
}

// HasItem reports whether the inventory holds at least one of the item id.
func (c *Character) HasItem(itemID string) bool {
	for _, item := range c.Inventory {
		if item.ID == itemID && item.Quantity > 0 {
			return true
		}
	}
	return false
}

// PartyHasItem reports whether any member's inventory holds the item id.
func PartyHasItem(party []*Character, itemID string) bool {
	for _, member := range party {
		if member.HasItem(itemID) {
			return true
		}
	}
	return false
}

// LivingMembers returns party members that are not dead.
func LivingMembers(party []*Character) []*Character {
	var living []*Character
	for _, member := range party {
		if member.Status != StatusDead {
			living = append(living, member)
		}
	}
	return living
}
