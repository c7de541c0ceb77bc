// Package rules implements the table rules layered on top of raw dice:
// skill checks with the house crit rule, and passive perception.
package rules

import (
	"fmt"

	"github.com/fvicente/mazmorra/internal/dice"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/errors"
)

// skillAbilities maps a normalized skill name to its governing attribute.
var skillAbilities = map[string]character.Attribute{
	"athletics":       character.AttributeStrength,
	"acrobatics":      character.AttributeDexterity,
	"sleight of hand": character.AttributeDexterity,
	"stealth":         character.AttributeDexterity,
	"arcana":          character.AttributeIntelligence,
	"history":         character.AttributeIntelligence,
	"investigation":   character.AttributeIntelligence,
	"nature":          character.AttributeIntelligence,
	"religion":        character.AttributeIntelligence,
	"animal handling": character.AttributeWisdom,
	"insight":         character.AttributeWisdom,
	"medicine":        character.AttributeWisdom,
	"perception":      character.AttributeWisdom,
	"survival":        character.AttributeWisdom,
	"deception":       character.AttributeCharisma,
	"intimidation":    character.AttributeCharisma,
	"performance":     character.AttributeCharisma,
	"persuasion":      character.AttributeCharisma,
}

// CheckResult is the structured record of one skill check.
type CheckResult struct {
	Skill           string
	DC              int
	Modifier        int
	Total           int
	Dice            *dice.D20Result
	Success         bool
	CriticalSuccess bool
	CriticalFailure bool
	Notation        string // e.g. "1d20+5"
}

// ResolveSkillCheck rolls a skill check for the character against the DC.
//
// Modifier resolution, in priority order: a precomputed modifier on the
// character's matching skill entry is used verbatim; otherwise the governing
// ability's modifier plus the proficiency bonus when the entry marks
// proficiency. A missing skill entry is not an error; it resolves to the
// bare ability modifier.
//
// House rule: a natural 20 always succeeds and a natural 1 always fails,
// regardless of the total against the DC.
func ResolveSkillCheck(roller dice.Roller, ch *character.Character, skill string, dc int, mode dice.Mode) (*CheckResult, error) {
	if ch == nil {
		return nil, errors.InvalidArgument("character is required")
	}

	modifier := SkillModifier(ch, skill)

	roll, err := roller.RollD20(mode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll skill check")
	}

	total := roll.Kept + modifier
	result := &CheckResult{
		Skill:           skill,
		DC:              dc,
		Modifier:        modifier,
		Total:           total,
		Dice:            roll,
		CriticalSuccess: roll.NaturalCrit,
		CriticalFailure: roll.NaturalFail,
		Notation:        notation(modifier),
	}

	switch {
	case roll.NaturalCrit:
		result.Success = true
	case roll.NaturalFail:
		result.Success = false
	default:
		result.Success = total >= dc
	}

	return result, nil
}

// SkillModifier resolves the character's modifier for the skill without
// rolling. The fallback chain never fails: an unknown skill resolves to its
// governing ability modifier, an unknown ability to zero.
func SkillModifier(ch *character.Character, skill string) int {
	entry := ch.FindSkill(skill)
	if entry != nil && entry.Modifier != nil {
		return *entry.Modifier
	}

	ability := skillAbilities[character.NormalizeSkillName(skill)]
	modifier := ch.AbilityModifier(ability)
	if entry != nil && entry.Proficient {
		modifier += ch.ProficiencyBonus
	}
	return modifier
}

// PassivePerception is 10 + wisdom modifier + proficiency bonus when the
// character is proficient in Perception.
func PassivePerception(ch *character.Character) int {
	score := 10 + ch.AbilityModifier(character.AttributeWisdom)
	if entry := ch.FindSkill("perception"); entry != nil && entry.Proficient {
		score += ch.ProficiencyBonus
	}
	return score
}

// BestPassivePerception is the highest passive perception across the party.
// The sharpest pair of eyes spots the hazard for everyone.
func BestPassivePerception(party []*character.Character) int {
	best := 0
	for _, member := range party {
		if !member.IsConscious() {
			continue
		}
		if score := PassivePerception(member); score > best {
			best = score
		}
	}
	return best
}

func notation(modifier int) string {
	if modifier < 0 {
		return fmt.Sprintf("1d20%d", modifier)
	}
	return fmt.Sprintf("1d20+%d", modifier)
}
