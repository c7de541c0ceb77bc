package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fvicente/mazmorra/internal/matching"
)

func candidates() []matching.Candidate {
	return []matching.Candidate{
		{ID: "goblin_chief", Name: "Goblin Chief"},
		{ID: "cofre_mimico", Name: "Old Chest", Keywords: []string{"chest", "cofre"}},
		{ID: "puerta_norte", Name: "North Door"},
	}
}

func TestMatch_ExactID(t *testing.T) {
	m := matching.New()

	id, ok := m.Match("cofre_mimico", candidates())
	assert.True(t, ok)
	assert.Equal(t, "cofre_mimico", id)
}

func TestMatch_ExactNameCaseInsensitive(t *testing.T) {
	m := matching.New()

	id, ok := m.Match("goblin chief", candidates())
	assert.True(t, ok)
	assert.Equal(t, "goblin_chief", id)
}

func TestMatch_SubstringBothDirections(t *testing.T) {
	m := matching.New()

	// Query contained in the candidate name.
	id, ok := m.Match("chief", candidates())
	assert.True(t, ok)
	assert.Equal(t, "goblin_chief", id)

	// Candidate name contained in the query.
	id, ok = m.Match("the old chest in the corner", candidates())
	assert.True(t, ok)
	assert.Equal(t, "cofre_mimico", id)
}

func TestMatch_Keywords(t *testing.T) {
	m := matching.New()

	id, ok := m.Match("cofre", candidates())
	assert.True(t, ok)
	assert.Equal(t, "cofre_mimico", id)
}

func TestMatch_FuzzySpelling(t *testing.T) {
	m := matching.New()

	// Near-miss spelling resolved by similarity.
	id, ok := m.Match("goblin cheif", candidates())
	assert.True(t, ok)
	assert.Equal(t, "goblin_chief", id)
}

func TestMatch_NoMatch(t *testing.T) {
	m := matching.New()

	_, ok := m.Match("red dragon", candidates())
	assert.False(t, ok)

	_, ok = m.Match("", candidates())
	assert.False(t, ok)

	_, ok = m.Match("anything", nil)
	assert.False(t, ok)
}

func TestMatch_NormalizesSeparators(t *testing.T) {
	m := matching.New()

	id, ok := m.Match("NORTH-DOOR", candidates())
	assert.True(t, ok)
	assert.Equal(t, "puerta_norte", id)
}

func TestMatch_ThresholdOption(t *testing.T) {
	strict := matching.New(matching.WithSimilarityThreshold(0.99))

	_, ok := strict.Match("goblin cheif", candidates())
	assert.False(t, ok)
}
