package tactician

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	raw := `{"narration":"swings","target_id":"hero"}`

	assert.Equal(t, raw, extractJSON(raw))
	assert.Equal(t, raw, extractJSON("  \n"+raw+"\n"))
	assert.Equal(t, raw, extractJSON("```json\n"+raw+"\n```"))
	assert.Equal(t, raw, extractJSON("```\n"+raw+"\n```"))
}
