package tactician

import (
	"context"
	"encoding/json"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/resilience"
)

const decidePrompt = `You control one combatant in a turn-based RPG fight.
Pick one action for the actor described in the user message. Respond with a
single JSON object and nothing else:
{"narration": "...", "target_id": "...", "rolls": [{"kind": "attack", "notation": "1d20+4"}, {"kind": "damage", "notation": "1d6+2"}]}
Rules: you never decide roll outcomes, only request rolls by notation. An
attack needs an attack roll followed by a damage roll. target_id must be one
of the opponent or ally ids provided. Keep narration to one sentence.`

const reactPrompt = `You voice a companion character in a tabletop RPG party.
Given the player's action, reply with one short in-character line of dialogue
(one sentence, no quotes, no stage directions). If the character would stay
silent, reply with exactly SILENT.`

// OpenAIConfig holds configuration for the OpenAI-backed tactician.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   *resilience.Policy
}

// OpenAITactician implements Tactician and CompanionReactor using the OpenAI
// chat completion API.
type OpenAITactician struct {
	client oai.Client
	model  string
	retry  *resilience.Policy
}

// NewOpenAITactician creates an OpenAI-backed tactician.
func NewOpenAITactician(cfg *OpenAIConfig) (*OpenAITactician, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.InvalidArgument("API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.InvalidArgument("model is required")
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}

	retry := cfg.Retry
	if retry == nil {
		retry = resilience.NewPolicy()
	}

	return &OpenAITactician{
		client: oai.NewClient(reqOpts...),
		model:  cfg.Model,
		retry:  retry,
	}, nil
}

// DecideAction implements Tactician. A response that is not valid Decision
// JSON is a contract violation and is not retried; the caller decides the
// fallback behavior.
func (t *OpenAITactician) DecideAction(ctx context.Context, tc *TurnContext) (*Decision, error) {
	if tc == nil {
		return nil, errors.InvalidArgument("turn context is required")
	}

	payload, err := json.Marshal(tc)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode turn context")
	}

	content, err := t.complete(ctx, decidePrompt, string(payload), 0.7)
	if err != nil {
		return nil, err
	}

	var decision Decision
	if err := json.Unmarshal([]byte(extractJSON(content)), &decision); err != nil {
		return nil, errors.Contract("tactician returned unparseable decision")
	}
	return &decision, nil
}

// React implements CompanionReactor.
func (t *OpenAITactician) React(ctx context.Context, in *ReactionInput) (*Reaction, error) {
	if in == nil {
		return nil, errors.InvalidArgument("reaction input is required")
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode reaction input")
	}

	content, err := t.complete(ctx, reactPrompt, string(payload), 1.0)
	if err != nil {
		return nil, err
	}

	line := strings.TrimSpace(content)
	if line == "" || strings.EqualFold(line, "SILENT") {
		return nil, nil
	}

	return &Reaction{
		CharacterID:   in.CharacterID,
		CharacterName: in.CharacterName,
		Line:          line,
	}, nil
}

func (t *OpenAITactician) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(t.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
		Temperature: param.NewOpt(temperature),
	}

	var content string
	call := func() error {
		resp, callErr := t.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return errors.Unavailablef("tactician call failed: %v", callErr)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return errors.Contract("tactician returned an empty response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := t.retry.Do(ctx, call); err != nil {
		return "", err
	}
	return content, nil
}

// extractJSON strips markdown code fences models sometimes wrap JSON in.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
