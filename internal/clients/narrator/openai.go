package narrator

import (
	"context"
	"encoding/json"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/resilience"
)

const systemPrompt = `You are the game master of a tabletop RPG session.
Narrate the outcome of the player's action in vivid markdown prose, two to
four paragraphs, second person, present tense. Never decide dice outcomes
yourself; the engine resolves all rolls. Do not reveal hidden enemies or
undetected hazards.`

// OpenAIConfig holds configuration for the OpenAI-backed narrator.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   *resilience.Policy
}

// OpenAINarrator implements Narrator using the OpenAI chat completion API.
type OpenAINarrator struct {
	client oai.Client
	model  string
	retry  *resilience.Policy
}

// NewOpenAINarrator creates an OpenAI-backed narrator.
func NewOpenAINarrator(cfg *OpenAIConfig) (*OpenAINarrator, error) {
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

	return &OpenAINarrator{
		client: oai.NewClient(reqOpts...),
		model:  cfg.Model,
		retry:  retry,
	}, nil
}

// Narrate implements Narrator. Transport failures are retried with backoff;
// an empty response is a contract violation and fails fast.
func (n *OpenAINarrator) Narrate(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.InvalidArgument("request is required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode narration request")
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(n.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(string(payload)),
		},
	}

	var content string
	call := func() error {
		resp, callErr := n.client.Chat.Completions.New(ctx, params)
		if callErr != nil {
			return errors.Unavailablef("narration call failed: %v", callErr)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return errors.Contract("narrator returned an empty response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	if err := n.retry.Do(ctx, call); err != nil {
		return nil, err
	}

	return &Result{Narration: content}, nil
}
