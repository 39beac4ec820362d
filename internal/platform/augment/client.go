// Package augment obtains an optional second opinion on a validated claim
// from a large language model. The provider is advisory: any failure, from
// transport errors to malformed output, degrades to a neutral opinion so
// the deterministic validation outcome always stands on its own.
package augment

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// Augmenter produces a second opinion for one claim given the tenant rule
// context and the claim context.
type Augmenter interface {
	Evaluate(ctx context.Context, rulesContext, claimContext string) Opinion
}

// Disabled is a no-op augmenter used when no API key is configured or
// augmentation is switched off.
type Disabled struct{}

func (Disabled) Evaluate(context.Context, string, string) Opinion {
	return Neutral()
}

// Client calls the Anthropic Messages API for opinions.
type Client struct {
	sdk        anthropic.Client
	model      anthropic.Model
	maxRetries int
	log        zerolog.Logger
}

// ClientConfig configures a Client. Model and MaxRetries fall back to
// sensible defaults when zero.
type ClientConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	Logger     zerolog.Logger
}

// NewClient creates an augmentation client. The API key is required.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("augment: api key is required")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaude3_5Haiku20241022
	}

	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 2
	}

	return &Client{
		sdk:        anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		maxRetries: retries,
		log:        cfg.Logger,
	}, nil
}

const systemPrompt = "You are a healthcare claims validation expert reviewing insurance claims " +
	"against tenant-specific adjudication rules. Respond with a single JSON object containing " +
	"exactly these keys: has_additional_errors (boolean), additional_errors (array of strings), " +
	"enhanced_explanation (string), recommended_action (string), confidence_score (number between 0 and 1). " +
	"Do not include any text outside the JSON object."

// Evaluate asks the model for an opinion, retrying transient failures. It
// never returns an error: after the retry budget is exhausted the caller
// gets a neutral opinion and the failure is logged.
func (c *Client) Evaluate(ctx context.Context, rulesContext, claimContext string) Opinion {
	prompt := fmt.Sprintf(
		"Review this claim against the adjudication rules and report any issues the rules alone would miss.\n\n%s\n\n%s",
		rulesContext, claimContext)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		resp, err := c.sdk.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: 1024,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("augmentation request failed")
			continue
		}

		var text string
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
				text += variant.Text
			}
		}

		opinion, err := ParseOpinion(text)
		if err != nil {
			lastErr = err
			c.log.Warn().Err(err).Int("attempt", attempt+1).Msg("augmentation response unusable")
			continue
		}
		return opinion
	}

	c.log.Error().Err(lastErr).Msg("augmentation exhausted retries, using neutral opinion")
	return Neutral()
}
