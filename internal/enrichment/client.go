package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/suykerbuyk/podseg/internal/config"
	"github.com/suykerbuyk/podseg/internal/httpx"
)

// ErrNoAPIKey is returned by Summarize when the configured key variable is
// unset.
var ErrNoAPIKey = errors.New("enrichment API key not set")

// Summarize asks the chat model for a bullet-point summary. Unlike Generate
// it ignores the enabled flag and fails when no API key is available.
func Summarize(ctx context.Context, cfg config.EnrichmentConfig, input PromptInput, log zerolog.Logger) (*Result, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set %s", ErrNoAPIKey, cfg.APIKeyEnv)
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	return complete(ctx, cfg, apiKey, input, log)
}

// Generate calls the LLM to summarize a transcript.
// Returns (nil, nil) if enrichment is disabled or the API key is not set.
func Generate(ctx context.Context, cfg config.EnrichmentConfig, input PromptInput, log zerolog.Logger) (*Result, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, nil
	}

	return complete(ctx, cfg, apiKey, input, log)
}

func complete(ctx context.Context, cfg config.EnrichmentConfig, apiKey string, input PromptInput, log zerolog.Logger) (*Result, error) {
	reqBody := chatRequest{
		Model:       cfg.Model,
		Messages:    buildMessages(input),
		Temperature: 0.3,
	}

	client := httpx.New(cfg.Timeout(), log.With().Str("component", "enrichment").Logger())

	var raw json.RawMessage
	if err := client.PostJSON(ctx, httpx.Endpoint(cfg.BaseURL, "chat/completions"), apiKey, reqBody, &raw); err != nil {
		return nil, err
	}
	res, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}
	if res.Model == "" {
		res.Model = cfg.Model
	}
	return res, nil
}

func parseResponse(body []byte) (*Result, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("empty summary in response")
	}

	return &Result{Summary: content, Model: resp.Model}, nil
}
