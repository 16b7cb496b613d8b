package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/ingredientlens/backend/internal/domain"
	"github.com/ingredientlens/backend/pkg/logger"
)

const (
	DefaultModel   = "gpt-4"
	DefaultTimeout = 60 * time.Second
)

// ClientConfig configures the chat-completion backed oracle
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client classifies ingredients through an OpenAI-compatible chat-completion API.
// It is safe for concurrent use.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

func NewClient(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   model,
		timeout: timeout,
		log:     logger.Component(cfg.Logger, "oracle"),
	}
}

// ClassifyIngredients labels each ingredient natural or synthetic.
// Labels are returned as the oracle wrote them.
func (c *Client) ClassifyIngredients(ctx context.Context, ingredients []string) ([]domain.Classification, error) {
	content, err := c.complete(ctx, classificationPrompt, ingredients)
	if err != nil {
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisRequestError,
			Message: "Failed to analyze ingredients",
			Err:     err,
		}
	}

	raw, err := extractJSONArray(content)
	if err != nil {
		c.log.Error().Err(err).Str("content", truncate(content, 200)).Msg("unparseable classification response")
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisParseError,
			Message: "Failed to parse ingredient classification",
			Err:     err,
		}
	}

	var classifications []domain.Classification
	if err := json.Unmarshal(raw, &classifications); err != nil {
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisParseError,
			Message: "Failed to parse ingredient classification",
			Err:     err,
		}
	}

	c.log.Debug().Int("requested", len(ingredients)).Int("classified", len(classifications)).Msg("classified ingredients")
	return classifications, nil
}

// AnalyzeEnvironmentalImpact asks for a per-ingredient environmental assessment
func (c *Client) AnalyzeEnvironmentalImpact(ctx context.Context, ingredients []string) ([]domain.IngredientImpact, error) {
	content, err := c.complete(ctx, environmentalPrompt, ingredients)
	if err != nil {
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisRequestError,
			Message: "Failed to analyze environmental impact",
			Err:     err,
		}
	}

	raw, err := extractJSONArray(content)
	if err != nil {
		c.log.Error().Err(err).Str("content", truncate(content, 200)).Msg("unparseable environmental response")
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisParseError,
			Message: "Failed to parse environmental impact analysis",
			Err:     err,
		}
	}

	var impacts []domain.IngredientImpact
	if err := json.Unmarshal(raw, &impacts); err != nil {
		return nil, &domain.AnalysisError{
			Code:    domain.CodeAnalysisParseError,
			Message: "Failed to parse environmental impact analysis",
			Err:     err,
		}
	}

	return impacts, nil
}

// complete sends one system prompt plus the comma-joined ingredient list
func (c *Client) complete(ctx context.Context, systemPrompt string, ingredients []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: strings.Join(ingredients, ", "),
			},
		},
	})
	if err != nil {
		c.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("chat completion failed")
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	c.log.Debug().Dur("elapsed", time.Since(start)).Int("totalTokens", resp.Usage.TotalTokens).Msg("chat completion")
	return resp.Choices[0].Message.Content, nil
}

// extractJSONArray strips an optional markdown code fence and checks that what
// is left is a JSON array.
func extractJSONArray(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	if !strings.HasPrefix(s, "[") {
		return nil, errors.New("response is not a JSON array")
	}

	var probe []json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	return []byte(s), nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
