package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"secure-rag/internal/config"
)

// Client generates answers with a chat model.
type Client struct {
	model llms.Model
}

// NewClient builds the chat model for the configured provider
func NewClient(cfg *config.LLMConfig) (*Client, error) {
	log.Debug().Str("provider", cfg.Provider).Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("Creating chat client")

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case "openai", "":
		model, err = openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}
	return NewClientWithModel(model), nil
}

func NewClientWithModel(model llms.Model) *Client {
	return &Client{model: model}
}

// Generate sends one system and one user message and returns the reply.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	res, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return res.Choices[0].Content, nil
}
