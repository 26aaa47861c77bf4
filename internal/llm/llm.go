package llm

import (
	"context"
	"strings"

	"chefmate/internal/config"
)

// TokenUsage is the token accounting reported by a model call.
type TokenUsage struct {
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// NewFromConfig returns the configured generator: Gemini when GEMINI_API_KEY
// is set, otherwise Groq when GROQ_API_KEY is set, otherwise nil.
func NewFromConfig(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch {
	case cfg.GeminiAPIKey != "":
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	case cfg.GroqAPIKey != "":
		return NewGroqClient(cfg), nil
	}
	return nil, nil
}

// CleanJSON strips the markdown code fence models like to wrap JSON in.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
