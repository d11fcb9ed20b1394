package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Improver rewrites raw task text into a clear imperative phrasing
// before it is published to chat surfaces. Callers fall back to the
// original text on any error.
type Improver struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewImprover creates a new text improver
func NewImprover(apiKey, model string, logger *zap.Logger) *Improver {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Improver{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}
}

const systemPrompt = "You rewrite short workplace task requests. Fix grammar, " +
	"make the phrasing a clear imperative, keep the original language and every " +
	"factual detail. Reply with the rewritten text only, no quotes, no commentary."

// Improve returns a cleaned-up rendition of text
func (i *Improver) Improve(ctx context.Context, text string) (string, error) {
	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       i.model,
		Temperature: 0.2,
		MaxTokens:   300,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to improve task text: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	improved := strings.TrimSpace(resp.Choices[0].Message.Content)
	if improved == "" {
		return "", fmt.Errorf("empty completion text")
	}

	i.logger.Debug("Task text improved",
		zap.Int("original_len", len(text)),
		zap.Int("improved_len", len(improved)))

	return improved, nil
}
