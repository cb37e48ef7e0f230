package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAIClient wraps langchaingo's googleai model behind the Client
// interface. It trades the structured-output schema of the native
// client for the convenience of the langchaingo abstraction; plan
// repair downstream handles the looser output.
type GoogleAIClient struct {
	model *googleai.GoogleAI
}

func NewGoogleAIClient(ctx context.Context, apiKey, model string) (*GoogleAIClient, error) {
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("llm: init googleai: %w", err)
	}
	return &GoogleAIClient{model: m}, nil
}

func (c *GoogleAIClient) Chat(ctx context.Context, system, user string) (string, error) {
	prompt := user
	if system != "" {
		prompt = system + "\n\n" + user
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(4096),
	)
	if err != nil {
		return "", fmt.Errorf("llm: googleai generate: %w", err)
	}
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
