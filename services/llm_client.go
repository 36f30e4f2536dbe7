package services

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// LLMClient generates a completion for a single prompt.
type LLMClient interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}

var ErrLLMNotConfigured = errors.New("GEMINI_API_KEY is not configured")

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient returns a client that fails every call with
// ErrLLMNotConfigured when apiKey is empty, so the server still starts.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return &GeminiClient{model: model}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	if g.client == nil {
		return "", ErrLLMNotConfigured
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
