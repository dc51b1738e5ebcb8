package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// GeminiGenerator generates meal JSON through the Gemini API
type GeminiGenerator struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	limiter *rate.Limiter
}

// NewGeminiGenerator creates a Gemini client for modelName
func NewGeminiGenerator(ctx context.Context, apiKey, modelName string, rps float64, burst int) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.7)
	return &GeminiGenerator{client: client, model: model, limiter: newLimiter(rps, burst)}, nil
}

// Generate sends the system and user prompt as one turn. The system prompt
// is sent as a leading part because the model handle is shared between
// requests.
func (g *GeminiGenerator) Generate(ctx context.Context, req TextRequest) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	parts := make([]genai.Part, 0, 2)
	if req.SystemPrompt != "" {
		parts = append(parts, genai.Text(req.SystemPrompt))
	}
	parts = append(parts, genai.Text(req.UserPrompt))

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}
	return b.String(), nil
}

// Close closes the underlying Gemini client
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
