package service

import (
	"context"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
)

// NewTextGenerator picks the text generator for cfg.AIMode, defaulting to mock
func NewTextGenerator(ctx context.Context, cfg *config.Config) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.AIMode)) {
	case config.AIModeDeepSeek:
		return NewDeepSeekGenerator(DeepSeekConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			APIURL:    cfg.DeepSeekAPIURL,
			Model:     cfg.DeepSeekModel,
			Timeout:   cfg.AITimeout,
			RateLimit: cfg.AIRateLimit,
			Burst:     cfg.AIBurst,
		})
	case config.AIModeGemini:
		return NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AIRateLimit, cfg.AIBurst)
	default:
		return NewMockGenerator(), nil
	}
}

// NewImageGenerator returns the OpenAI image client for IMAGE_MODE=openai and
// nil otherwise; a nil generator means every meal gets its static image
func NewImageGenerator(cfg *config.Config, uploader ImageUploader) (ImageGenerator, error) {
	if strings.ToLower(strings.TrimSpace(cfg.ImageMode)) != config.ImageModeOpenAI {
		return nil, nil
	}
	return NewOpenAIImageGenerator(OpenAIImageConfig{
		APIKey:   cfg.OpenAIAPIKey,
		APIURL:   cfg.OpenAIImagesURL,
		Timeout:  cfg.ImageTimeout,
		Uploader: uploader,
	})
}
