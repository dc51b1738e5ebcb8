package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// ImageGenerationRequest represents a request to the OpenAI images API
type ImageGenerationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

// ImageGenerationResponse represents the response from the OpenAI images API
type ImageGenerationResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// ImageUploader rehosts generated images; *config.S3Config implements it
type ImageUploader interface {
	PutImage(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// OpenAIImageConfig configures OpenAIImageGenerator
type OpenAIImageConfig struct {
	APIKey     string
	APIURL     string
	Timeout    time.Duration
	MaxRetries int
	Uploader   ImageUploader
}

// OpenAIImageGenerator generates meal photos with DALL-E and rehosts them
type OpenAIImageGenerator struct {
	apiKey     string
	apiURL     string
	maxRetries int
	retryDelay time.Duration
	uploader   ImageUploader
	client     *http.Client
}

// NewOpenAIImageGenerator creates an image generator
func NewOpenAIImageGenerator(cfg OpenAIImageConfig) (*OpenAIImageGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_API_KEY_FILE must be set")
	}
	if cfg.APIURL == "" {
		cfg.APIURL = "https://api.openai.com/v1/images/generations"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 3
	}
	return &OpenAIImageGenerator{
		apiKey:     cfg.APIKey,
		apiURL:     cfg.APIURL,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		uploader:   cfg.Uploader,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// GenerateMealImage generates an image for a meal, retrying with a linear delay
func (s *OpenAIImageGenerator) GenerateMealImage(ctx context.Context, req ImageRequest) (string, error) {
	prompt := buildMealImagePrompt(req)
	log.Printf("[ImageService] Generating image for meal '%s'", req.Subject)

	var lastErr error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		imageURL, err := s.generateImageAttempt(ctx, prompt)
		if err == nil {
			log.Printf("[ImageService] Successfully generated image on attempt %d", attempt)
			return imageURL, nil
		}
		lastErr = err
		log.Printf("[ImageService] Attempt %d/%d failed: %v", attempt, s.maxRetries, err)
		if attempt == s.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * s.retryDelay):
		}
	}
	return "", fmt.Errorf("failed to generate image after %d attempts: %w", s.maxRetries, lastErr)
}

func (s *OpenAIImageGenerator) generateImageAttempt(ctx context.Context, prompt string) (string, error) {
	jsonData, err := json.Marshal(ImageGenerationRequest{
		Model:          "dall-e-3",
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ImageGenerationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("no image data in API response")
	}
	imageURL := result.Data[0].URL

	if s.uploader == nil {
		return imageURL, nil
	}
	hosted, err := s.rehost(ctx, imageURL)
	if err != nil {
		// Return the original URL as fallback
		log.Printf("[ImageService] Failed to upload to S3, returning original URL: %v", err)
		return imageURL, nil
	}
	return hosted, nil
}

// rehost downloads the provider image and uploads it through the uploader
func (s *OpenAIImageGenerator) rehost(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image, status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image data: %w", err)
	}

	key := fmt.Sprintf("meal-images/%s.png", uuid.New().String())
	return s.uploader.PutImage(ctx, key, data, "image/png")
}

func buildMealImagePrompt(req ImageRequest) string {
	var b strings.Builder
	b.WriteString("A professional food photography shot of ")
	b.WriteString(strings.ToLower(req.Subject))
	if req.Description != "" {
		b.WriteString(", ")
		b.WriteString(strings.ToLower(req.Description))
	}
	switch req.MealSlot {
	case types.SlotBreakfast:
		b.WriteString(", appetizing breakfast plate")
	case types.SlotSnack:
		b.WriteString(", small snack portion")
	default:
		b.WriteString(", elegantly presented main dish")
	}
	style := req.Style
	if style == "" {
		style = "natural lighting, shallow depth of field, restaurant quality presentation, appetizing colors"
	}
	b.WriteString(", ")
	b.WriteString(style)

	prompt := b.String()
	if len(prompt) > 900 {
		prompt = prompt[:900]
	}
	return prompt
}

// StaticImages maps each normalized meal slot to a stock photo
type StaticImages struct {
	bySlot   map[types.MealSlot]string
	fallback string
}

// DefaultStaticImageBase is used when no base URL is configured
const DefaultStaticImageBase = "https://static.mealgen.app/meals"

// NewStaticImages builds {base}/{slot}.jpg for every slot
func NewStaticImages(base string) StaticImages {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultStaticImageBase
	}
	s := StaticImages{bySlot: make(map[types.MealSlot]string, len(types.AllMealSlots)), fallback: base + "/meal.jpg"}
	for _, slot := range types.AllMealSlots {
		s.bySlot[slot] = fmt.Sprintf("%s/%s.jpg", base, slot)
	}
	return s
}

// For returns the static image for a slot, accepting plural and alias
// forms. It never returns an empty string.
func (s StaticImages) For(slot types.MealSlot) string {
	if norm, err := types.NormalizeMealSlot(string(slot)); err == nil {
		if url, ok := s.bySlot[norm]; ok {
			return url
		}
	}
	if s.fallback == "" {
		return DefaultStaticImageBase + "/meal.jpg"
	}
	return s.fallback
}

// ImageAttacher guarantees every returned meal carries an image URL
type ImageAttacher struct {
	generator ImageGenerator
	static    StaticImages
	timeout   time.Duration
}

// NewImageAttacher wraps an optional generator with the static fallback map
func NewImageAttacher(generator ImageGenerator, static StaticImages, timeout time.Duration) *ImageAttacher {
	return &ImageAttacher{generator: generator, static: static, timeout: timeout}
}

// Attach fills meal.ImageURL. Existing URLs are kept. With skipGeneration,
// or when the generator is missing, fails or times out, the static image
// for the meal's slot is used.
func (a *ImageAttacher) Attach(ctx context.Context, meal *types.UnifiedMeal, skipGeneration bool) {
	if meal == nil || meal.ImageURL != "" {
		return
	}
	if skipGeneration || a.generator == nil {
		meal.ImageURL = a.static.For(meal.MealSlot)
		return
	}

	genCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	url, err := a.generator.GenerateMealImage(genCtx, ImageRequest{
		Subject:     meal.Name,
		Description: meal.Description,
		MealSlot:    meal.MealSlot,
	})
	if err != nil || strings.TrimSpace(url) == "" {
		log.Printf("[ImageService] Using static %s image for '%s': %v", meal.MealSlot, meal.Name, err)
		meal.ImageURL = a.static.For(meal.MealSlot)
		return
	}
	meal.ImageURL = url
}
