package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

type recordingUploader struct {
	keys []string
	err  error
}

func (u *recordingUploader) PutImage(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.keys = append(u.keys, key)
	return "https://bucket.s3.amazonaws.com/" + key, nil
}

func TestAttach_FallbackImageForEverySlot(t *testing.T) {
	gen := new(mockImageGenerator)
	gen.On("GenerateMealImage", mock.Anything, mock.Anything).Return("", errors.New("provider down"))
	attacher := NewImageAttacher(gen, NewStaticImages("https://cdn.example.com/img/"), time.Second)

	for _, slot := range []types.MealSlot{"breakfast", "lunch", "dinner", "snack", "snacks"} {
		meal := &types.UnifiedMeal{Name: "Test", MealSlot: slot}
		attacher.Attach(context.Background(), meal, false)
		assert.NotEmpty(t, meal.ImageURL, slot)
		assert.True(t, strings.HasPrefix(meal.ImageURL, "https://cdn.example.com/img/"), meal.ImageURL)
	}

	meal := &types.UnifiedMeal{MealSlot: "snacks"}
	attacher.Attach(context.Background(), meal, false)
	assert.Equal(t, "https://cdn.example.com/img/snack.jpg", meal.ImageURL)
}

func TestAttach_UnknownSlotStillGetsImage(t *testing.T) {
	attacher := NewImageAttacher(nil, StaticImages{}, 0)
	meal := &types.UnifiedMeal{MealSlot: "midnight"}
	attacher.Attach(context.Background(), meal, false)
	assert.NotEmpty(t, meal.ImageURL)
}

func TestAttach_UsesGeneratedImage(t *testing.T) {
	gen := new(mockImageGenerator)
	gen.On("GenerateMealImage", mock.Anything, mock.MatchedBy(func(r ImageRequest) bool {
		return r.Subject == "Salmon Bowl" && r.MealSlot == types.SlotDinner
	})).Return("https://img.example.com/1.png", nil).Once()

	attacher := NewImageAttacher(gen, NewStaticImages(""), time.Second)
	meal := &types.UnifiedMeal{Name: "Salmon Bowl", MealSlot: types.SlotDinner}
	attacher.Attach(context.Background(), meal, false)
	assert.Equal(t, "https://img.example.com/1.png", meal.ImageURL)
	gen.AssertExpectations(t)
}

func TestAttach_SkipGenerationAndExistingURL(t *testing.T) {
	gen := new(mockImageGenerator)
	attacher := NewImageAttacher(gen, NewStaticImages(""), time.Second)

	premade := &types.UnifiedMeal{Name: "Bulk", MealSlot: types.SlotLunch}
	attacher.Attach(context.Background(), premade, true)
	assert.Equal(t, DefaultStaticImageBase+"/lunch.jpg", premade.ImageURL)

	cached := &types.UnifiedMeal{Name: "Cached", MealSlot: types.SlotLunch, ImageURL: "https://keep.me/x.png"}
	attacher.Attach(context.Background(), cached, false)
	assert.Equal(t, "https://keep.me/x.png", cached.ImageURL)

	gen.AssertNotCalled(t, "GenerateMealImage", mock.Anything, mock.Anything)
}

func TestAttach_TimeoutFallsBack(t *testing.T) {
	gen := new(mockImageGenerator)
	gen.On("GenerateMealImage", mock.Anything, mock.Anything).Return("", context.DeadlineExceeded).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			<-ctx.Done()
		})
	attacher := NewImageAttacher(gen, NewStaticImages(""), 20*time.Millisecond)
	meal := &types.UnifiedMeal{Name: "Slow", MealSlot: types.SlotBreakfast}
	attacher.Attach(context.Background(), meal, false)
	assert.Equal(t, DefaultStaticImageBase+"/breakfast.jpg", meal.ImageURL)
}

func TestOpenAIImageGenerator_RehostsToUploader(t *testing.T) {
	var hits atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate":
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"` + server.URL + `/image.png"}]}`))
		case "/image.png":
			_, _ = w.Write([]byte("PNG"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	uploader := &recordingUploader{}
	gen, err := NewOpenAIImageGenerator(OpenAIImageConfig{APIKey: "k", APIURL: server.URL + "/generate", Uploader: uploader})
	require.NoError(t, err)
	gen.retryDelay = time.Millisecond

	url, err := gen.GenerateMealImage(context.Background(), ImageRequest{Subject: "Egg Bites", MealSlot: types.SlotBreakfast})
	require.NoError(t, err)
	require.Len(t, uploader.keys, 1)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "meal-images/"))
	assert.Equal(t, "https://bucket.s3.amazonaws.com/"+uploader.keys[0], url)
	assert.Equal(t, int32(2), hits.Load())
}

func TestOpenAIImageGenerator_UploadFailureReturnsProviderURL(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/generate" {
			_, _ = w.Write([]byte(`{"data":[{"url":"` + server.URL + `/image.png"}]}`))
			return
		}
		_, _ = w.Write([]byte("PNG"))
	}))
	defer server.Close()

	gen, err := NewOpenAIImageGenerator(OpenAIImageConfig{
		APIKey:   "k",
		APIURL:   server.URL + "/generate",
		Uploader: &recordingUploader{err: errors.New("s3 down")},
	})
	require.NoError(t, err)

	url, err := gen.GenerateMealImage(context.Background(), ImageRequest{Subject: "Wrap"})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/image.png", url)
}

func TestBuildMealImagePrompt(t *testing.T) {
	p := buildMealImagePrompt(ImageRequest{Subject: "Egg Bites", Description: "Fluffy", MealSlot: types.SlotBreakfast})
	assert.Contains(t, p, "egg bites, fluffy")
	assert.Contains(t, p, "breakfast")
	assert.LessOrEqual(t, len(p), 900)
}
