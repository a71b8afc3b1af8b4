package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/Mengran777/GaiaPath/internal/types"
)

type mockChatClient struct {
	GenerateResponseFunc func(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	calls                atomic.Int64
}

func (m *mockChatClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls.Add(1)
	return m.GenerateResponseFunc(ctx, prompt, config)
}

func (m *mockChatClient) Model() string { return "test-model" }

type mockImageFinder struct {
	FindImageFunc func(ctx context.Context, query string) (string, error)
}

func (m *mockImageFinder) FindImage(ctx context.Context, query string) (string, error) {
	if m.FindImageFunc == nil {
		return "https://images.example.com/photo.jpg", nil
	}
	return m.FindImageFunc(ctx, query)
}

type mockTripSaver struct {
	SaveGeneratedTripFunc func(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) error
	saves                 atomic.Int64
}

func (m *mockTripSaver) SaveGeneratedTrip(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) error {
	m.saves.Add(1)
	if m.SaveGeneratedTripFunc == nil {
		return nil
	}
	return m.SaveGeneratedTripFunc(ctx, userID, req, route)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func modelResponse(text string) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}, nil
}

func validRequest() types.RouteGenerationRequest {
	return types.RouteGenerationRequest{
		Destination:     "Rome",
		TravelStartDate: "2026-09-10",
		TravelEndDate:   "2026-09-13",
		UserID:          "user-1",
	}
}

const routeJSON = `{
	"title": "Rome Route",
	"description": "A plan.",
	"highlights": ["Colosseum"],
	"days": 3,
	"itinerary": [
		{"day": 1, "title": "Ancient City", "date": "2026-09-10", "activities": [
			{"title": "Colosseum", "latitude": 41.8902, "longitude": 12.4922}
		]}
	]
}`

func newTestService(ai *mockChatClient, trips *mockTripSaver) *ServiceImpl {
	return NewServiceImpl(ai, &mockImageFinder{}, trips, testLogger())
}

func TestGenerateItinerary(t *testing.T) {
	ai := &mockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return modelResponse("```json\n" + routeJSON + "\n```")
		},
	}
	trips := &mockTripSaver{}
	svc := newTestService(ai, trips)

	routes, err := svc.GenerateItinerary(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err)
	require.Len(t, routes, 3, "one route per theme")
	assert.Equal(t, int64(3), ai.calls.Load())

	badges := []string{routes[0].Badge, routes[1].Badge, routes[2].Badge}
	assert.Equal(t, []string{"Most Popular", "Local Life", "Packed Schedule"}, badges, "theme order is stable")

	for _, route := range routes {
		assert.NotEmpty(t, route.ID)
		require.NotEmpty(t, route.Itinerary)
		assert.Equal(t, "https://images.example.com/photo.jpg", route.Itinerary[0].Activities[0].ImageURL)
	}
	assert.Equal(t, int64(1), trips.saves.Load())
}

func TestGenerateItineraryCacheHit(t *testing.T) {
	ai := &mockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return modelResponse(routeJSON)
		},
	}
	trips := &mockTripSaver{}
	seen := make(map[uuid.UUID]bool)
	trips.SaveGeneratedTripFunc = func(_ context.Context, userID uuid.UUID, _ types.RouteGenerationRequest, _ types.RouteOption) error {
		seen[userID] = true
		return nil
	}
	svc := newTestService(ai, trips)

	firstUser := uuid.New()
	secondUser := uuid.New()

	_, err := svc.GenerateItinerary(context.Background(), firstUser, validRequest())
	require.NoError(t, err)
	_, err = svc.GenerateItinerary(context.Background(), secondUser, validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(3), ai.calls.Load(), "the second request is served from cache")
	assert.Equal(t, int64(2), trips.saves.Load(), "a cached result still records a trip for the caller")
	assert.True(t, seen[firstUser])
	assert.True(t, seen[secondUser])
}

func TestGenerateItineraryMissingFields(t *testing.T) {
	svc := newTestService(&mockChatClient{}, &mockTripSaver{})

	_, err := svc.GenerateItinerary(context.Background(), uuid.New(), types.RouteGenerationRequest{Destination: "Rome"})
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"travelStartDate", "travelEndDate"}, vErr.Missing)
}

func TestGenerateItineraryModelOverloaded(t *testing.T) {
	ai := &mockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return nil, errors.New("rpc error: the model is overloaded")
		},
	}
	svc := newTestService(ai, &mockTripSaver{})

	_, err := svc.GenerateItinerary(context.Background(), uuid.New(), validRequest())
	require.ErrorIs(t, err, types.ErrModelOverloaded)
}

func TestGenerateItineraryUnparsableResponse(t *testing.T) {
	ai := &mockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return modelResponse("I am unable to plan this trip.")
		},
	}
	svc := newTestService(ai, &mockTripSaver{})

	_, err := svc.GenerateItinerary(context.Background(), uuid.New(), validRequest())
	var sErr *types.StructuralError
	require.ErrorAs(t, err, &sErr)
}

func TestGenerateItineraryTripSaveFailureIsNonFatal(t *testing.T) {
	ai := &mockChatClient{
		GenerateResponseFunc: func(_ context.Context, _ string, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return modelResponse(routeJSON)
		},
	}
	trips := &mockTripSaver{
		SaveGeneratedTripFunc: func(context.Context, uuid.UUID, types.RouteGenerationRequest, types.RouteOption) error {
			return fmt.Errorf("database unavailable")
		},
	}
	svc := newTestService(ai, trips)

	routes, err := svc.GenerateItinerary(context.Background(), uuid.New(), validRequest())
	require.NoError(t, err, "losing the trip record does not fail the request")
	assert.Len(t, routes, 3)
}

func TestClassifyModelError(t *testing.T) {
	assert.ErrorIs(t, classifyModelError(errors.New("status 503 from upstream")), types.ErrModelOverloaded)
	assert.ErrorIs(t, classifyModelError(errors.New("RESOURCE_EXHAUSTED: quota")), types.ErrModelOverloaded)

	plain := errors.New("bad prompt")
	assert.NotErrorIs(t, classifyModelError(plain), types.ErrModelOverloaded)
}
