package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/Mengran777/GaiaPath/internal/llm"
	"github.com/Mengran777/GaiaPath/internal/types"
)

const defaultTemperature = 0.7

var _ Service = (*ServiceImpl)(nil)

// Service generates complete route option sets from traveler preferences.
type Service interface {
	GenerateItinerary(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest) ([]types.RouteOption, error)
}

// TripSaver persists a generated trip so it shows up in the user's trip list.
type TripSaver interface {
	SaveGeneratedTrip(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) error
}

// ServiceImpl generates three themed route options in parallel, enriches
// their activities with images, and records the trip.
type ServiceImpl struct {
	logger   *slog.Logger
	aiClient llm.ChatClient
	images   ImageFinder
	trips    TripSaver
	cache    *gocache.Cache
}

// NewServiceImpl creates the generation service.
func NewServiceImpl(aiClient llm.ChatClient, images ImageFinder, trips TripSaver, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		aiClient: aiClient,
		images:   images,
		trips:    trips,
		cache:    gocache.New(10*time.Minute, 20*time.Minute),
	}
}

// GenerateItinerary produces the three themed route options for the request.
// Identical preference payloads within the cache window share one model run.
func (s *ServiceImpl) GenerateItinerary(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest) ([]types.RouteOption, error) {
	ctx, span := otel.Tracer("GenerationService").Start(ctx, "GenerateItinerary", trace.WithAttributes(
		attribute.String("destination", req.Destination),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GenerateItinerary"), slog.String("destination", req.Destination))

	if missing := req.MissingFields(); len(missing) > 0 {
		err := &types.ValidationError{Missing: missing}
		span.SetStatus(codes.Error, "invalid preferences")
		return nil, err
	}

	cacheKey := preferenceCacheKey(req)
	if cached, found := s.cache.Get(cacheKey); found {
		routes := cached.([]types.RouteOption)
		l.InfoContext(ctx, "serving cached route options", slog.Int("count", len(routes)))
		span.SetAttributes(attribute.Bool("cache.hit", true))
		// The cache is keyed on preferences only; the trip record is per
		// caller and still has to be written.
		s.saveTrip(ctx, l, userID, req, routes[0])
		return routes, nil
	}

	routes := make([]types.RouteOption, len(routeThemes))
	g, gctx := errgroup.WithContext(ctx)
	for i, theme := range routeThemes {
		g.Go(func() error {
			route, err := s.generateRoute(gctx, req, theme)
			if err != nil {
				return err
			}
			routes[i] = *route
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "route generation failed")
		return nil, classifyModelError(err)
	}

	s.enrichImages(ctx, req.Destination, routes)

	s.saveTrip(ctx, l, userID, req, routes[0])

	s.cache.Set(cacheKey, routes, gocache.DefaultExpiration)
	l.InfoContext(ctx, "generated route options", slog.Int("count", len(routes)))
	span.SetStatus(codes.Ok, "routes generated")
	return routes, nil
}

// saveTrip records the first route as a trip. The user already has their
// routes; losing the trip record is not worth failing the request over.
func (s *ServiceImpl) saveTrip(ctx context.Context, l *slog.Logger, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) {
	if err := s.trips.SaveGeneratedTrip(ctx, userID, req, route); err != nil {
		l.WarnContext(ctx, "failed to persist generated trip", slog.Any("error", err))
	}
}

// generateRoute runs one themed model call and parses the result.
func (s *ServiceImpl) generateRoute(ctx context.Context, req types.RouteGenerationRequest, theme routeTheme) (*types.RouteOption, error) {
	ctx, span := otel.Tracer("GenerationService").Start(ctx, "generateRoute", trace.WithAttributes(
		attribute.String("route.badge", theme.Badge),
	))
	defer span.End()

	prompt := getRoutePrompt(req, theme)
	span.SetAttributes(attribute.Int("prompt.length", len(prompt)))

	response, err := s.aiClient.GenerateResponse(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI generation failed")
		return nil, fmt.Errorf("failed to generate %q route: %w", theme.Badge, err)
	}

	var txt string
	for _, candidate := range response.Candidates {
		if candidate.Content != nil && len(candidate.Content.Parts) > 0 {
			txt = candidate.Content.Parts[0].Text
			break
		}
	}
	if txt == "" {
		err := &types.StructuralError{Message: fmt.Sprintf("no content for %q route", theme.Badge)}
		span.RecordError(err)
		span.SetStatus(codes.Error, "empty response from AI")
		return nil, err
	}

	route, err := parseRouteResponse(txt, theme)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse route JSON")
		return nil, err
	}
	route.ID = uuid.NewString()
	span.SetAttributes(attribute.Int("itinerary.days", len(route.Itinerary)))
	return route, nil
}

// classifyModelError maps upstream capacity failures onto the overload
// sentinel so the handler can answer 503 instead of 500.
func classifyModelError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "503") {
		return fmt.Errorf("%w: %w", types.ErrModelOverloaded, err)
	}
	return err
}
