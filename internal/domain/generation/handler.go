package generation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/api"
	"github.com/Mengran777/GaiaPath/internal/domain/auth"
	"github.com/Mengran777/GaiaPath/internal/types"
	"github.com/Mengran777/GaiaPath/pkg/observability"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GenerateItinerary(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	generationService Service
	logger            *slog.Logger
}

func NewHandlerImpl(generationService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		generationService: generationService,
		logger:            logger,
	}
}

// GenerateItinerary answers POST /api/generate-itinerary with a JSON array of
// route options.
func (h *HandlerImpl) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/generate-itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GenerateItinerary"))

	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.WarnContext(ctx, "user ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(ctx, "invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return
	}
	span.SetAttributes(semconv.EnduserIDKey.String(userID.String()))

	var req types.RouteGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = userIDStr

	start := time.Now()
	routes, err := h.generationService.GenerateItinerary(ctx, userID, req)
	observability.ObserveGeneration(time.Since(start))
	if err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr):
			l.WarnContext(ctx, "invalid preferences", slog.Any("missing", vErr.Missing))
			api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, types.ErrModelOverloaded):
			l.WarnContext(ctx, "model overloaded", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusServiceUnavailable, "the model is overloaded, please try again shortly")
		default:
			l.ErrorContext(ctx, "failed to generate itinerary", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		}
		return
	}

	l.InfoContext(ctx, "itinerary generated", slog.Int("routes", len(routes)))
	api.WriteJSONResponse(w, r, http.StatusOK, routes)
}
