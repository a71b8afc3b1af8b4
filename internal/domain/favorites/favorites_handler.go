package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/api"
	"github.com/Mengran777/GaiaPath/internal/domain/auth"
	"github.com/Mengran777/GaiaPath/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListFavorites(w http.ResponseWriter, r *http.Request)
	ApplyFavoriteAction(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	favoritesService Service
	logger           *slog.Logger
}

func NewHandlerImpl(favoritesService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		favoritesService: favoritesService,
		logger:           logger,
	}
}

type listResponse struct {
	Favorites []types.FavoriteRoute `json:"favorites"`
}

type actionResponse struct {
	Success bool `json:"success"`
}

// ListFavorites answers GET /api/favorites.
func (h *HandlerImpl) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "ListFavorites", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/favorites"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "ListFavorites"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}

	favorites, err := h.favoritesService.ListFavorites(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "failed to list favorites", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list favorites")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, listResponse{Favorites: favorites})
}

// ApplyFavoriteAction answers POST /api/favorites.
func (h *HandlerImpl) ApplyFavoriteAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "ApplyFavoriteAction", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/favorites"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "ApplyFavoriteAction"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}

	var req types.FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.favoritesService.ApplyFavoriteAction(ctx, userID, req); err != nil {
		var vErr *types.ValidationError
		switch {
		case errors.As(err, &vErr), errors.Is(err, types.ErrBadRequest):
			l.WarnContext(ctx, "invalid favorite request", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "failed to apply favorite action", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update favorites")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, actionResponse{Success: true})
}

// requireUserID pulls the authenticated user id out of the request context.
func requireUserID(ctx context.Context, w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := auth.GetUserIDFromContext(ctx)
	if !ok || userIDStr == "" {
		l.WarnContext(ctx, "user ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.ErrorContext(ctx, "invalid user ID format", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID format")
		return uuid.Nil, false
	}
	return userID, true
}
