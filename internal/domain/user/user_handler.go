package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/api"
	"github.com/Mengran777/GaiaPath/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetUser(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandlerImpl(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		repo:   repo,
		logger: logger,
	}
}

// GetUser answers GET /api/user/{id} with the public projection.
func (h *HandlerImpl) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "GetUser", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/user/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GetUser"))

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.repo.GetPublicUser(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "user not found")
			return
		}
		l.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get user")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user)
}
