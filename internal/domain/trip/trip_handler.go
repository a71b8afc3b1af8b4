package trip

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
	CreateTrip(w http.ResponseWriter, r *http.Request)
	ListTrips(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
	UpdateTrip(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
	AddLocation(w http.ResponseWriter, r *http.Request)
	UpdateLocation(w http.ResponseWriter, r *http.Request)
	DeleteLocation(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tripService Service
	logger      *slog.Logger
}

func NewHandlerImpl(tripService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tripService: tripService,
		logger:      logger,
	}
}

// CreateTrip answers POST /api/trips.
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "CreateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "CreateTrip"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}

	var params types.CreateTripParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	trip, err := h.tripService.CreateTrip(ctx, userID, params)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "failed to create trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// ListTrips answers GET /api/trips.
func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "ListTrips", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "ListTrips"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}

	trips, err := h.tripService.ListTrips(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "failed to list trips", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list trips")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// GetTrip answers GET /api/trips/{id}.
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "GetTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "GetTrip"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}

	trip, err := h.tripService.GetTrip(ctx, userID, tripID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "failed to get trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trip)
}

// UpdateTrip answers PUT /api/trips/{id}.
func (h *HandlerImpl) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "UpdateTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "UpdateTrip"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}

	var params types.UpdateTripParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tripService.UpdateTrip(ctx, userID, tripID, params); err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "failed to update trip", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update trip")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// DeleteTrip answers DELETE /api/trips/{id}.
func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "DeleteTrip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "DeleteTrip"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}

	if err := h.tripService.DeleteTrip(ctx, userID, tripID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
			return
		}
		l.ErrorContext(ctx, "failed to delete trip", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// AddLocation answers POST /api/trips/{id}/locations.
func (h *HandlerImpl) AddLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "AddLocation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}/locations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "AddLocation"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}

	var loc types.TripLocation
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	locID, err := h.tripService.AddLocation(ctx, userID, tripID, &loc)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Trip not found")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "failed to add trip location", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add trip location")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, map[string]string{"id": locID.String()})
}

// UpdateLocation answers PUT /api/trips/{id}/locations/{locationId}.
func (h *HandlerImpl) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "UpdateLocation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}/locations/{locationId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "UpdateLocation"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}
	locationID, ok := parseLocationID(w, r, l)
	if !ok {
		return
	}

	var params types.UpdateLocationParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tripService.UpdateLocation(ctx, userID, tripID, locationID, params); err != nil {
		switch {
		case errors.Is(err, types.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Location not found")
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "failed to update trip location", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to update trip location")
		}
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// DeleteLocation answers DELETE /api/trips/{id}/locations/{locationId}.
func (h *HandlerImpl) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "DeleteLocation", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/trips/{id}/locations/{locationId}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "DeleteLocation"))

	userID, ok := requireUserID(ctx, w, r, l)
	if !ok {
		return
	}
	tripID, ok := parseTripID(w, r, l)
	if !ok {
		return
	}
	locationID, ok := parseLocationID(w, r, l)
	if !ok {
		return
	}

	if err := h.tripService.DeleteLocation(ctx, userID, tripID, locationID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Location not found")
			return
		}
		l.ErrorContext(ctx, "failed to delete trip location", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete trip location")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

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

func parseTripID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	tripID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		l.WarnContext(r.Context(), "invalid trip ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid trip ID")
		return uuid.Nil, false
	}
	return tripID, true
}

func parseLocationID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (uuid.UUID, bool) {
	locationID, err := uuid.Parse(r.PathValue("locationId"))
	if err != nil {
		l.WarnContext(r.Context(), "invalid location ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid location ID")
		return uuid.Nil, false
	}
	return locationID, true
}
