package trip

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/types"
)

const travelDateLayout = "2006-01-02"

// parseTravelDates validates a YYYY-MM-DD date range.
func parseTravelDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(travelDateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid startDate %q", types.ErrBadRequest, start)
	}
	endDate, err := time.Parse(travelDateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid endDate %q", types.ErrBadRequest, end)
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate precedes startDate", types.ErrBadRequest)
	}
	return startDate, endDate, nil
}

var _ Service = (*ServiceImpl)(nil)

// Service manages persisted trips.
type Service interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, params types.CreateTripParams) (*types.Trip, error)
	SaveGeneratedTrip(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) error
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) error
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	AddLocation(ctx context.Context, userID, tripID uuid.UUID, loc *types.TripLocation) (uuid.UUID, error)
	UpdateLocation(ctx context.Context, userID, tripID, locationID uuid.UUID, params types.UpdateLocationParams) error
	DeleteLocation(ctx context.Context, userID, tripID, locationID uuid.UUID) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// CreateTrip records an empty trip from a name and date range. Locations are
// added afterwards through the location routes.
func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, params types.CreateTripParams) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("trip.name", params.Name),
	))
	defer span.End()

	var missing []string
	if params.Name == "" {
		missing = append(missing, "name")
	}
	if params.StartDate == "" {
		missing = append(missing, "startDate")
	}
	if params.EndDate == "" {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", types.ErrBadRequest, strings.Join(missing, ", "))
	}

	startDate, endDate, err := parseTravelDates(params.StartDate, params.EndDate)
	if err != nil {
		return nil, err
	}

	trip := &types.Trip{
		UserID:    userID,
		Name:      params.Name,
		StartDate: startDate,
		EndDate:   endDate,
	}
	tripID, err := s.repo.CreateTrip(ctx, trip)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}
	trip.ID = tripID

	s.logger.InfoContext(ctx, "trip created",
		slog.String("tripID", tripID.String()), slog.String("name", trip.Name))
	return trip, nil
}

// SaveGeneratedTrip records a generated route as a trip. Each activity
// becomes a location whose order encodes day and position as
// day*1000+index, so the itinerary can be rebuilt without a join table.
func (s *ServiceImpl) SaveGeneratedTrip(ctx context.Context, userID uuid.UUID, req types.RouteGenerationRequest, route types.RouteOption) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "SaveGeneratedTrip", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("destination", req.Destination),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SaveGeneratedTrip"), slog.String("destination", req.Destination))

	startDate, endDate, err := parseTravelDates(req.TravelStartDate, req.TravelEndDate)
	if err != nil {
		return err
	}

	trip := &types.Trip{
		UserID:    userID,
		Name:      fmt.Sprintf("%s: %s", req.Destination, route.Title),
		StartDate: startDate,
		EndDate:   endDate,
	}
	for _, day := range route.Itinerary {
		for i, act := range day.Activities {
			trip.Locations = append(trip.Locations, types.TripLocation{
				Name:        act.Title,
				Description: act.Description,
				Latitude:    act.Latitude,
				Longitude:   act.Longitude,
				Order:       day.Day*1000 + i,
				Time:        act.Time,
				Rating:      act.Rating,
				Price:       act.Price,
				ImageURL:    act.ImageURL,
			})
		}
	}

	tripID, err := s.repo.CreateTrip(ctx, trip)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return err
	}

	l.InfoContext(ctx, "generated trip saved",
		slog.String("tripID", tripID.String()), slog.Int("locations", len(trip.Locations)))
	return nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return trip, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ListTrips", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	trips, err := s.repo.ListTrips(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return trips, nil
}

// UpdateTrip applies a partial update after checking it carries any change.
func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if params.Name == nil && params.StartDate == nil && params.EndDate == nil {
		return fmt.Errorf("%w: no fields to update", types.ErrBadRequest)
	}
	if params.Name != nil && *params.Name == "" {
		return fmt.Errorf("%w: trip name cannot be empty", types.ErrBadRequest)
	}

	if err := s.repo.UpdateTrip(ctx, userID, tripID, params); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// AddLocation appends a manually entered stop to a trip.
func (s *ServiceImpl) AddLocation(ctx context.Context, userID, tripID uuid.UUID, loc *types.TripLocation) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "AddLocation", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if loc.Name == "" {
		return uuid.Nil, fmt.Errorf("%w: location name is required", types.ErrBadRequest)
	}

	locID, err := s.repo.AddLocation(ctx, userID, tripID, loc)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, err
	}

	s.logger.InfoContext(ctx, "trip location added",
		slog.String("tripID", tripID.String()), slog.String("locationID", locID.String()))
	return locID, nil
}

// UpdateLocation applies a partial update after checking it carries any change.
func (s *ServiceImpl) UpdateLocation(ctx context.Context, userID, tripID, locationID uuid.UUID, params types.UpdateLocationParams) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateLocation", trace.WithAttributes(
		attribute.String("location.id", locationID.String()),
	))
	defer span.End()

	if params == (types.UpdateLocationParams{}) {
		return fmt.Errorf("%w: no fields to update", types.ErrBadRequest)
	}
	if params.Name != nil && *params.Name == "" {
		return fmt.Errorf("%w: location name cannot be empty", types.ErrBadRequest)
	}

	if err := s.repo.UpdateLocation(ctx, userID, tripID, locationID, params); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *ServiceImpl) DeleteLocation(ctx context.Context, userID, tripID, locationID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteLocation", trace.WithAttributes(
		attribute.String("location.id", locationID.String()),
	))
	defer span.End()

	if err := s.repo.DeleteLocation(ctx, userID, tripID, locationID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("trip.id", tripID.String()),
	))
	defer span.End()

	if err := s.repo.DeleteTrip(ctx, userID, tripID); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}
