package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// PostgresPool is the pool surface the repository uses. pgxpool.Pool
// satisfies it in production, pgxmock in tests.
type PostgresPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateTrip(ctx context.Context, trip *types.Trip) (uuid.UUID, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) error
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	AddLocation(ctx context.Context, userID, tripID uuid.UUID, loc *types.TripLocation) (uuid.UUID, error)
	UpdateLocation(ctx context.Context, userID, tripID, locationID uuid.UUID, params types.UpdateLocationParams) error
	DeleteLocation(ctx context.Context, userID, tripID, locationID uuid.UUID) error
}

type RepositoryImpl struct {
	pgpool PostgresPool
	logger *slog.Logger
}

func NewRepository(pgpool PostgresPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		pgpool: pgpool,
		logger: logger,
	}
}

// CreateTrip inserts the trip and its locations in one transaction.
func (r *RepositoryImpl) CreateTrip(ctx context.Context, trip *types.Trip) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user_id", trip.UserID.String()),
		attribute.String("trip.name", trip.Name),
		attribute.Int("locations.count", len(trip.Locations)),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tripID := trip.ID
	if tripID == uuid.Nil {
		tripID = uuid.New()
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO trips (id, user_id, name, start_date, end_date)
        VALUES ($1, $2, $3, $4, $5)`,
		tripID, trip.UserID, trip.Name, trip.StartDate, trip.EndDate)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "trip insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert trip: %w", err)
	}

	for _, loc := range trip.Locations {
		locID := loc.ID
		if locID == uuid.Nil {
			locID = uuid.New()
		}
		_, err = tx.Exec(ctx, `
            INSERT INTO trip_locations (id, trip_id, name, description, latitude, longitude, "order", time, rating, price, image_url)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			locID, tripID, loc.Name, loc.Description, loc.Latitude, loc.Longitude,
			loc.Order, loc.Time, loc.Rating, loc.Price, loc.ImageURL)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "location insert failed")
			return uuid.Nil, fmt.Errorf("failed to insert trip location: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to commit trip: %w", err)
	}
	return tripID, nil
}

// GetTrip loads one trip with its locations in stored order. Ownership is
// enforced in the query, so another user's trip reads as not found.
func (r *RepositoryImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	var trip types.Trip
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, user_id, name, start_date, end_date, created_at, updated_at
        FROM trips
        WHERE id = $1 AND user_id = $2`, tripID, userID).
		Scan(&trip.ID, &trip.UserID, &trip.Name, &trip.StartDate, &trip.EndDate, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "trip query failed")
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `
        SELECT id, trip_id, name, description, latitude, longitude, "order", time, rating, price, image_url
        FROM trip_locations
        WHERE trip_id = $1
        ORDER BY "order" ASC`, tripID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get trip locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var loc types.TripLocation
		if err := rows.Scan(&loc.ID, &loc.TripID, &loc.Name, &loc.Description, &loc.Latitude,
			&loc.Longitude, &loc.Order, &loc.Time, &loc.Rating, &loc.Price, &loc.ImageURL); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan trip location: %w", err)
		}
		trip.Locations = append(trip.Locations, loc)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read trip locations: %w", err)
	}
	return &trip, nil
}

// ListTrips returns the user's trips, newest first, without locations.
func (r *RepositoryImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ListTrips", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT id, user_id, name, start_date, end_date, created_at, updated_at
        FROM trips
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := make([]types.Trip, 0)
	for rows.Next() {
		var trip types.Trip
		if err := rows.Scan(&trip.ID, &trip.UserID, &trip.Name, &trip.StartDate, &trip.EndDate,
			&trip.CreatedAt, &trip.UpdatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read trips: %w", err)
	}

	span.SetAttributes(attribute.Int("trips.count", len(trips)))
	return trips, nil
}

// UpdateTrip applies the non-nil fields. Updating a trip the user does not
// own reads as not found.
func (r *RepositoryImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params types.UpdateTripParams) error {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "UpdateTrip", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	update := psql.Update("trips").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": tripID, "user_id": userID})

	if params.Name != nil {
		update = update.Set("name", *params.Name)
	}
	if params.StartDate != nil {
		update = update.Set("start_date", *params.StartDate)
	}
	if params.EndDate != nil {
		update = update.Set("end_date", *params.EndDate)
	}

	query, args, err := update.ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// AddLocation appends a location to an owned trip. The ownership check and
// insert run as one statement, so an unowned trip reads as not found.
func (r *RepositoryImpl) AddLocation(ctx context.Context, userID, tripID uuid.UUID, loc *types.TripLocation) (uuid.UUID, error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "AddLocation", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	locID := loc.ID
	if locID == uuid.Nil {
		locID = uuid.New()
	}

	tag, err := r.pgpool.Exec(ctx, `
        INSERT INTO trip_locations (id, trip_id, name, description, latitude, longitude, "order", time, rating, price, image_url)
        SELECT $1, t.id, $3, $4, $5, $6, $7, $8, $9, $10, $11
        FROM trips t
        WHERE t.id = $2 AND t.user_id = $12`,
		locID, tripID, loc.Name, loc.Description, loc.Latitude, loc.Longitude,
		loc.Order, loc.Time, loc.Rating, loc.Price, loc.ImageURL, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location insert failed")
		return uuid.Nil, fmt.Errorf("failed to insert trip location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return uuid.Nil, types.ErrNotFound
	}
	return locID, nil
}

// UpdateLocation applies the non-nil fields to a location of an owned trip.
func (r *RepositoryImpl) UpdateLocation(ctx context.Context, userID, tripID, locationID uuid.UUID, params types.UpdateLocationParams) error {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "UpdateLocation", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
		attribute.String("location_id", locationID.String()),
	))
	defer span.End()

	update := psql.Update("trip_locations").
		Where(sq.Eq{"id": locationID, "trip_id": tripID}).
		Where(sq.Expr("trip_id IN (SELECT id FROM trips WHERE id = ? AND user_id = ?)", tripID, userID))

	if params.Name != nil {
		update = update.Set("name", *params.Name)
	}
	if params.Description != nil {
		update = update.Set("description", *params.Description)
	}
	if params.Latitude != nil {
		update = update.Set("latitude", *params.Latitude)
	}
	if params.Longitude != nil {
		update = update.Set("longitude", *params.Longitude)
	}
	if params.Order != nil {
		update = update.Set(`"order"`, *params.Order)
	}
	if params.Time != nil {
		update = update.Set("time", *params.Time)
	}
	if params.Rating != nil {
		update = update.Set("rating", *params.Rating)
	}
	if params.Price != nil {
		update = update.Set("price", *params.Price)
	}
	if params.ImageURL != nil {
		update = update.Set("image_url", *params.ImageURL)
	}

	query, args, err := update.ToSql()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build location update query: %w", err)
	}

	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location update failed")
		return fmt.Errorf("failed to update trip location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteLocation removes one location from an owned trip.
func (r *RepositoryImpl) DeleteLocation(ctx context.Context, userID, tripID, locationID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "DeleteLocation", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
		attribute.String("location_id", locationID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM trip_locations
        WHERE id = $1 AND trip_id = $2
          AND trip_id IN (SELECT id FROM trips WHERE id = $2 AND user_id = $3)`,
		locationID, tripID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "location delete failed")
		return fmt.Errorf("failed to delete trip location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteTrip removes a trip and its locations.
func (r *RepositoryImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "DeleteTrip", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM trips
        WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
