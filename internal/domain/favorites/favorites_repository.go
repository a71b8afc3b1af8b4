package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

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
}

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error)
	AddFavorite(ctx context.Context, userID uuid.UUID, routeID string, routeData json.RawMessage) error
	RemoveFavorite(ctx context.Context, userID uuid.UUID, routeID string) error
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

// ListFavorites returns the user's favorites, newest first.
func (r *RepositoryImpl) ListFavorites(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error) {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "ListFavorites", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT id, user_id, route_id, route_data, created_at
        FROM favorite_routes
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]types.FavoriteRoute, 0)
	for rows.Next() {
		var fav types.FavoriteRoute
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.RouteID, &fav.RouteData, &fav.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read favorites: %w", err)
	}

	span.SetAttributes(attribute.Int("favorites.count", len(favorites)))
	return favorites, nil
}

// AddFavorite stores a favorite. Adding an already-stored route is a no-op,
// so repeated toggles from a laggy client cannot duplicate rows.
func (r *RepositoryImpl) AddFavorite(ctx context.Context, userID uuid.UUID, routeID string, routeData json.RawMessage) error {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "AddFavorite", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("route_id", routeID),
	))
	defer span.End()

	if len(routeData) == 0 {
		routeData = json.RawMessage(`{}`)
	}

	_, err := r.pgpool.Exec(ctx, `
        INSERT INTO favorite_routes (id, user_id, route_id, route_data)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, route_id) DO NOTHING`,
		uuid.New(), userID, routeID, routeData)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite. Removing a route that is not stored is a
// no-op.
func (r *RepositoryImpl) RemoveFavorite(ctx context.Context, userID uuid.UUID, routeID string) error {
	ctx, span := otel.Tracer("FavoritesRepository").Start(ctx, "RemoveFavorite", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("route_id", routeID),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM favorite_routes
        WHERE user_id = $1 AND route_id = $2`, userID, routeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	span.SetAttributes(attribute.Int64("rows.affected", tag.RowsAffected()))
	return nil
}
