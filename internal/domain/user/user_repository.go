package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// PostgresPool is the pool surface the repository uses. pgxpool.Pool
// satisfies it in production, pgxmock in tests.
type PostgresPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetPublicUser(ctx context.Context, userID uuid.UUID) (*types.PublicUser, error)
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

// GetPublicUser loads the display projection of one user.
func (r *RepositoryImpl) GetPublicUser(ctx context.Context, userID uuid.UUID) (*types.PublicUser, error) {
	ctx, span := otel.Tracer("UserRepository").Start(ctx, "GetPublicUser", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	var user types.PublicUser
	err := r.pgpool.QueryRow(ctx, `
        SELECT id, username, email
        FROM users
        WHERE id = $1`, userID).
		Scan(&user.ID, &user.Username, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
