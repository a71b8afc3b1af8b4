package auth

import (
	"context"
	"errors"
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
	CreateUser(ctx context.Context, username, email, hashedPassword string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
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

const userColumns = `id, username, email, hashed_password, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.HashedPassword,
		&user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts a new account. A duplicate email or username surfaces as
// types.ErrConflict.
func (r *RepositoryImpl) CreateUser(ctx context.Context, username, email, hashedPassword string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "CreateUser", trace.WithAttributes(
		attribute.String("user.email", email),
	))
	defer span.End()

	row := r.pgpool.QueryRow(ctx, `
        INSERT INTO users (id, username, email, hashed_password)
        VALUES ($1, $2, $3, $4)
        RETURNING `+userColumns,
		uuid.New(), username, email, hashedPassword)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: account already exists", types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "GetUserByEmail")
	defer span.End()

	return scanUser(r.pgpool.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE email = $1`, email))
}

func (r *RepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "GetUserByUsername")
	defer span.End()

	return scanUser(r.pgpool.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE username = $1`, username))
}

func (r *RepositoryImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "GetUserByID", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	return scanUser(r.pgpool.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE id = $1`, userID))
}

func (r *RepositoryImpl) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "UpdateLastLogin", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	_, err := r.pgpool.Exec(ctx, `
        UPDATE users
        SET last_login_at = NOW(), updated_at = NOW()
        WHERE id = $1`, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
