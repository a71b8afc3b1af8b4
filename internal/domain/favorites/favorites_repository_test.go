package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock, testLogger()), mock
}

func TestListFavorites(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	newer := time.Now()
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, user_id, route_id, route_data, created_at`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "route_id", "route_data", "created_at"}).
			AddRow(uuid.New(), userID, "route-2", json.RawMessage(`{"title":"Lisbon"}`), newer).
			AddRow(uuid.New(), userID, "route-1", json.RawMessage(`{"title":"Rome"}`), older))

	favorites, err := repo.ListFavorites(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 2)
	assert.Equal(t, "route-2", favorites[0].RouteID, "newest first")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFavoritesEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT id, user_id, route_id, route_data, created_at`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "route_id", "route_data", "created_at"}))

	favorites, err := repo.ListFavorites(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, favorites)
	assert.Empty(t, favorites)
}

func TestAddFavorite(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectExec(`INSERT INTO favorite_routes`).
		WithArgs(pgxmock.AnyArg(), userID, "route-1", json.RawMessage(`{"title":"Rome"}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AddFavorite(context.Background(), userID, "route-1", json.RawMessage(`{"title":"Rome"}`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFavoriteAlreadyStored(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	// ON CONFLICT DO NOTHING reports zero affected rows; that is still success.
	mock.ExpectExec(`INSERT INTO favorite_routes`).
		WithArgs(pgxmock.AnyArg(), userID, "route-1", json.RawMessage(`{}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.AddFavorite(context.Background(), userID, "route-1", nil)
	require.NoError(t, err)
}

func TestRemoveFavorite(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM favorite_routes`).
		WithArgs(userID, "route-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.RemoveFavorite(context.Background(), userID, "route-1"))
}

func TestRemoveFavoriteNotStored(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectExec(`DELETE FROM favorite_routes`).
		WithArgs(userID, "route-gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.RemoveFavorite(context.Background(), userID, "route-gone"))
}

func TestListFavoritesQueryError(t *testing.T) {
	repo, mock := newMockRepo(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT id, user_id, route_id, route_data, created_at`).
		WithArgs(userID).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.ListFavorites(context.Background(), userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list favorites")
}
