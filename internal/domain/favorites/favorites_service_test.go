package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mengran777/GaiaPath/internal/types"
)

type mockRepository struct {
	ListFavoritesFunc  func(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error)
	AddFavoriteFunc    func(ctx context.Context, userID uuid.UUID, routeID string, routeData json.RawMessage) error
	RemoveFavoriteFunc func(ctx context.Context, userID uuid.UUID, routeID string) error
}

func (m *mockRepository) ListFavorites(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error) {
	return m.ListFavoritesFunc(ctx, userID)
}

func (m *mockRepository) AddFavorite(ctx context.Context, userID uuid.UUID, routeID string, routeData json.RawMessage) error {
	return m.AddFavoriteFunc(ctx, userID, routeID, routeData)
}

func (m *mockRepository) RemoveFavorite(ctx context.Context, userID uuid.UUID, routeID string) error {
	return m.RemoveFavoriteFunc(ctx, userID, routeID)
}

func TestApplyFavoriteActionAdd(t *testing.T) {
	var gotRouteID string
	repo := &mockRepository{
		AddFavoriteFunc: func(_ context.Context, _ uuid.UUID, routeID string, routeData json.RawMessage) error {
			gotRouteID = routeID
			assert.JSONEq(t, `{"title":"Rome"}`, string(routeData))
			return nil
		},
	}
	svc := NewServiceImpl(repo, testLogger())

	err := svc.ApplyFavoriteAction(context.Background(), uuid.New(), types.FavoriteRequest{
		RouteID:   "route-1",
		RouteData: json.RawMessage(`{"title":"Rome"}`),
		Action:    types.FavoriteActionAdd,
	})
	require.NoError(t, err)
	assert.Equal(t, "route-1", gotRouteID)
}

func TestApplyFavoriteActionRemove(t *testing.T) {
	removed := false
	repo := &mockRepository{
		RemoveFavoriteFunc: func(_ context.Context, _ uuid.UUID, routeID string) error {
			removed = true
			assert.Equal(t, "route-1", routeID)
			return nil
		},
	}
	svc := NewServiceImpl(repo, testLogger())

	err := svc.ApplyFavoriteAction(context.Background(), uuid.New(), types.FavoriteRequest{
		RouteID: "route-1",
		Action:  types.FavoriteActionRemove,
	})
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestApplyFavoriteActionValidation(t *testing.T) {
	svc := NewServiceImpl(&mockRepository{}, testLogger())

	t.Run("missing route id", func(t *testing.T) {
		err := svc.ApplyFavoriteAction(context.Background(), uuid.New(), types.FavoriteRequest{
			Action: types.FavoriteActionAdd,
		})
		var vErr *types.ValidationError
		require.ErrorAs(t, err, &vErr)
	})

	t.Run("unknown action", func(t *testing.T) {
		err := svc.ApplyFavoriteAction(context.Background(), uuid.New(), types.FavoriteRequest{
			RouteID: "route-1",
			Action:  "star",
		})
		require.ErrorIs(t, err, types.ErrBadRequest)
	})

	t.Run("malformed route data", func(t *testing.T) {
		err := svc.ApplyFavoriteAction(context.Background(), uuid.New(), types.FavoriteRequest{
			RouteID:   "route-1",
			RouteData: json.RawMessage(`{broken`),
			Action:    types.FavoriteActionAdd,
		})
		require.ErrorIs(t, err, types.ErrBadRequest)
	})
}

func TestListFavoritesPassthrough(t *testing.T) {
	userID := uuid.New()
	repo := &mockRepository{
		ListFavoritesFunc: func(_ context.Context, id uuid.UUID) ([]types.FavoriteRoute, error) {
			assert.Equal(t, userID, id)
			return []types.FavoriteRoute{{RouteID: "route-1"}}, nil
		},
	}
	svc := NewServiceImpl(repo, testLogger())

	favorites, err := svc.ListFavorites(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
}

func TestListFavoritesRepositoryError(t *testing.T) {
	repo := &mockRepository{
		ListFavoritesFunc: func(context.Context, uuid.UUID) ([]types.FavoriteRoute, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewServiceImpl(repo, testLogger())

	_, err := svc.ListFavorites(context.Background(), uuid.New())
	require.Error(t, err)
}
