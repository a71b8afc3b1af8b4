package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// FavoritesClient calls the favorite routes endpoint.
type FavoritesClient struct {
	base
}

// NewFavoritesClient wires a favorites client.
func NewFavoritesClient(cfg Config, tokens TokenSource, logger *slog.Logger) *FavoritesClient {
	return &FavoritesClient{base: newBase(cfg, tokens, logger)}
}

// ListFavorites fetches the stored favorites, newest first, and decodes each
// stored route payload. Entries whose payload no longer parses are skipped
// rather than failing the whole list.
func (c *FavoritesClient) ListFavorites(ctx context.Context) ([]types.RouteOption, error) {
	raw, err := c.do(ctx, "GET", "/api/favorites", nil)
	if err != nil {
		return nil, err
	}

	var body struct {
		Favorites []types.FavoriteRoute `json:"favorites"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &types.StructuralError{Message: "decode favorites list", Err: err}
	}

	routes := make([]types.RouteOption, 0, len(body.Favorites))
	for _, fav := range body.Favorites {
		var route types.RouteOption
		if err := json.Unmarshal(fav.RouteData, &route); err != nil {
			c.logger.WarnContext(ctx, "skipping favorite with unreadable payload",
				slog.String("route_id", fav.RouteID), slog.Any("error", err))
			continue
		}
		if route.ID == "" {
			route.ID = fav.RouteID
		}
		routes = append(routes, route)
	}
	return routes, nil
}

// SaveFavorite stores a favorite. The full route payload rides along when the
// caller still has it, so the favorite survives regeneration.
func (c *FavoritesClient) SaveFavorite(ctx context.Context, routeID string, route *types.RouteOption) error {
	req := types.FavoriteRequest{RouteID: routeID, Action: types.FavoriteActionAdd}
	if route != nil {
		raw, err := json.Marshal(route)
		if err != nil {
			return fmt.Errorf("encode route payload: %w", err)
		}
		req.RouteData = raw
	}
	_, err := c.do(ctx, "POST", "/api/favorites", req)
	return err
}

// RemoveFavorite deletes a stored favorite.
func (c *FavoritesClient) RemoveFavorite(ctx context.Context, routeID string) error {
	_, err := c.do(ctx, "POST", "/api/favorites", types.FavoriteRequest{
		RouteID: routeID,
		Action:  types.FavoriteActionRemove,
	})
	return err
}
