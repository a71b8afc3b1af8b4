package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service manages a user's favorite routes.
type Service interface {
	ListFavorites(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error)
	ApplyFavoriteAction(ctx context.Context, userID uuid.UUID, req types.FavoriteRequest) error
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

// ListFavorites returns the stored favorites, newest first.
func (s *ServiceImpl) ListFavorites(ctx context.Context, userID uuid.UUID) ([]types.FavoriteRoute, error) {
	ctx, span := otel.Tracer("FavoritesService").Start(ctx, "ListFavorites", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	favorites, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, err
	}
	return favorites, nil
}

// ApplyFavoriteAction adds or removes one favorite. Both directions are
// idempotent, so replays from an optimistic client settle on the same state.
func (s *ServiceImpl) ApplyFavoriteAction(ctx context.Context, userID uuid.UUID, req types.FavoriteRequest) error {
	ctx, span := otel.Tracer("FavoritesService").Start(ctx, "ApplyFavoriteAction", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("route.id", req.RouteID),
		attribute.String("action", string(req.Action)),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ApplyFavoriteAction"), slog.String("routeID", req.RouteID))

	if req.RouteID == "" {
		return &types.ValidationError{Missing: []string{"routeId"}}
	}
	if len(req.RouteData) > 0 && !json.Valid(req.RouteData) {
		return fmt.Errorf("%w: routeData is not valid JSON", types.ErrBadRequest)
	}

	switch req.Action {
	case types.FavoriteActionAdd:
		if err := s.repo.AddFavorite(ctx, userID, req.RouteID, req.RouteData); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "add failed")
			return err
		}
		l.InfoContext(ctx, "favorite added")
	case types.FavoriteActionRemove:
		if err := s.repo.RemoveFavorite(ctx, userID, req.RouteID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "remove failed")
			return err
		}
		l.InfoContext(ctx, "favorite removed")
	default:
		return fmt.Errorf("%w: unknown favorite action %q", types.ErrBadRequest, req.Action)
	}
	return nil
}
