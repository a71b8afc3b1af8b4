package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// FavoritesAPI is the external favorites persistence collaborator.
type FavoritesAPI interface {
	ListFavorites(ctx context.Context) ([]types.RouteOption, error)
	SaveFavorite(ctx context.Context, routeID string, route *types.RouteOption) error
	RemoveFavorite(ctx context.Context, routeID string) error
}

// Machine owns the navigation state for one UI session and serializes every
// mutation behind a single mutex, so platforms with more than one goroutine
// get the same effective single-writer discipline as an event loop.
//
// Failures from the orchestrator reach the UI only as a message via
// ErrorMessage; transitions themselves never fail.
type Machine struct {
	logger   *slog.Logger
	orch     *Orchestrator
	favAPI   FavoritesAPI
	identity *IdentityCache

	mu        sync.Mutex
	state     State
	favorites map[string]*types.RouteOption
	errMsg    string
}

// NewMachine wires a navigation machine and registers the full-reset hook on
// the identity cache, so a rejected credential anywhere drops the session
// back to the initial stage.
func NewMachine(orch *Orchestrator, favAPI FavoritesAPI, identity *IdentityCache, logger *slog.Logger) *Machine {
	m := &Machine{
		logger:    logger,
		orch:      orch,
		favAPI:    favAPI,
		identity:  identity,
		state:     NewState(),
		favorites: make(map[string]*types.RouteOption),
	}
	identity.SetOnInvalidate(m.resetAll)
	return m
}

// State returns a copy of the current navigation state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ErrorMessage returns the current user-visible error, or "".
func (m *Machine) ErrorMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errMsg != "" {
		return m.errMsg
	}
	return m.orch.LastError()
}

// IsLoading reports whether a generation request is in flight.
func (m *Machine) IsLoading() bool {
	return m.orch.IsLoading()
}

// Generate runs the orchestrator and, on success, moves the session to the
// route selection stage. Stale completions are swallowed; other failures
// leave the current stage and route list untouched so the user can retry.
func (m *Machine) Generate(ctx context.Context, prefs types.RouteGenerationRequest) error {
	routes, err := m.orch.Generate(ctx, prefs)
	if err != nil {
		if errors.Is(err, types.ErrStaleResult) {
			return nil
		}
		return err
	}

	m.mu.Lock()
	m.errMsg = ""
	m.state = m.state.ApplyRoutes(routes)
	m.mu.Unlock()
	return nil
}

// SelectRoute moves to the detail stage for the given route id. Unknown ids
// are silent no-ops.
func (m *Machine) SelectRoute(routeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.SelectRoute(routeID)
}

// BackToRoutes returns to route selection, keeping the generated options.
func (m *Machine) BackToRoutes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.BackToRoutes()
}

// BackToInitial discards the generated options and returns to the start
// stage.
func (m *Machine) BackToInitial() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.BackToInitial()
	m.orch.Reset()
}

// SelectDay applies or resets (day 0) the day filter.
func (m *Machine) SelectDay(day int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.SelectDay(day)
}

// ToggleLocation opens or closes the detail popup for a map point.
func (m *Machine) ToggleLocation(loc types.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = m.state.ToggleLocation(loc)
}

// DisplayedLocations returns the derived map point list for the current
// itinerary and day filter.
func (m *Machine) DisplayedLocations() []types.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.DisplayedLocations()
}

// LoadFavorites hydrates the favorite set from the persistence collaborator.
func (m *Machine) LoadFavorites(ctx context.Context) error {
	routes, err := m.favAPI.ListFavorites(ctx)
	if err != nil {
		if errors.Is(err, types.ErrAuthExpired) {
			m.identity.Invalidate()
			m.setError("your session has expired, please sign in again")
		} else {
			m.setError("could not load favorites, please try again")
		}
		return err
	}

	m.mu.Lock()
	m.errMsg = ""
	m.favorites = make(map[string]*types.RouteOption, len(routes))
	for i := range routes {
		m.favorites[routes[i].ID] = &routes[i]
	}
	m.mu.Unlock()
	return nil
}

// ToggleFavorite flips a route's favorite status optimistically, persists the
// change, and reverts the local set when persistence fails. The local set is
// never left diverged without an attempted reconciliation.
func (m *Machine) ToggleFavorite(ctx context.Context, routeID string) error {
	m.mu.Lock()
	m.errMsg = ""
	route, had := m.favorites[routeID]
	if had {
		delete(m.favorites, routeID)
	} else {
		for i := range m.state.RouteOptions {
			if m.state.RouteOptions[i].ID == routeID {
				route = &m.state.RouteOptions[i]
				break
			}
		}
		if route == nil {
			// The id references a route that no longer exists anywhere.
			// Nothing to persist, nothing to revert.
			m.mu.Unlock()
			return nil
		}
		m.favorites[routeID] = route
	}
	m.mu.Unlock()

	var err error
	if had {
		err = m.favAPI.RemoveFavorite(ctx, routeID)
	} else {
		err = m.favAPI.SaveFavorite(ctx, routeID, route)
	}
	if err == nil {
		return nil
	}

	// Revert to the pre-toggle state.
	m.mu.Lock()
	if had {
		m.favorites[routeID] = route
	} else {
		delete(m.favorites, routeID)
	}
	m.mu.Unlock()

	m.logger.WarnContext(ctx, "favorite toggle failed, reverted", slog.String("route_id", routeID), slog.Any("error", err))
	if errors.Is(err, types.ErrAuthExpired) {
		m.identity.Invalidate()
		m.setError("your session has expired, please sign in again")
	} else {
		m.setError("could not update favorites, please try again")
	}
	return err
}

func (m *Machine) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}

// IsFavorite reports whether a route id is currently in the favorite set.
func (m *Machine) IsFavorite(routeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[routeID]
	return ok
}

// FavoriteIDs returns the route ids currently favorited.
func (m *Machine) FavoriteIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.favorites))
	for id := range m.favorites {
		ids = append(ids, id)
	}
	return ids
}

// resetAll drops every piece of per-session state. Runs when the identity
// cache invalidates the credential.
func (m *Machine) resetAll() {
	m.mu.Lock()
	m.state = NewState()
	m.favorites = make(map[string]*types.RouteOption)
	m.errMsg = ""
	m.mu.Unlock()
	m.orch.Reset()
}
