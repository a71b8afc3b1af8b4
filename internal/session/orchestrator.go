package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// GenerationAPI is the external itinerary generation collaborator.
type GenerationAPI interface {
	GenerateRoutes(ctx context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error)
}

// Orchestrator converts a preference payload into a committed route option
// list, exposing loading and error state. Only the latest issued request may
// commit: completions carrying an older sequence number are discarded on
// arrival, so repeated generation follows "last request wins" without any
// transport-level cancellation.
type Orchestrator struct {
	logger   *slog.Logger
	api      GenerationAPI
	identity *IdentityCache

	mu      sync.Mutex
	seq     uint64
	loading bool
	routes  []types.RouteOption
	lastErr string
}

// NewOrchestrator wires a generation orchestrator.
func NewOrchestrator(api GenerationAPI, identity *IdentityCache, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		logger:   logger,
		api:      api,
		identity: identity,
	}
}

// Generate validates the preferences, dispatches the generation request with
// the current identity attached, and commits the normalized result. On any
// failure the previously committed route list is left untouched. A stale
// completion returns types.ErrStaleResult and changes nothing.
func (o *Orchestrator) Generate(ctx context.Context, prefs types.RouteGenerationRequest) ([]types.RouteOption, error) {
	if missing := prefs.MissingFields(); len(missing) > 0 {
		err := &types.ValidationError{Missing: missing}
		o.setError(err.Error())
		return nil, err
	}
	ident := o.identity.Identity(ctx)
	if ident == nil {
		err := &types.ValidationError{Missing: []string{"identity"}}
		o.setError("please sign in before generating routes")
		return nil, err
	}
	prefs.UserID = ident.UserID

	o.mu.Lock()
	o.seq++
	mySeq := o.seq
	o.loading = true
	o.lastErr = ""
	o.mu.Unlock()

	routes, err := o.api.GenerateRoutes(ctx, prefs)

	o.mu.Lock()
	if mySeq != o.seq {
		// A newer request was issued while this one was in flight; its
		// completion owns the loading flag now.
		o.mu.Unlock()
		return nil, types.ErrStaleResult
	}
	o.loading = false
	o.mu.Unlock()

	if err != nil {
		return nil, o.recordFailure(ctx, err)
	}
	if len(routes) == 0 {
		structErr := &types.StructuralError{Message: "generation returned no routes"}
		return nil, o.recordFailure(ctx, structErr)
	}

	routes = normalizeRoutes(routes)

	o.mu.Lock()
	o.routes = routes
	o.mu.Unlock()
	return routes, nil
}

// recordFailure classifies a generation error, stores the user-visible
// message, and triggers identity invalidation on auth expiry. The committed
// route list is never touched here.
func (o *Orchestrator) recordFailure(ctx context.Context, err error) error {
	var structErr *types.StructuralError
	switch {
	case errors.Is(err, types.ErrAuthExpired):
		// Invalidate first: the reset hook wipes the error state, and the
		// expiry notice must survive the reset.
		o.identity.Invalidate()
		o.setError("your session has expired, please sign in again")
	case errors.As(err, &structErr):
		// Contract violation by the generation backend, not connectivity.
		o.logger.ErrorContext(ctx, "generation response violated the expected shape", slog.Any("error", err))
		o.setError("route generation returned an unexpected response, please try again")
	default:
		o.logger.WarnContext(ctx, "generation request failed", slog.Any("error", err))
		o.setError("route generation failed, please try again")
	}
	return err
}

func (o *Orchestrator) setError(msg string) {
	o.mu.Lock()
	o.lastErr = msg
	o.mu.Unlock()
}

// IsLoading reports whether a generation request is in flight.
func (o *Orchestrator) IsLoading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Routes returns the last committed route option list.
func (o *Orchestrator) Routes() []types.RouteOption {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.routes
}

// LastError returns the user-visible message of the last failure, or "".
func (o *Orchestrator) LastError() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// Reset discards the committed routes and the error message. Stale
// completions from before the reset remain stale: the sequence counter is
// advanced so they cannot commit afterwards.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.loading = false
	o.routes = nil
	o.lastErr = ""
}

// normalizeRoutes assigns ids to id-less routes, canonicalizes highlights,
// and fills the day count from the itinerary length when absent. Running it
// again over its own output changes nothing.
func normalizeRoutes(routes []types.RouteOption) []types.RouteOption {
	for i := range routes {
		if routes[i].ID == "" {
			routes[i].ID = uuid.NewString()
		}
		routes[i].Highlights = types.NormalizeHighlights(routes[i].Highlights)
		if routes[i].Days == 0 {
			routes[i].Days = len(routes[i].Itinerary)
		}
	}
	return routes
}
