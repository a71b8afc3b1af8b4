package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mengran777/GaiaPath/internal/types"
)

type mockGenerationAPI struct {
	GenerateRoutesFunc func(ctx context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error)
}

func (m *mockGenerationAPI) GenerateRoutes(ctx context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error) {
	return m.GenerateRoutesFunc(ctx, req)
}

func signedInIdentity(t *testing.T) (*IdentityCache, *mockCredentialStore) {
	t.Helper()
	creds := &mockCredentialStore{token: "tok-1", userID: "user-1"}
	api := &mockIdentityAPI{
		GetUserFunc: func(_ context.Context, id string) (*types.PublicUser, error) {
			return &types.PublicUser{ID: id, Username: "mengran"}, nil
		},
	}
	return NewIdentityCache(creds, api, testLogger()), creds
}

func romePrefs() types.RouteGenerationRequest {
	return types.RouteGenerationRequest{
		Destination:     "Rome",
		TravelStartDate: "2026-09-10",
		TravelEndDate:   "2026-09-13",
	}
}

func TestOrchestratorGenerateCommits(t *testing.T) {
	identity, _ := signedInIdentity(t)
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(_ context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error) {
			assert.Equal(t, "user-1", req.UserID, "identity is attached before dispatch")
			return []types.RouteOption{
				{Title: "Classic Rome", Itinerary: []types.DayItinerary{{Day: 1}, {Day: 2}, {Day: 3}}},
				{ID: "route-foodie", Title: "Foodie Rome", Days: 3},
			}, nil
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	routes, err := orch.Generate(context.Background(), romePrefs())
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.NotEmpty(t, routes[0].ID, "id-less routes get one assigned")
	assert.Equal(t, 3, routes[0].Days, "day count falls back to the itinerary length")
	assert.Equal(t, "route-foodie", routes[1].ID)

	assert.False(t, orch.IsLoading())
	assert.Empty(t, orch.LastError())
	assert.Len(t, orch.Routes(), 2)
}

func TestOrchestratorValidationFailsFast(t *testing.T) {
	identity, _ := signedInIdentity(t)
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(context.Context, types.RouteGenerationRequest) ([]types.RouteOption, error) {
			t.Fatal("invalid preferences must not be dispatched")
			return nil, nil
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	_, err := orch.Generate(context.Background(), types.RouteGenerationRequest{Destination: "Rome"})
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"travelStartDate", "travelEndDate"}, vErr.Missing)
	assert.False(t, orch.IsLoading())
	assert.NotEmpty(t, orch.LastError())
}

func TestOrchestratorRequiresIdentity(t *testing.T) {
	creds := &mockCredentialStore{}
	identity := NewIdentityCache(creds, &mockIdentityAPI{GetUserFunc: func(context.Context, string) (*types.PublicUser, error) {
		return nil, nil
	}}, testLogger())
	orch := NewOrchestrator(&mockGenerationAPI{}, identity, testLogger())

	_, err := orch.Generate(context.Background(), romePrefs())
	var vErr *types.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestOrchestratorFailureKeepsCommittedRoutes(t *testing.T) {
	identity, _ := signedInIdentity(t)
	calls := 0
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(context.Context, types.RouteGenerationRequest) ([]types.RouteOption, error) {
			calls++
			if calls == 1 {
				return []types.RouteOption{{ID: "route-classic", Title: "Classic Rome"}}, nil
			}
			return nil, &types.TransportError{Status: 503, Message: "model overloaded"}
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	_, err := orch.Generate(context.Background(), romePrefs())
	require.NoError(t, err)

	_, err = orch.Generate(context.Background(), romePrefs())
	require.Error(t, err)
	assert.False(t, orch.IsLoading())
	assert.NotEmpty(t, orch.LastError())
	require.Len(t, orch.Routes(), 1, "a failed regeneration keeps the last committed list")
	assert.Equal(t, "route-classic", orch.Routes()[0].ID)
}

func TestOrchestratorEmptyResultIsStructural(t *testing.T) {
	identity, _ := signedInIdentity(t)
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(context.Context, types.RouteGenerationRequest) ([]types.RouteOption, error) {
			return []types.RouteOption{}, nil
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	_, err := orch.Generate(context.Background(), romePrefs())
	var sErr *types.StructuralError
	require.ErrorAs(t, err, &sErr)
	assert.Empty(t, orch.Routes())
}

func TestOrchestratorAuthExpiryInvalidatesIdentity(t *testing.T) {
	identity, creds := signedInIdentity(t)
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(context.Context, types.RouteGenerationRequest) ([]types.RouteOption, error) {
			return nil, types.ErrAuthExpired
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	_, err := orch.Generate(context.Background(), romePrefs())
	require.ErrorIs(t, err, types.ErrAuthExpired)
	assert.True(t, creds.cleared)
	assert.Nil(t, identity.Identity(context.Background()))
}

func TestOrchestratorLastRequestWins(t *testing.T) {
	identity, _ := signedInIdentity(t)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(_ context.Context, req types.RouteGenerationRequest) ([]types.RouteOption, error) {
			if req.Destination == "Rome" {
				close(firstStarted)
				<-releaseFirst
				return []types.RouteOption{{ID: "route-rome", Title: "Rome"}}, nil
			}
			return []types.RouteOption{{ID: "route-lisbon", Title: "Lisbon"}}, nil
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	firstDone := make(chan error, 1)
	go func() {
		_, err := orch.Generate(context.Background(), romePrefs())
		firstDone <- err
	}()
	<-firstStarted

	lisbon := romePrefs()
	lisbon.Destination = "Lisbon"
	routes, err := orch.Generate(context.Background(), lisbon)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "route-lisbon", routes[0].ID)

	close(releaseFirst)
	require.ErrorIs(t, <-firstDone, types.ErrStaleResult)

	require.Len(t, orch.Routes(), 1, "the superseded completion does not overwrite the newer one")
	assert.Equal(t, "route-lisbon", orch.Routes()[0].ID)
	assert.False(t, orch.IsLoading())
	assert.Empty(t, orch.LastError())
}

func TestOrchestratorReset(t *testing.T) {
	identity, _ := signedInIdentity(t)
	api := &mockGenerationAPI{
		GenerateRoutesFunc: func(context.Context, types.RouteGenerationRequest) ([]types.RouteOption, error) {
			return []types.RouteOption{{ID: "route-rome"}}, nil
		},
	}
	orch := NewOrchestrator(api, identity, testLogger())

	_, err := orch.Generate(context.Background(), romePrefs())
	require.NoError(t, err)

	orch.Reset()
	assert.Empty(t, orch.Routes())
	assert.Empty(t, orch.LastError())
	assert.False(t, orch.IsLoading())
}

func TestNormalizeRoutesIdempotent(t *testing.T) {
	routes := normalizeRoutes([]types.RouteOption{{Title: "Rome", Itinerary: []types.DayItinerary{{Day: 1}}}})
	again := normalizeRoutes(append([]types.RouteOption(nil), routes...))
	assert.Equal(t, routes, again)
}
