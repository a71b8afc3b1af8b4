package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// Identity is the authenticated user's id and display data as known to the
// client.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// CredentialStore exposes what the external login flow left behind: an opaque
// bearer credential the core never inspects, and a readable non-sensitive
// user id used as the cache key.
type CredentialStore interface {
	Token() string
	UserID() string
	Clear()
}

// IdentityAPI resolves display data for a user id. Used only for display,
// never for authorization decisions.
type IdentityAPI interface {
	GetUser(ctx context.Context, id string) (*types.PublicUser, error)
}

// IdentityCache memoizes the current identity and invalidates it when any
// backend call reports unauthenticated. Invalidation is reactive only; the
// cache never refreshes credentials proactively.
type IdentityCache struct {
	logger *slog.Logger
	creds  CredentialStore
	api    IdentityAPI

	mu           sync.Mutex
	cached       *Identity
	onInvalidate func()
}

// NewIdentityCache wires an identity cache over a credential store and the
// identity lookup collaborator.
func NewIdentityCache(creds CredentialStore, api IdentityAPI, logger *slog.Logger) *IdentityCache {
	return &IdentityCache{
		logger: logger,
		creds:  creds,
		api:    api,
	}
}

// SetOnInvalidate registers the reset hook run after the cached identity is
// dropped. The session machine uses it to fall back to the initial stage.
func (c *IdentityCache) SetOnInvalidate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidate = fn
}

// Identity returns the current identity, or nil when signed out. The first
// call resolves the display name through the identity lookup; later calls
// serve the memo.
func (c *IdentityCache) Identity(ctx context.Context) *Identity {
	c.mu.Lock()
	if c.cached != nil {
		ident := *c.cached
		c.mu.Unlock()
		return &ident
	}
	c.mu.Unlock()

	userID := c.creds.UserID()
	if userID == "" || c.creds.Token() == "" {
		return nil
	}

	ident := &Identity{UserID: userID}
	user, err := c.api.GetUser(ctx, userID)
	switch {
	case err == nil:
		ident.Username = user.Username
		ident.Email = user.Email
	case errors.Is(err, types.ErrAuthExpired):
		c.logger.InfoContext(ctx, "identity lookup rejected credential, signing out")
		c.Invalidate()
		return nil
	default:
		// Display-name resolution is best effort; the id alone is enough to
		// attach to generation requests.
		c.logger.WarnContext(ctx, "identity lookup failed", slog.String("user_id", userID), slog.Any("error", err))
	}

	c.mu.Lock()
	c.cached = ident
	resolved := *ident
	c.mu.Unlock()
	return &resolved
}

// Invalidate drops the cached identity, clears the credential store, and runs
// the registered reset hook.
func (c *IdentityCache) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	fn := c.onInvalidate
	c.mu.Unlock()

	c.creds.Clear()
	if fn != nil {
		fn()
	}
}
