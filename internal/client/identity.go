package client

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/Mengran777/GaiaPath/internal/types"
)

// IdentityClient resolves public user records.
type IdentityClient struct {
	base
}

// NewIdentityClient wires an identity client.
func NewIdentityClient(cfg Config, tokens TokenSource, logger *slog.Logger) *IdentityClient {
	return &IdentityClient{base: newBase(cfg, tokens, logger)}
}

// GetUser fetches the public record for a user id. A 404 surfaces as
// types.ErrNotFound.
func (c *IdentityClient) GetUser(ctx context.Context, id string) (*types.PublicUser, error) {
	raw, err := c.do(ctx, "GET", "/api/user/"+id, nil)
	if err != nil {
		var tErr *types.TransportError
		if errors.As(err, &tErr) && tErr.Status == 404 {
			return nil, types.ErrNotFound
		}
		return nil, err
	}

	var user types.PublicUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, &types.StructuralError{Message: "decode user record", Err: err}
	}
	return &user, nil
}

// MemoryCredentialStore holds the bearer credential and user id in memory.
// It satisfies both the session credential interface and TokenSource, so one
// store feeds every client.
type MemoryCredentialStore struct {
	mu     sync.Mutex
	token  string
	userID string
}

// NewMemoryCredentialStore returns an empty store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Set records the credential pair left behind by a login flow.
func (s *MemoryCredentialStore) Set(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.userID = userID
}

// Token returns the current bearer credential, or "".
func (s *MemoryCredentialStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// UserID returns the current user id, or "".
func (s *MemoryCredentialStore) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Clear drops the credential pair.
func (s *MemoryCredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.userID = ""
}
