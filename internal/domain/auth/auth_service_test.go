package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mengran777/GaiaPath/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockRepo is an in-memory Repository keyed by email.
type mockRepo struct {
	users map[string]*types.User
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*types.User)}
}

func (m *mockRepo) CreateUser(_ context.Context, username, email, hashedPassword string) (*types.User, error) {
	if _, exists := m.users[email]; exists {
		return nil, fmt.Errorf("%w: account already exists", types.ErrConflict)
	}
	user := &types.User{
		ID:             uuid.New(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	m.users[email] = user
	return user, nil
}

func (m *mockRepo) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, types.ErrNotFound
	}
	return user, nil
}

func (m *mockRepo) GetUserByUsername(_ context.Context, username string) (*types.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *mockRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*types.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, types.ErrNotFound
}

func (m *mockRepo) UpdateLastLogin(_ context.Context, userID uuid.UUID) error {
	for _, user := range m.users {
		if user.ID == userID {
			now := time.Now()
			user.LastLoginAt = &now
			return nil
		}
	}
	return types.ErrNotFound
}

func newTestService() (*ServiceImpl, *mockRepo) {
	repo := newMockRepo()
	tokens := NewJWTTokenManager([]byte("test-secret"), time.Hour, 24*time.Hour)
	return NewServiceImpl(repo, tokens, testLogger()), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{
		Username: "mengran",
		Email:    "Mengran@Example.com",
		Password: "Str0ngPass",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatalf("expected an access token")
	}
	if result.User.Email != "mengran@example.com" {
		t.Fatalf("expected lowercased email, got %q", result.User.Email)
	}

	stored, err := repo.GetUserByEmail(ctx, "mengran@example.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if stored.HashedPassword == "Str0ngPass" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.HashedPassword), []byte("Str0ngPass")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		params RegisterParams
	}{
		{"short username", RegisterParams{Username: "ab", Email: "a@b.com", Password: "Str0ngPass"}},
		{"bad email", RegisterParams{Username: "mengran", Email: "not-an-email", Password: "Str0ngPass"}},
		{"short password", RegisterParams{Username: "mengran", Email: "a@b.com", Password: "Ab1"}},
		{"no digit", RegisterParams{Username: "mengran", Email: "a@b.com", Password: "NoDigitsHere"}},
		{"no upper", RegisterParams{Username: "mengran", Email: "a@b.com", Password: "alllower123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.params); !errors.Is(err, types.ErrBadRequest) {
				t.Fatalf("expected ErrBadRequest, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	params := RegisterParams{Username: "mengran", Email: "m@example.com", Password: "Str0ngPass"}
	if _, err := svc.Register(ctx, params); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	params.Username = "other"
	if _, err := svc.Register(ctx, params); !errors.Is(err, types.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Username: "mengran", Email: "m@example.com", Password: "Str0ngPass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(ctx, LoginParams{Email: "M@Example.com", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatalf("expected an access token")
	}

	stored, _ := repo.GetUserByEmail(ctx, "m@example.com")
	if stored.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterParams{Username: "mengran", Email: "m@example.com", Password: "Str0ngPass"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(ctx, LoginParams{Email: "m@example.com", Password: "WrongPass1"}); !errors.Is(err, types.ErrUnauthenticated) {
		t.Fatalf("wrong password: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "Str0ngPass"}); !errors.Is(err, types.ErrUnauthenticated) {
		t.Fatalf("unknown email: expected ErrUnauthenticated, got %v", err)
	}
}

func TestRefreshTokens(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterParams{Username: "mengran", Email: "m@example.com", Password: "Str0ngPass"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	pair, err := svc.RefreshTokens(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatalf("expected a fresh access token")
	}

	if _, err := svc.RefreshTokens(ctx, result.Tokens.AccessToken); !errors.Is(err, types.ErrUnauthenticated) {
		t.Fatalf("access token used as refresh: expected ErrUnauthenticated, got %v", err)
	}
}
