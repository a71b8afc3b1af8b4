package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mengran777/GaiaPath/internal/types"
)

const bcryptCost = 12

var (
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

// RegisterParams carries a signup request.
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginParams carries a login request.
type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a successful authentication.
type LoginResult struct {
	User   *types.User
	Tokens *TokenPair
}

var _ Service = (*ServiceImpl)(nil)

// Service implements account registration and credential verification.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
	tokens TokenManager
}

func NewServiceImpl(repo Repository, tokens TokenManager, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates an account and signs the new user in.
func (s *ServiceImpl) Register(ctx context.Context, params RegisterParams) (*LoginResult, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.email", params.Email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Register"), slog.String("email", params.Email))

	if err := validateRegistration(params); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcryptCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, params.Username, strings.ToLower(params.Email), string(hashed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user creation failed")
		return nil, err
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	l.InfoContext(ctx, "user registered", slog.String("userID", user.ID.String()))
	return &LoginResult{User: user, Tokens: pair}, nil
}

// Login verifies credentials and issues a token pair. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *ServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login", trace.WithAttributes(
		attribute.String("user.email", params.Email),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Login"), slog.String("email", params.Email))

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(params.Email))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", types.ErrUnauthenticated)
		}
		span.RecordError(err)
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(params.Password)); err != nil {
		l.WarnContext(ctx, "rejected login attempt")
		return nil, fmt.Errorf("%w: invalid email or password", types.ErrUnauthenticated)
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		l.WarnContext(ctx, "failed to record last login", slog.Any("error", err))
	}

	l.InfoContext(ctx, "user logged in", slog.String("userID", user.ID.String()))
	return &LoginResult{User: user, Tokens: pair}, nil
}

// RefreshTokens exchanges a valid refresh token for a new pair.
func (s *ServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshTokens")
	defer span.End()

	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthenticated, err)
	}

	pair, err := s.tokens.GenerateTokenPair(claims.UserID, claims.Email, claims.Username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}
	return pair, nil
}

func validateRegistration(params RegisterParams) error {
	if !usernamePattern.MatchString(params.Username) {
		return fmt.Errorf("%w: username must be 3-30 letters, digits, or underscores", types.ErrBadRequest)
	}
	if !emailPattern.MatchString(params.Email) {
		return fmt.Errorf("%w: invalid email address", types.ErrBadRequest)
	}
	return validatePasswordStrength(params.Password)
}

func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", types.ErrBadRequest)
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return fmt.Errorf("%w: password needs an upper case letter, a lower case letter, and a digit", types.ErrBadRequest)
	}
	return nil
}
