package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mengran777/GaiaPath/internal/api"
	"github.com/Mengran777/GaiaPath/internal/types"
)

// OAuthConfig carries the Google OAuth credentials.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	CallbackURL        string
	SessionSecret      []byte
}

// OAuthHandler runs the Google sign-in flow and converts the external
// identity into a local account plus session.
type OAuthHandler struct {
	logger  *slog.Logger
	repo    Repository
	tokens  TokenManager
	cookies *CookieManager
}

// NewOAuthHandler registers the Google provider and returns the handler.
// A missing client id disables the flow; the endpoints then answer 404.
func NewOAuthHandler(cfg OAuthConfig, repo Repository, tokens TokenManager, cookies *CookieManager, logger *slog.Logger) *OAuthHandler {
	if cfg.GoogleClientID != "" {
		gothic.Store = sessions.NewCookieStore(cfg.SessionSecret)
		goth.UseProviders(
			google.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.CallbackURL, "email", "profile"),
		)
	}
	return &OAuthHandler{
		logger:  logger,
		repo:    repo,
		tokens:  tokens,
		cookies: cookies,
	}
}

// Begin answers GET /api/auth/google and redirects to the provider.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if _, err := goth.GetProvider("google"); err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Google sign-in is not configured")
		return
	}
	gothic.BeginAuthHandler(w, r)
}

// Callback answers GET /api/auth/google/callback, completing the flow and
// signing the user in locally.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("OAuthHandler", "Callback"))

	externalUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "oauth completion failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Google sign-in failed")
		return
	}

	user, err := h.findOrCreateUser(ctx, externalUser)
	if err != nil {
		l.ErrorContext(ctx, "failed to resolve oauth user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Sign-in failed")
		return
	}

	pair, err := h.tokens.GenerateTokenPair(user.ID.String(), user.Email, user.Username)
	if err != nil {
		l.ErrorContext(ctx, "failed to issue tokens", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Sign-in failed")
		return
	}

	if err := h.cookies.SetSession(w, r, pair.AccessToken, user.ID.String()); err != nil {
		l.WarnContext(ctx, "failed to set session cookie", slog.Any("error", err))
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// findOrCreateUser maps the provider identity onto a local account, creating
// one on first sign-in. OAuth accounts get an unguessable local password so
// the password login path stays closed for them.
func (h *OAuthHandler) findOrCreateUser(ctx context.Context, external goth.User) (*types.User, error) {
	email := strings.ToLower(external.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: provider returned no email", types.ErrBadRequest)
	}

	user, err := h.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return nil, err
	}

	username := external.NickName
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
	}
	return h.repo.CreateUser(ctx, username, email, string(hashed))
}
