package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mengran777/GaiaPath/internal/api"
	"github.com/Mengran777/GaiaPath/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	RefreshToken(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	authService Service
	cookies     *CookieManager
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, cookies *CookieManager, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		cookies:     cookies,
		logger:      logger,
	}
}

type loginResponse struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

// Register answers POST /api/auth/register.
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/register"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "Register"))

	var params RegisterParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Register(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrBadRequest):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, types.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "An account with that email or username already exists")
		default:
			l.ErrorContext(ctx, "registration failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.writeSession(w, r, l, http.StatusCreated, result, "Registration successful")
}

// Login answers POST /api/auth/login.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "Login"))

	var params LoginParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.authService.Login(ctx, params)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	h.writeSession(w, r, l, http.StatusOK, result, "Login successful")
}

// Logout answers POST /api/auth/logout.
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "Logout", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/logout"),
	))
	defer span.End()

	if err := h.cookies.ClearSession(w, r); err != nil {
		h.logger.WarnContext(ctx, "failed to clear session", slog.Any("error", err))
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]bool{"success": true})
}

// RefreshToken answers POST /api/auth/refresh.
func (h *HandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HandlerImpl").Start(r.Context(), "RefreshToken", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/auth/refresh"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "RefreshToken"))

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, err := h.authService.RefreshTokens(ctx, body.RefreshToken)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "token refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Token refresh failed")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, pair)
}

func (h *HandlerImpl) writeSession(w http.ResponseWriter, r *http.Request, l *slog.Logger, status int, result *LoginResult, message string) {
	userID := result.User.ID.String()
	if err := h.cookies.SetSession(w, r, result.Tokens.AccessToken, userID); err != nil {
		l.WarnContext(r.Context(), "failed to set session cookie", slog.Any("error", err))
	}
	api.WriteJSONResponse(w, r, status, loginResponse{
		UserID:      userID,
		Username:    result.User.Username,
		Email:       result.User.Email,
		AccessToken: result.Tokens.AccessToken,
		Message:     message,
	})
}
