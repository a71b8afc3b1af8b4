package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mengran777/GaiaPath/internal/api"
)

type contextKey string

const userIDKey contextKey = "auth.userID"

// ContextWithUserID returns a context carrying the authenticated user id.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext returns the authenticated user id, if any.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

// Middleware validates the request credential and stores the user id in the
// request context. It accepts a Bearer header or the auth cookie set at
// login, in that order, and answers 401 when neither verifies.
func Middleware(tokens TokenManager, cookies *CookieManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" && cookies != nil {
				token = cookies.AuthToken(r)
			}
			if token == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := tokens.ValidateAccessToken(token)
			if err != nil {
				logger.DebugContext(r.Context(), "rejected credential", slog.Any("error", err))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired credential")
				return
			}

			ctx := ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
