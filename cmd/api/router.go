package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/Mengran777/GaiaPath/internal/domain/auth"
	"github.com/Mengran777/GaiaPath/pkg/middleware"
	"github.com/Mengran777/GaiaPath/pkg/observability"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	registerAPIRoutes(mux, deps)
	registerUtilityRoutes(mux, deps)

	var rateLimiter middleware.Middleware
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		rateLimiter = middleware.NewRateLimit(limiter)
	}

	var metrics middleware.Middleware
	if deps.Config.Observability.MetricsEnabled {
		metrics = observability.NewMetricsMiddleware()
	}

	handler := middleware.Chain(mux,
		middleware.NewRequestID("X-Request-ID"),
		middleware.NewRecovery(deps.Logger),
		middleware.NewLogging(deps.Logger),
		rateLimiter,
		metrics,
	)

	// Enable CORS for the browser client
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
	})

	return corsHandler.Handler(handler)
}

// registerAPIRoutes registers the public and authenticated API routes
func registerAPIRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Public auth routes
	mux.HandleFunc("POST /api/auth/register", deps.AuthHandler.Register)
	mux.HandleFunc("POST /api/auth/login", deps.AuthHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", deps.AuthHandler.Logout)
	mux.HandleFunc("POST /api/auth/refresh", deps.AuthHandler.RefreshToken)
	mux.HandleFunc("GET /api/auth/google", deps.OAuthHandler.Begin)
	mux.HandleFunc("GET /api/auth/google/callback", deps.OAuthHandler.Callback)

	// Authenticated routes
	requireAuth := auth.Middleware(deps.TokenManager, deps.Cookies, deps.Logger)
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(h))
	}

	protected("POST /api/generate-itinerary", deps.GenerationHandler.GenerateItinerary)
	protected("GET /api/favorites", deps.FavoritesHandler.ListFavorites)
	protected("POST /api/favorites", deps.FavoritesHandler.ApplyFavoriteAction)
	protected("GET /api/user/{id}", deps.UserHandler.GetUser)
	protected("POST /api/trips", deps.TripHandler.CreateTrip)
	protected("GET /api/trips", deps.TripHandler.ListTrips)
	protected("GET /api/trips/{id}", deps.TripHandler.GetTrip)
	protected("PUT /api/trips/{id}", deps.TripHandler.UpdateTrip)
	protected("DELETE /api/trips/{id}", deps.TripHandler.DeleteTrip)
	protected("POST /api/trips/{id}/locations", deps.TripHandler.AddLocation)
	protected("PUT /api/trips/{id}/locations/{locationId}", deps.TripHandler.UpdateLocation)
	protected("DELETE /api/trips/{id}/locations/{locationId}", deps.TripHandler.DeleteLocation)

	deps.Logger.Info("API routes configured")
}

// registerUtilityRoutes registers health check, metrics, and other utility routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unhealthy"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	deps.Logger.Info("registered health check", "path", "/health")

	// Readiness check endpoint
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	// Metrics endpoint (Prometheus)
	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
