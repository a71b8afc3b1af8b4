package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Mengran777/GaiaPath/internal/domain/auth"
	"github.com/Mengran777/GaiaPath/internal/domain/favorites"
	"github.com/Mengran777/GaiaPath/internal/domain/generation"
	"github.com/Mengran777/GaiaPath/internal/domain/trip"
	"github.com/Mengran777/GaiaPath/internal/domain/user"
	"github.com/Mengran777/GaiaPath/internal/llm"
	"github.com/Mengran777/GaiaPath/pkg/config"
	"github.com/Mengran777/GaiaPath/pkg/db"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	AuthRepo      auth.Repository
	UserRepo      user.Repository
	FavoritesRepo favorites.Repository
	TripRepo      trip.Repository

	// Services
	TokenManager      auth.TokenManager
	Cookies           *auth.CookieManager
	AuthService       auth.Service
	TripService       trip.Service
	FavoritesService  favorites.Service
	GenerationService generation.Service

	// Handlers
	AuthHandler       *auth.HandlerImpl
	OAuthHandler      *auth.OAuthHandler
	GenerationHandler *generation.HandlerImpl
	FavoritesHandler  *favorites.HandlerImpl
	TripHandler       *trip.HandlerImpl
	UserHandler       *user.HandlerImpl
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.AuthRepo = auth.NewRepository(d.DB.Pool, d.Logger)
	d.UserRepo = user.NewRepository(d.DB.Pool, d.Logger)
	d.FavoritesRepo = favorites.NewRepository(d.DB.Pool, d.Logger)
	d.TripRepo = trip.NewRepository(d.DB.Pool, d.Logger)

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices(ctx context.Context) error {
	jwtSecret := []byte(d.Config.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		return fmt.Errorf("jwt secret is required")
	}

	d.TokenManager = auth.NewJWTTokenManager(jwtSecret, d.Config.Auth.AccessTokenTTL, d.Config.Auth.RefreshTokenTTL)
	d.Cookies = auth.NewCookieManager([]byte(d.Config.Auth.SessionSecret), d.Config.Auth.CookieSecure)
	d.AuthService = auth.NewServiceImpl(d.AuthRepo, d.TokenManager, d.Logger)
	d.TripService = trip.NewServiceImpl(d.TripRepo, d.Logger)
	d.FavoritesService = favorites.NewServiceImpl(d.FavoritesRepo, d.Logger)

	if d.Config.LLM.GeminiAPIKey == "" {
		return fmt.Errorf("gemini api key is required")
	}
	aiClient, err := llm.NewGeminiChatClient(ctx, d.Config.LLM.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create gemini client: %w", err)
	}

	images := generation.NewGoogleImageClient(
		d.Config.ImageSearch.APIKey,
		d.Config.ImageSearch.EngineID,
		d.Logger,
	)
	d.GenerationService = generation.NewServiceImpl(aiClient, images, d.TripService, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	d.AuthHandler = auth.NewHandlerImpl(d.AuthService, d.Cookies, d.Logger)
	d.OAuthHandler = auth.NewOAuthHandler(auth.OAuthConfig{
		GoogleClientID:     d.Config.OAuth.GoogleClientID,
		GoogleClientSecret: d.Config.OAuth.GoogleClientSecret,
		CallbackURL:        d.Config.OAuth.GoogleCallbackURL,
		SessionSecret:      []byte(d.Config.Auth.SessionSecret),
	}, d.AuthRepo, d.TokenManager, d.Cookies, d.Logger)
	d.GenerationHandler = generation.NewHandlerImpl(d.GenerationService, d.Logger)
	d.FavoritesHandler = favorites.NewHandlerImpl(d.FavoritesService, d.Logger)
	d.TripHandler = trip.NewHandlerImpl(d.TripService, d.Logger)
	d.UserHandler = user.NewHandlerImpl(d.UserRepo, d.Logger)
	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
