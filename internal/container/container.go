package container

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	appMiddleware "github.com/FACorreiaa/medibook-api/app/middleware"
	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/api/admin"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/api/professionals"
	"github.com/FACorreiaa/medibook-api/internal/router"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

// Container holds all application dependencies
type Container struct {
	Config               *config.Config
	Logger               *slog.Logger
	Pool                 *pgxpool.Pool
	TokenIssuer          auth.TokenIssuer
	AuthService          auth.AuthService
	AuthHandler          *auth.HandlerImpl
	AdminHandler         *admin.HandlerImpl
	ProfessionalsHandler *professionals.Handler
}

// NewContainer wires repositories, services and handlers on top of an
// already initialised pool.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*Container, error) {
	issuer, err := auth.NewJWTIssuer(cfg.JWT)
	if err != nil {
		logger.Error("Failed to create token issuer", slog.Any("error", err))
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	hasher := auth.NewBcryptHasher(cfg.Security.BcryptCost)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, hasher, issuer, logger)
	authHandler := auth.NewAuthHandlerImpl(authService, logger)

	professionalsRepo := professionals.NewPostgresRepository(pool, logger)
	professionalsService := professionals.NewService(professionalsRepo, cfg.Cache.DirectoryTTL, logger)
	professionalsHandler := professionals.NewHandler(professionalsService, logger)

	adminRepo := admin.NewPostgresAdminRepo(pool, logger)
	adminService := admin.NewAdminService(adminRepo, professionalsService, logger)
	adminHandler := admin.NewHandlerImpl(adminService, logger)

	return &Container{
		Config:               cfg,
		Logger:               logger,
		Pool:                 pool,
		TokenIssuer:          issuer,
		AuthService:          authService,
		AuthHandler:          authHandler,
		AdminHandler:         adminHandler,
		ProfessionalsHandler: professionalsHandler,
	}, nil
}

// Router builds the API router from the container's handlers.
func (c *Container) Router() http.Handler {
	return router.SetupRouter(&router.Config{
		AuthHandler:            c.AuthHandler,
		AdminHandler:           c.AdminHandler,
		ProfessionalsHandler:   c.ProfessionalsHandler,
		AuthenticateMiddleware: appMiddleware.Authenticate(c.Logger, c.TokenIssuer),
		RequireAdminMiddleware: appMiddleware.RequireRole(c.Logger, types.RoleAdmin),
		AllowedOrigins:         c.Config.CORS.AllowedOrigins,
		AuthRequestsPerMinute:  c.Config.RateLimit.AuthRequestsPerMinute,
	})
}

// Close releases the database pool.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
