package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/FACorreiaa/medibook-api/docs"
	"github.com/FACorreiaa/medibook-api/internal/api"
	"github.com/FACorreiaa/medibook-api/internal/api/admin"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/api/professionals"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler          auth.Handler
	AdminHandler         admin.Handler
	ProfessionalsHandler *professionals.Handler

	AuthenticateMiddleware func(http.Handler) http.Handler
	RequireAdminMiddleware func(http.Handler) http.Handler

	AllowedOrigins []string
	// AuthRequestsPerMinute limits register and login per client IP. Zero
	// disables the limit.
	AuthRequestsPerMinute int
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (request id, logger, recoverer) is applied in
// main.go before mounting it.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes, throttled per client IP.
		r.Group(func(r chi.Router) {
			if cfg.AuthRequestsPerMinute > 0 {
				r.Use(httprate.Limit(cfg.AuthRequestsPerMinute, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
					httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
						api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many requests, try again later")
					}),
				))
			}
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		r.Get("/professionals", cfg.ProfessionalsHandler.ListVerified)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/auth/me", cfg.AuthHandler.Me)

			r.Route("/admin", func(r chi.Router) {
				r.Use(cfg.RequireAdminMiddleware)
				r.Get("/professionals/pending", cfg.AdminHandler.ListPending)
				r.Patch("/professionals/{id}/verify", cfg.AdminHandler.VerifyProfessional)
			})
		})
	})

	return r
}
