// Command seed_admin creates the first admin identity. Admins cannot
// self-register, so every deployment runs this once:
//
//	SEED_ADMIN_EMAIL=admin@example.com SEED_ADMIN_PASSWORD=... go run ./scripts
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"

	database "github.com/FACorreiaa/medibook-api/app/db"
	appLogger "github.com/FACorreiaa/medibook-api/app/logger"
	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}
	logger := appLogger.New(cfg.Mode, os.Stdout)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}
	pool, err := database.Init(dbConfig, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	repo := auth.NewPostgresAuthRepo(pool, logger)
	hasher := auth.NewBcryptHasher(cfg.Security.BcryptCost)

	err = seedAdmin(ctx, repo, hasher, os.Getenv("SEED_ADMIN_EMAIL"), os.Getenv("SEED_ADMIN_PASSWORD"), logger)
	if err != nil {
		logger.Error("Seeding admin failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// seedAdmin stores a verified admin. An existing identity with the same
// email counts as success.
func seedAdmin(ctx context.Context, repo auth.AuthRepo, hasher auth.PasswordHasher, email, password string, logger *slog.Logger) error {
	email = types.NormalizeEmail(email)
	err := validation.Errors{
		"SEED_ADMIN_EMAIL":    validation.Validate(email, validation.Required, is.Email),
		"SEED_ADMIN_PASSWORD": validation.Validate(password, validation.Required, validation.Length(8, 72)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}

	identity, err := repo.CreateIdentity(ctx, types.CreateIdentityParams{
		Email:    email,
		Role:     types.RoleAdmin,
		Verified: true,
		Profile:  types.Profile{Name: "Administrator"},
	}, hash)
	if errors.Is(err, types.ErrDuplicateIdentity) {
		logger.InfoContext(ctx, "Admin already exists, nothing to do", slog.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Admin created", slog.String("identity_id", identity.ID.String()))
	return nil
}
