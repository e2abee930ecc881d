package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/divinestore/storefront-backend/internal/auth"
	"github.com/divinestore/storefront-backend/internal/identity"
	"github.com/divinestore/storefront-backend/internal/profiles"
	"github.com/divinestore/storefront-backend/pkg/auth/session"
	"github.com/divinestore/storefront-backend/pkg/config"
	"github.com/divinestore/storefront-backend/pkg/db"
	"github.com/divinestore/storefront-backend/pkg/logger"
	"github.com/divinestore/storefront-backend/pkg/migrate"
	"github.com/divinestore/storefront-backend/pkg/redis"
)

// bootstrap-admin provisions the single admin identity and profile from the
// configured admin email and bootstrap secret. It is safe to re-run: a second
// run reports ADMIN_ALREADY_PROVISIONED and writes nothing.
func main() {
	name := flag.String("name", "Administrator", "display name for the admin profile")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "bootstrap-admin"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.Admin.BootstrapSecret == "" {
		logg.Error(ctx, "bootstrap secret not configured", nil)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	provider, err := identity.NewProvider(identity.ProviderParams{
		Store:          identity.NewRepository(dbClient.DB()),
		Sessions:       sessions,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create identity provider", err)
		os.Exit(1)
	}

	gate, err := auth.NewService(auth.ServiceParams{
		Identity:    provider,
		Profiles:    profiles.NewRepository(dbClient.DB()),
		TxRunner:    dbClient,
		AdminConfig: cfg.Admin,
		JWTConfig:   cfg.JWT,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	profile, err := gate.BootstrapAdmin(ctx, auth.BootstrapRequest{
		Email:       cfg.Admin.Email,
		Secret:      cfg.Admin.BootstrapSecret,
		DisplayName: *name,
	})
	if err != nil {
		logg.Error(ctx, "admin bootstrap failed", err)
		os.Exit(1)
	}

	logg.Info(logg.WithUserID(ctx, profile.ID.String()), "admin provisioned")
}
