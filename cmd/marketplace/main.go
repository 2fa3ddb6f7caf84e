package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/georgemunganga/cargo-marketplace/internal/config"
	"github.com/georgemunganga/cargo-marketplace/internal/logger"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/cargo/stub"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/catalog"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/purchase"
	"github.com/georgemunganga/cargo-marketplace/internal/modules/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(cfg.LogLevel, os.Stderr)

	// ── Cargo gateway ───────────────────────────────────────
	var gateway cargo.Gateway
	switch cfg.Gateway {
	case config.GatewayHTTP:
		gateway = cargo.NewClient(cfg.GatewayURL, cargo.WithTimeout(cfg.GatewayTimeout))
	default:
		log.Warn().Msg("using in-memory demo gateway")
		gateway = stub.Demo(cfg.CrateID, cfg.Wallet)
	}
	if err := gateway.Init(context.Background(), cargo.InitConfig{Network: cfg.Network}); err != nil {
		log.Fatal().Err(err).Str("network", cfg.Network).Msg("cargo init failed")
	}

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Catalog ─────────────────────────────────────────────
	catalogService := catalog.NewService(gateway, cfg.Fetch)
	catalog.NewHandler(catalogService, cfg.CrateID, cfg.Wallet).RegisterRoutes(router)

	// ── Purchases ───────────────────────────────────────────
	secret := cfg.SessionSecret
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET unset, sessions will not survive a restart")
		secret = uuid.NewString()
	}
	sessions := purchase.NewSessions(secret, purchase.DefaultSessionTTL)
	purchaseService := purchase.NewService(gateway, purchase.NewMemoryRepository(), cfg.ExplorerTxURL)
	purchase.NewHandler(purchaseService, sessions).RegisterRoutes(router)

	// ── Storefront ──────────────────────────────────────────
	storefront.NewHandler(gateway, catalogService, purchaseService, sessions, storefront.Options{
		CrateID: cfg.CrateID,
		Wallet:  cfg.Wallet,
		Network: cfg.Network,
	}).RegisterRoutes(router)

	// ── Start Server ─────────────────────────────────────────
	log.Info().
		Str("port", cfg.Port).
		Str("network", cfg.Network).
		Str("gateway", cfg.Gateway).
		Str("crate", cfg.CrateID).
		Msg("cargo marketplace starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
