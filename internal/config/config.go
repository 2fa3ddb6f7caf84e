// Package config loads storefront settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/georgemunganga/cargo-marketplace/internal/modules/catalog"
)

// Gateway backends.
const (
	GatewayHTTP = "http"
	GatewayStub = "stub"
)

type Config struct {
	Port     string
	LogLevel string

	Network        string
	Gateway        string
	GatewayURL     string
	GatewayTimeout time.Duration

	CrateID       string
	Wallet        common.Address
	ExplorerTxURL string

	Fetch catalog.Options

	SessionSecret string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:          env("PORT", "3000"),
		LogLevel:      env("LOG_LEVEL", "info"),
		Network:       env("CARGO_NETWORK", "development"),
		Gateway:       env("CARGO_GATEWAY", GatewayStub),
		GatewayURL:    getenv("CARGO_GATEWAY_URL"),
		CrateID:       env("CRATE_ID", "98"),
		ExplorerTxURL: env("EXPLORER_TX_URL", "https://rinkeby.etherscan.io/tx/"),
		SessionSecret: getenv("SESSION_SECRET"),
	}

	switch cfg.Gateway {
	case GatewayStub:
	case GatewayHTTP:
		if cfg.GatewayURL == "" {
			return nil, errors.New("CARGO_GATEWAY_URL is required when CARGO_GATEWAY=http")
		}
	default:
		return nil, fmt.Errorf("CARGO_GATEWAY must be %q or %q, got %q", GatewayHTTP, GatewayStub, cfg.Gateway)
	}

	timeout, err := time.ParseDuration(env("GATEWAY_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT: %w", err)
	}
	cfg.GatewayTimeout = timeout

	wallet := env("WALLET_ADDRESS", "0x0000000000000000000000000000000000000000")
	if !common.IsHexAddress(wallet) {
		return nil, fmt.Errorf("WALLET_ADDRESS %q is not a hex address", wallet)
	}
	cfg.Wallet = common.HexToAddress(wallet)

	if u, err := url.Parse(cfg.ExplorerTxURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("EXPLORER_TX_URL %q is not an absolute URL", cfg.ExplorerTxURL)
	}

	concurrency, err := strconv.Atoi(env("FETCH_CONCURRENCY", strconv.Itoa(catalog.DefaultConcurrency)))
	if err != nil || concurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be a positive integer")
	}
	policy, err := catalog.ParseJoinPolicy(getenv("FETCH_JOIN_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("FETCH_JOIN_POLICY: %w", err)
	}
	cfg.Fetch = catalog.Options{Concurrency: concurrency, Policy: policy}

	return cfg, nil
}
