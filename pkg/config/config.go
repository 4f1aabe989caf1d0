// pkg/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// OIDC / JWT for admin bearer validation
	Issuer       string
	Audience     string
	JWKSURL      string
	AccountClaim string // claim carrying the login-identity id (default "sub")
	RolesClaim   string // claim carrying platform-global role names

	// How long a permission check may wait for an in-flight
	// login/logout transition to settle before treating the
	// session as unauthenticated.
	AuthSettleTimeout time.Duration

	// Session cache slot TTL when backed by Redis.
	SessionTTL time.Duration

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// Optional YAML fixture file applied at startup (dev bootstrap).
	SeedFile string
}

func Load() Config {
	_ = godotenv.Load()
	return Config{
		Env:               env("SHOPADMIN_ENV", "dev"),
		HTTPAddr:          env("SHOPADMIN_HTTP_ADDR", ":8082"),
		Issuer:            env("OIDC_ISSUER", ""),
		Audience:          env("OIDC_AUDIENCE", "shopadmin"),
		JWKSURL:           env("JWKS_URL", ""),
		AccountClaim:      env("ACCOUNT_CLAIM", "sub"),
		RolesClaim:        env("ROLES_CLAIM", "roles"),
		AuthSettleTimeout: envDur("AUTH_SETTLE_TIMEOUT_SEC", 5) * time.Second,
		SessionTTL:        envDur("SESSION_TTL_SEC", 86400) * time.Second,
		RedisURL:          env("REDIS_URL", ""),
		DatabaseURL:       env("DATABASE_URL", ""),
		SeedFile:          env("SEED_FILE", ""),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
