package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration values from environment variables.
// A .env file in the working directory is loaded first if present; a missing
// file is not an error (expected in containerized deployments where the
// environment is injected directly).
//
// Recognized variables:
//
//	HTTP_ADDRESS       bind address
//	DATABASE_DSN       PostgreSQL DSN
//	JWT_SECRET         access-token HMAC secret
//	JWT_REFRESH_SECRET refresh-token HMAC secret
//	ACCESS_TOKEN_TTL   access token lifetime (time.ParseDuration format)
//	REFRESH_TOKEN_TTL  refresh token lifetime
//	BCRYPT_COST        bcrypt work factor
//	COOKIE_SECURE      "true" enables Secure/SameSite=None refresh cookie
//	REDIS_ADDR         Redis address for the auth rate limiter
//	AUTH_RATE_LIMIT    request budget per IP per window
//	AUTH_RATE_WINDOW   rate-limit window (time.ParseDuration format)
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.AccessTokenSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		config.RefreshTokenSecret = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.BcryptCost = n
		}
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		config.CookieSecure = v == "true"
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.RedisAddr = v
	}
	if v := os.Getenv("AUTH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.AuthRateLimit = n
		}
	}
	if v := os.Getenv("AUTH_RATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AuthRateWindow = d
		}
	}
}
