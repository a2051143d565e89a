// Package config handles runtime configuration: defaults, an optional
// .env file, environment variables, then command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service's runtime settings.
//
// Fields:
//   - Addr: HTTP bind address.
//   - RedisAddr / RedisPassword: session-store backend.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory user
//     store, for development only.
//   - TokenSecret: HMAC secret for signing tokens (HS256, >= 32 bytes).
//     Do not ship the default.
//   - TokenTTL: token lifetime; also the session TTL and cookie Max-Age.
//   - CookieName: name of the identity cookie (and its header fallback).
//   - RegisterLimitBurst / RegisterLimitWindow: the registration route
//     admits RegisterLimitBurst requests per RegisterLimitWindow.
type Config struct {
	Addr                string
	RedisAddr           string
	RedisPassword       string
	DatabaseDSN         string
	TokenSecret         string
	TokenTTL            time.Duration
	CookieName          string
	RegisterLimitBurst  int
	RegisterLimitWindow time.Duration
}

// LoadDefaults populates development defaults. The secret is insecure by
// design and must be overridden outside local runs.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.RedisAddr = "127.0.0.1:6379"
	c.DatabaseDSN = ""
	c.TokenSecret = "this_is_user_secret_key_at_least_32_bytes"
	c.TokenTTL = time.Hour
	c.CookieName = "token"
	c.RegisterLimitBurst = 5
	c.RegisterLimitWindow = 30 * time.Minute
}

// Load builds a Config by layering defaults, an optional .env file,
// environment variables, and finally command-line flags.
func Load() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	// Missing .env is the normal case outside development.
	_ = godotenv.Load()
	cfg.loadEnv()
	cfg.parseFlags(os.Args[1:])

	return cfg
}

func (c *Config) loadEnv() {
	if v := os.Getenv("WEBAUTH_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("WEBAUTH_REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("WEBAUTH_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("WEBAUTH_DATABASE_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("WEBAUTH_TOKEN_SECRET"); v != "" {
		c.TokenSecret = v
	}
	if v := os.Getenv("WEBAUTH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.TokenTTL = d
		}
	}
	if v := os.Getenv("WEBAUTH_COOKIE_NAME"); v != "" {
		c.CookieName = v
	}
	if v := os.Getenv("WEBAUTH_REGISTER_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RegisterLimitBurst = n
		}
	}
	if v := os.Getenv("WEBAUTH_REGISTER_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RegisterLimitWindow = d
		}
	}
}

func (c *Config) parseFlags(args []string) {
	fs := flag.NewFlagSet("webauth", flag.ExitOnError)

	fs.StringVar(&c.Addr, "a", c.Addr, "address and port to listen on")
	fs.StringVar(&c.RedisAddr, "r", c.RedisAddr, "redis address")
	fs.StringVar(&c.DatabaseDSN, "d", c.DatabaseDSN, "database DSN (empty: in-memory user store)")
	fs.StringVar(&c.TokenSecret, "s", c.TokenSecret, "token signing secret")
	fs.DurationVar(&c.TokenTTL, "t", c.TokenTTL, "token and session lifetime")

	_ = fs.Parse(args)
}
