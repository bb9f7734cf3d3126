// Package config loads EventDesk settings from the environment.
package config

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/hkdf"

	"eventdesk/internal/domain/otp"
)

// Config holds all runtime settings. Every variable carries the EVENTDESK_ prefix.
type Config struct {
	Addr     string `env:"ADDR, default=:8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	Secret   string `env:"SECRET"`

	API     APIConfig
	Storage StorageConfig
	Email   EmailConfig
	OTP     OTPConfig
	HTTP    HTTPConfig
}

// APIConfig locates the external PHP API.
type APIConfig struct {
	BaseURL  string        `env:"API_BASE_URL, default=http://localhost/eventapi/api.php"`
	ImageURL string        `env:"API_IMAGE_URL, default=http://localhost/eventapi/image.php"`
	Timeout  time.Duration `env:"API_TIMEOUT, default=15s"`
}

// StorageConfig selects the session value backend.
type StorageConfig struct {
	DBPath      string `env:"DB_PATH, default=eventdesk.db"`
	SlowQueryMs int    `env:"SLOW_QUERY_MS, default=50"`
	RedisAddr   string `env:"REDIS_ADDR"`
	RedisDB     int    `env:"REDIS_DB, default=0"`
}

// EmailConfig configures feedback reply delivery.
type EmailConfig struct {
	ResendKey string `env:"RESEND_KEY"`
	From      string `env:"EMAIL_FROM, default=EventDesk <noreply@eventdesk.local>"`
	ReplyTo   string `env:"EMAIL_REPLY_TO"`
}

// OTPConfig holds the one-time code windows.
type OTPConfig struct {
	Lifetime       time.Duration `env:"OTP_LIFETIME, default=300s"`
	ResendCooldown time.Duration `env:"OTP_RESEND_COOLDOWN, default=60s"`
}

// HTTPConfig tunes the middleware chain.
type HTTPConfig struct {
	RateLimitPerSecond int    `env:"RATE_LIMIT_PER_SECOND, default=10"`
	AuthRatePerMinute  int    `env:"AUTH_RATE_PER_MINUTE, default=20"`
	SlowRequestMs      int    `env:"SLOW_REQUEST_MS, default=200"`
	TrustedOrigins     string `env:"TRUSTED_ORIGINS, default=localhost:8080 127.0.0.1:8080"`
}

// Keys are the secrets derived from Config.Secret.
type Keys struct {
	HashKey  []byte // securecookie HMAC key, 64 bytes
	BlockKey []byte // securecookie AES-256 key, 32 bytes
	CSRFKey  []byte // gorilla/csrf key, 32 bytes
}

// ErrSecretRequired is returned in production when EVENTDESK_SECRET is unset.
var ErrSecretRequired = errors.New("EVENTDESK_SECRET is required in production")

// Load reads an optional .env file, then the environment.
// PRE: none
// POST: Returns a populated Config or the envconfig error
func Load(ctx context.Context) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper (tests use a map).
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper("EVENTDESK_", l),
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.IsProduction() && cfg.Secret == "" {
		return nil, ErrSecretRequired
	}
	return &cfg, nil
}

// IsProduction reports whether the app runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// OTPPolicy returns the configured code windows.
func (c *Config) OTPPolicy() otp.Policy {
	p := otp.Policy{Lifetime: c.OTP.Lifetime, ResendCooldown: c.OTP.ResendCooldown}
	if p.Lifetime <= 0 || p.ResendCooldown < 0 || p.ResendCooldown > p.Lifetime {
		return otp.DefaultPolicy
	}
	return p
}

// Origins returns the CSRF trusted origins (space or comma separated).
func (c *Config) Origins() []string {
	return strings.FieldsFunc(c.HTTP.TrustedOrigins, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

// SlogLevel parses the configured slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// DeriveKeys expands the secret into independent keys. Without a secret a
// random one is used, so sessions won't survive a restart.
// PRE: none
// POST: Returns keys of the sizes securecookie and gorilla/csrf require
func (c *Config) DeriveKeys() (Keys, error) {
	secret := []byte(c.Secret)
	if b, err := hex.DecodeString(c.Secret); err == nil && len(b) >= 32 {
		secret = b
	}
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return Keys{}, fmt.Errorf("generate secret: %w", err)
		}
		slog.Warn("config_event", "event", "random_secret", "detail", "set EVENTDESK_SECRET so sessions survive restarts")
	}
	expand := func(info string, n int) ([]byte, error) {
		key := make([]byte, n)
		if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
			return nil, fmt.Errorf("derive %s key: %w", info, err)
		}
		return key, nil
	}
	var k Keys
	var err error
	if k.HashKey, err = expand("eventdesk session hash", 64); err != nil {
		return Keys{}, err
	}
	if k.BlockKey, err = expand("eventdesk session block", 32); err != nil {
		return Keys{}, err
	}
	if k.CSRFKey, err = expand("eventdesk csrf", 32); err != nil {
		return Keys{}, err
	}
	return k, nil
}
