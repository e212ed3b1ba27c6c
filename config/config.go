// Package config loads runtime settings from the environment.
//
// A .env file in the working directory is loaded first when present (it
// never overrides variables already set), then caarlos0/env fills the tagged
// structs below. Every setting has a default except the secrets, which are
// checked by the commands that need them.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/akinalp/rollcall/models"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	LiveKit  LiveKitConfig
	Window   WindowConfig
	Email    EmailConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host        string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port        int      `env:"SERVER_PORT" envDefault:"9090"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

type DatabaseConfig struct {
	Path string `env:"DATABASE_PATH" envDefault:"./data/rollcall.db"`
}

type JWTConfig struct {
	Secret      string        `env:"JWT_SECRET"`
	TokenExpiry time.Duration `env:"JWT_TOKEN_EXPIRY" envDefault:"720h"`
}

// GatewayConfig guards the relay websocket. KeyHash is the bcrypt hash of
// the shared key the relay presents; `rollcall hash-key` produces it.
type GatewayConfig struct {
	KeyHash           string        `env:"GATEWAY_KEY_HASH"`
	MaxFailedAttempts int           `env:"GATEWAY_MAX_FAILED_ATTEMPTS" envDefault:"5"`
	FailureWindow     time.Duration `env:"GATEWAY_FAILURE_WINDOW" envDefault:"15m"`
	DedupTTL          time.Duration `env:"GATEWAY_DEDUP_TTL" envDefault:"2m"`
}

type LiveKitConfig struct {
	APIKey    string `env:"LIVEKIT_API_KEY"`
	APISecret string `env:"LIVEKIT_API_SECRET"`
}

// WindowConfig is the weekly session window. Hours are inclusive bounds in
// Timezone ("Local" for the host zone).
type WindowConfig struct {
	StartWeekday Weekday `env:"SESSION_START_WEEKDAY" envDefault:"friday"`
	StartHour    int     `env:"SESSION_START_HOUR" envDefault:"18"`
	EndWeekday   Weekday `env:"SESSION_END_WEEKDAY" envDefault:"saturday"`
	EndHour      int     `env:"SESSION_END_HOUR" envDefault:"2"`
	Timezone     string  `env:"SESSION_TIMEZONE" envDefault:"Local"`
}

type EmailConfig struct {
	ResendAPIKey     string   `env:"RESEND_API_KEY"`
	From             string   `env:"EMAIL_FROM"`
	ReportRecipients []string `env:"REPORT_RECIPIENTS" envSeparator:","`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return parse(env.Options{})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Window.SessionWindow(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RequireSecret fails when token signing is not configured.
func (c *JWTConfig) RequireSecret() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	return nil
}

// Enabled reports whether the relay gateway accepts connections.
func (c *GatewayConfig) Enabled() bool {
	return c.KeyHash != ""
}

// Enabled reports whether the LiveKit webhook is mounted.
func (c *LiveKitConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Enabled reports whether session reports can be e-mailed.
func (c *EmailConfig) Enabled() bool {
	return c.ResendAPIKey != "" && c.From != "" && len(c.ReportRecipients) > 0
}

// SessionWindow validates the window settings and resolves the timezone.
func (c *WindowConfig) SessionWindow() (models.SessionWindow, error) {
	if c.StartHour < 0 || c.StartHour > 23 {
		return models.SessionWindow{}, fmt.Errorf("SESSION_START_HOUR must be 0-23, got %d", c.StartHour)
	}
	if c.EndHour < 0 || c.EndHour > 23 {
		return models.SessionWindow{}, fmt.Errorf("SESSION_END_HOUR must be 0-23, got %d", c.EndHour)
	}
	start, end := time.Weekday(c.StartWeekday), time.Weekday(c.EndWeekday)
	if end != (start+1)%7 {
		return models.SessionWindow{}, fmt.Errorf("SESSION_END_WEEKDAY must be the day after SESSION_START_WEEKDAY (%s), got %s", start, end)
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return models.SessionWindow{}, fmt.Errorf("invalid SESSION_TIMEZONE %q: %w", c.Timezone, err)
	}

	return models.SessionWindow{
		StartWeekday: start,
		StartHour:    c.StartHour,
		EndWeekday:   end,
		EndHour:      c.EndHour,
		Location:     loc,
	}, nil
}

// Weekday parses "friday", "Fri" or "5".
type Weekday time.Weekday

func (w *Weekday) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 6 {
			return fmt.Errorf("weekday number out of range: %d", n)
		}
		*w = Weekday(n)
		return nil
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			*w = Weekday(d)
			return nil
		}
	}
	return fmt.Errorf("unknown weekday %q", string(text))
}
