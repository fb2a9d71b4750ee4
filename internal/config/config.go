package config

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/prismanis/prismanis/internal/trace"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	TraceMode         string  `envconfig:"TRACE_MODE" default:"fresnel"`
	TraceMaxDepth     int     `envconfig:"TRACE_MAX_DEPTH" default:"50"`
	TraceMaxSegments  int     `envconfig:"TRACE_MAX_SEGMENTS" default:"5000"`
	TraceMinEnergy    float64 `envconfig:"TRACE_MIN_ENERGY" default:"0.0002"`
	TraceNudge        float64 `envconfig:"TRACE_NUDGE" default:"0.01"`
	TraceEscapeLength float64 `envconfig:"TRACE_ESCAPE_LENGTH" default:"5000"`

	ExportMaxSize int `envconfig:"EXPORT_MAX_SIZE" default:"4096"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TraceLimits returns the tracer limits described by the config.
func (c *Config) TraceLimits() trace.Limits {
	return trace.Limits{
		MaxDepth:     c.TraceMaxDepth,
		MaxSegments:  c.TraceMaxSegments,
		MinEnergy:    c.TraceMinEnergy,
		Nudge:        c.TraceNudge,
		EscapeLength: c.TraceEscapeLength,
	}
}

// Mode returns the configured transport mode.
func (c *Config) Mode() trace.Mode {
	return trace.ParseMode(c.TraceMode)
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Origins splits ALLOWED_ORIGINS into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the host part of each allowed origin, the form
// websocket origin patterns expect.
func (c *Config) OriginHosts() []string {
	var hosts []string
	for _, o := range c.Origins() {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		} else {
			hosts = append(hosts, o)
		}
	}
	return hosts
}
