package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data/shapes"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Editor
	CanvasWidth      int           `envconfig:"CANVAS_WIDTH" default:"800"`
	CanvasHeight     int           `envconfig:"CANVAS_HEIGHT" default:"600"`
	QuadtreeMaxItems int           `envconfig:"QUADTREE_MAX_ITEMS" default:"10"`
	QuadtreeMaxDepth int           `envconfig:"QUADTREE_MAX_DEPTH" default:"8"`
	DragThrottle     time.Duration `envconfig:"DRAG_THROTTLE" default:"16ms"`
	AutosaveInterval time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginPatterns returns the origins without scheme, as websocket.Accept expects.
func (c *Config) OriginPatterns() []string {
	origins := c.Origins()
	for i, o := range origins {
		if _, host, ok := strings.Cut(o, "://"); ok {
			origins[i] = host
		}
	}
	return origins
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
