// Package config reads server settings from flags, falling back to environment
// variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

type Config struct {
	Addr           string
	AllowedOrigins string
	DataDir        string
	StrictRules    bool
	LogLevel       string
	RenderSize     int
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Load parses args (without the program name). Environment variables supply
// the defaults for flags that are not given.
func Load(args []string) (Config, error) {
	return load(args, os.Getenv)
}

func load(args []string, getenv func(string) string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	var cfg Config
	fs.StringVar(&cfg.Addr, "addr", envString(getenv, "CHESS_ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.AllowedOrigins, "origins", envString(getenv, "CHESS_ALLOWED_ORIGINS", "http://localhost:5173"), "comma-separated CORS origins")
	fs.StringVar(&cfg.DataDir, "data-dir", envString(getenv, "CHESS_DATA_DIR", ""), "badger directory for board snapshots (empty keeps them in memory)")
	fs.BoolVar(&cfg.StrictRules, "strict", envBool(getenv, "CHESS_STRICT_RULES", false), "require clear paths and refuse own-piece captures")
	fs.StringVar(&cfg.LogLevel, "log-level", envString(getenv, "CHESS_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.IntVar(&cfg.RenderSize, "render-size", envInt(getenv, "CHESS_RENDER_SIZE", 480), "default PNG edge length in pixels")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.RenderSize < 64 || c.RenderSize > 2048 {
		return fmt.Errorf("%w: render size %d outside [64, 2048]", ErrInvalidConfig, c.RenderSize)
	}
	return nil
}

var logLevels = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// Level maps LogLevel onto the fiber logger levels.
func (c Config) Level() log.Level {
	if lvl, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return lvl
	}
	return log.LevelInfo
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v := getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func envInt(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
