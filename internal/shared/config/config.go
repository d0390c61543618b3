package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv      string
	LogLevel    string
	MetricsAddr string
	TraceStdout bool
	Runner      RunnerConfig
	Inspect     []string
}

// RunnerConfig selects the main execution strategy of the bus directory.
type RunnerConfig struct {
	Kind          string // sync, worker, deferred or pool
	PoolSize      int
	DeferredDelay time.Duration
}

// envBindings maps viper keys to environment variable names.
var envBindings = map[string]string{
	"app.env":                 "APP_ENV",
	"log.level":               "LOG_LEVEL",
	"metrics.addr":            "METRICS_ADDR",
	"trace.stdout":            "TRACE_STDOUT",
	"eventbus.runner":         "EVENTBUS_RUNNER",
	"eventbus.pool_size":      "EVENTBUS_POOL_SIZE",
	"eventbus.deferred_delay": "EVENTBUS_DEFERRED_DELAY",
	"eventbus.inspect":        "EVENTBUS_INSPECT",
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// 1. Load .env file into the process environment, if there is one.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// 2. Explicitly bind viper keys to env var names
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("could not bind %s: %w", key, err)
		}
	}

	// 3. Set defaults
	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("eventbus.runner", "worker")
	v.SetDefault("eventbus.pool_size", 4)
	v.SetDefault("eventbus.deferred_delay", 10*time.Millisecond)

	cfg := Config{
		AppEnv:      v.GetString("app.env"),
		LogLevel:    v.GetString("log.level"),
		MetricsAddr: v.GetString("metrics.addr"),
		TraceStdout: v.GetBool("trace.stdout"),
		Runner: RunnerConfig{
			Kind:          strings.ToLower(v.GetString("eventbus.runner")),
			PoolSize:      v.GetInt("eventbus.pool_size"),
			DeferredDelay: v.GetDuration("eventbus.deferred_delay"),
		},
		Inspect: splitList(v.GetString("eventbus.inspect")),
	}

	// 4. Validation
	if cfg.Runner.PoolSize < 1 {
		return nil, fmt.Errorf("EVENTBUS_POOL_SIZE must be positive, got %d", cfg.Runner.PoolSize)
	}
	if cfg.Runner.DeferredDelay < 0 {
		return nil, errors.New("EVENTBUS_DEFERRED_DELAY must not be negative")
	}

	return &cfg, nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
