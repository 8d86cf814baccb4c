// Package web parses dashboard command flags and launches the dashboard server.
package web

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/les-coureurs/internal/platform/cmd"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/services/web"
)

// Config holds the web command configuration.
type Config struct {
	entrypoint.LogConfig
	Addr       string `env:"LES_COUREURS_WEB_ADDR" envDefault:"localhost:8082"`
	HealthAddr string `env:"LES_COUREURS_HEALTH_ADDR"`
	// Probe checks HealthAddr and exits instead of serving.
	Probe bool `env:"-"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Addr, "http-addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or console")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check the health endpoint and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dashboard server, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	logging.Init(cfg.Logging())
	if cfg.Probe {
		return entrypoint.Probe(ctx, cfg.HealthAddr, entrypoint.ServiceWeb)
	}

	server, err := web.NewServer(web.Config{Addr: cfg.Addr})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWeb, func(ctx context.Context) error {
		return entrypoint.RunWithHealth(ctx, cfg.HealthAddr, entrypoint.ServiceWeb, func(ctx context.Context) error {
			if err := server.ListenAndServe(ctx); err != nil {
				return fmt.Errorf("serve web: %w", err)
			}
			return nil
		})
	})
}
