// Package cmd holds the startup plumbing shared by the service binaries.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/louisbranch/les-coureurs/internal/platform/config"
	platformgrpc "github.com/louisbranch/les-coureurs/internal/platform/grpc"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/platform/otel"
	"github.com/louisbranch/les-coureurs/internal/platform/timeouts"
)

// Service identifiers used for telemetry resource names and log fields.
const (
	ServiceMCP = "mcp"
	ServiceWeb = "web"
)

// LogConfig is embedded by command configs so logging follows the same env.
type LogConfig struct {
	LogLevel  string `env:"LES_COUREURS_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LES_COUREURS_LOG_FORMAT" envDefault:"json"`
}

// Logging converts the embedded settings into a logging config.
func (c LogConfig) Logging() logging.Config {
	return logging.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// ParseConfigFromArgs loads defaults from env and then parses flags.
func ParseConfigFromArgs[T any](cfg *T, fs *flag.FlagSet, args []string) error {
	if err := ParseConfig(cfg); err != nil {
		return err
	}
	return ParseArgs(fs, args)
}

// RunWithTelemetry configures tracing, runs the service and flushes spans on exit.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Str("service", service).Msg("otel shutdown")
		}
	}()
	return run(ctx)
}

// RunWithHealth runs the service next to an optional gRPC health endpoint.
// An empty addr runs the service alone. The endpoint reports SERVING while
// run is active and stops when it returns.
func RunWithHealth(ctx context.Context, addr, service string, run func(context.Context) error) error {
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return run(ctx)
	}

	hs, err := platformgrpc.NewHealthServer(addr, service)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	healthErr := make(chan error, 1)
	go func() {
		healthErr <- hs.Serve(ctx)
	}()
	hs.MarkServing()

	runErr := run(ctx)
	cancel()
	if err := <-healthErr; err != nil && runErr == nil {
		return err
	}
	return runErr
}

// Probe checks the health endpoint at addr and reports whether service is
// SERVING. Binaries call it for their -probe flag.
func Probe(ctx context.Context, addr, service string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("health address is required to probe")
	}
	return platformgrpc.Probe(ctx, addr, service, timeouts.HealthProbe)
}
