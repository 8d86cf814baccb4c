// Package mcp parses MCP command flags and selects stdio or HTTP transport.
package mcp

import (
	"context"
	"flag"
	"strings"

	entrypoint "github.com/louisbranch/les-coureurs/internal/platform/cmd"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	entrypoint.LogConfig
	HTTPAddr    string `env:"LES_COUREURS_MCP_HTTP_ADDR" envDefault:"localhost:8081"`
	Transport   string `env:"LES_COUREURS_MCP_TRANSPORT" envDefault:"stdio"`
	CatalogFile string `env:"LES_COUREURS_CATALOG_FILE"`
	HealthAddr  string `env:"LES_COUREURS_HEALTH_ADDR"`
	// AllowedHosts, RateLimit and RateBurst guard the HTTP transport.
	AllowedHosts []string `env:"LES_COUREURS_MCP_ALLOWED_HOSTS" envSeparator:","`
	RateLimit    float64  `env:"LES_COUREURS_MCP_RATE_LIMIT"`
	RateBurst    int      `env:"LES_COUREURS_MCP_RATE_BURST"`
	// Probe checks HealthAddr and exits instead of serving.
	Probe bool `env:"-"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "TOML catalog file replacing the built-in datasets")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.Func("allowed-hosts", "Comma-separated hosts accepted besides loopback (HTTP transport)", func(v string) error {
		cfg.AllowedHosts = splitHosts(v)
		return nil
	})
	fs.Float64Var(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "Sustained HTTP requests per second (0 disables limiting)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", cfg.RateBurst, "HTTP request burst allowed by the rate limiter")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json or console")
	fs.BoolVar(&cfg.Probe, "probe", false, "Check the health endpoint and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server, or probes a running one when cfg.Probe is set.
func Run(ctx context.Context, cfg Config) error {
	logging.Init(cfg.Logging())
	if cfg.Probe {
		return entrypoint.Probe(ctx, cfg.HealthAddr, entrypoint.ServiceMCP)
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMCP, func(ctx context.Context) error {
		return entrypoint.RunWithHealth(ctx, cfg.HealthAddr, entrypoint.ServiceMCP, func(ctx context.Context) error {
			return service.Run(ctx, cfg.serviceConfig())
		})
	})
}

// serviceConfig maps command settings onto the MCP service.
func (cfg Config) serviceConfig() service.Config {
	return service.Config{
		Transport:    service.TransportKind(cfg.Transport),
		HTTPAddr:     cfg.HTTPAddr,
		CatalogFile:  cfg.CatalogFile,
		AllowedHosts: cfg.AllowedHosts,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	}
}

func splitHosts(v string) []string {
	var hosts []string
	for _, h := range strings.Split(v, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
