package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/les-coureurs/internal/catalog"
	"github.com/louisbranch/les-coureurs/internal/platform/branding"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
	"github.com/louisbranch/les-coureurs/internal/services/mcp/domain"
	"github.com/louisbranch/les-coureurs/internal/services/web"
	"github.com/louisbranch/les-coureurs/internal/services/web/dashboard"
)

const (
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"

	tracerName = "github.com/louisbranch/les-coureurs/internal/services/mcp/service"
)

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

var errToolResult = errors.New("tool returned an error result")

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over HTTP/SSE for browser or remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	HTTPAddr  string // defaults to localhost:8081 for HTTP transport
	// CatalogFile optionally replaces the built-in datasets with a TOML file.
	CatalogFile string
	// AllowedHosts extends the loopback-only Host/Origin guard.
	AllowedHosts []string
	// RateLimit is the sustained request rate per second; zero disables limiting.
	RateLimit float64
	RateBurst int
	// RenderWidget overrides the dashboard markup served as the widget resource.
	RenderWidget domain.WidgetRenderer
}

// serverDeps are the read-only inputs the tool and resource handlers close over.
type serverDeps struct {
	catalog *catalog.Catalog
	content dashboard.Content
	widget  catalog.Widget
	render  domain.WidgetRenderer
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	deps      serverDeps
}

// New creates a configured MCP server backed by the mission catalog.
func New(cfg Config) (*Server, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	render := cfg.RenderWidget
	if render == nil {
		render = web.RenderWidget
	}
	return newServer(serverDeps{
		catalog: cat,
		content: dashboard.DefaultContent(),
		widget:  catalog.DashboardWidget,
		render:  render,
	})
}

// newServer creates MCP tool/resource handler bindings once.
func newServer(deps serverDeps) (*Server, error) {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})
	mcpServer.AddReceivingMiddleware(observeMethods)

	server := &Server{mcpServer: mcpServer, deps: deps}
	modules := newMCPRegistrationModules(deps)
	if err := checkModuleNames(modules); err != nil {
		return nil, err
	}
	for _, module := range modules {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return server, nil
}

// observeMethods traces, counts and logs every inbound MCP method.
func observeMethods(next mcp.MethodHandler) mcp.MethodHandler {
	tracer := otel.Tracer(tracerName)
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		tool := toolName(req)
		attrs := []attribute.KeyValue{attribute.String("mcp.method", method)}
		if tool != "" {
			attrs = append(attrs, attribute.String("mcp.tool", tool))
		}
		ctx, span := tracer.Start(ctx, "mcp "+method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		start := time.Now()
		result, err := next(ctx, method, req)
		elapsed := time.Since(start)

		outcome := err
		if res, ok := result.(*mcp.CallToolResult); ok && res != nil && res.IsError && outcome == nil {
			outcome = errToolResult
		}
		metrics.RecordMCPCall(method, tool, outcome, elapsed)

		log := logging.With("mcp")
		if outcome != nil {
			span.RecordError(outcome)
			span.SetStatus(codes.Error, outcome.Error())
			log.Warn().Err(outcome).Str("method", method).Str("tool", tool).Dur("elapsed", elapsed).Msg("mcp method failed")
		} else {
			log.Debug().Str("method", method).Str("tool", tool).Dur("elapsed", elapsed).Msg("mcp method handled")
		}
		return result, err
	}
}

func toolName(req mcp.Request) string {
	call, ok := req.(*mcp.CallToolRequest)
	if !ok || call == nil || call.Params == nil {
		return ""
	}
	return call.Params.Name
}

// completionHandler handles completion/complete requests with empty results.
// No tool argument or resource template offers completions yet.
func completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run is the service entrypoint for MCP and blocks until context cancellation.
// Stdio serves local tools; HTTP serves browser and remote integrations.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithHTTPTransport creates a server and serves it over HTTP transport.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}

	httpTransport := NewHTTPTransportWithServer(cfg.HTTPAddr, server.mcpServer)
	httpTransport.applyConfig(cfg)
	return httpTransport.Start(ctx)
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, cfg Config, transport mcp.Transport) error {
	server, err := New(cfg)
	if err != nil {
		return err
	}
	return server.serveWithTransport(ctx, transport)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
