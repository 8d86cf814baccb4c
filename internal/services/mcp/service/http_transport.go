package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/louisbranch/les-coureurs/internal/platform/config"
	"github.com/louisbranch/les-coureurs/internal/platform/logging"
	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
	"github.com/louisbranch/les-coureurs/internal/platform/timeouts"
)

var listenTCP = net.Listen

// mcpHTTPEnv holds env-parsed configuration for MCP HTTP transport.
type mcpHTTPEnv struct {
	AllowedHosts []string `env:"LES_COUREURS_MCP_ALLOWED_HOSTS" envSeparator:","`
	RateLimit    float64  `env:"LES_COUREURS_MCP_RATE_LIMIT"`
	RateBurst    int      `env:"LES_COUREURS_MCP_RATE_BURST"`
}

const (
	// defaultHTTPAddr keeps the default footprint on loopback.
	defaultHTTPAddr = "localhost:8081"

	// defaultChannelBufferSize is the buffer size for request, response, and notification channels.
	defaultChannelBufferSize = 10

	// defaultRequestTimeout is the maximum time to wait for a JSON-RPC response.
	defaultRequestTimeout = timeouts.MCPRequest

	// defaultShutdownTimeout must outlast defaultRequestTimeout.
	defaultShutdownTimeout = timeouts.MCPShutdown

	// sessionCleanupInterval is how often idle sessions are swept.
	sessionCleanupInterval = 5 * time.Minute

	// sessionExpirationTime is how long a session can be inactive before being cleaned up.
	sessionExpirationTime = 1 * time.Hour

	// sseHeartbeatInterval is how often to update lastUsed for active SSE connections.
	sseHeartbeatInterval = 30 * time.Second

	// defaultSessionReadyTimeout bounds how long we wait for a session connection
	// to become ready before request handling continues.
	defaultSessionReadyTimeout = 100 * time.Millisecond

	sessionHeader = "Mcp-Session-Id"
	sessionCookie = "mcp_session"
)

// Session close reasons, reported to metrics and logs.
const (
	closeReasonDisconnect = "disconnect"
	closeReasonIdle       = "idle"
	closeReasonDelete     = "delete"
	closeReasonEnded      = "ended"
	closeReasonShutdown   = "shutdown"
)

// HTTPTransport implements mcp.Transport for HTTP-based MCP communication.
// POST /mcp carries JSON-RPC messages, GET /mcp streams server notifications
// over SSE and DELETE /mcp ends a session. Sessions live in memory only.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	server       *mcp.Server
	sessions     map[string]*httpSession
	sessionsMu   sync.RWMutex
	httpServer   *http.Server
	serverCtx    context.Context
	serverCancel context.CancelFunc
	serverOnceMu sync.Mutex
	serverOnce   map[string]*sync.Once
	rateLimiter  RequestRateLimiter
	log          zerolog.Logger

	serverReadyTimeout time.Duration
	randomReader       func([]byte) (int, error)
	readyAfter         func(time.Duration) <-chan time.Time
	now                func() time.Time
}

// applyConfig layers explicit command configuration over the env defaults.
func (t *HTTPTransport) applyConfig(cfg Config) {
	if t == nil {
		return
	}
	if len(cfg.AllowedHosts) > 0 {
		t.allowedHosts = parseAllowedHosts(cfg.AllowedHosts)
	}
	if cfg.RateLimit > 0 {
		t.rateLimiter = newTokenBucketLimiter(cfg.RateLimit, cfg.RateBurst)
	}
}

// httpSession maintains state for a single MCP session in memory.
type httpSession struct {
	id        string
	conn      *httpConnection
	createdAt time.Time
	lastUsed  time.Time
}

// NewHTTPTransport creates a new HTTP transport that will serve MCP over HTTP.
// It binds to loopback unless addr says otherwise.
func NewHTTPTransport(addr string) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	var raw mcpHTTPEnv
	log := logging.With("mcp-http")
	if err := config.ParseEnv(&raw); err != nil {
		log.Warn().Err(err).Msg("ignoring MCP HTTP env")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		addr:               addr,
		allowedHosts:       parseAllowedHosts(raw.AllowedHosts),
		sessions:           make(map[string]*httpSession),
		serverCtx:          ctx,
		serverCancel:       cancel,
		serverOnce:         make(map[string]*sync.Once),
		rateLimiter:        newTokenBucketLimiter(raw.RateLimit, raw.RateBurst),
		log:                log,
		serverReadyTimeout: defaultSessionReadyTimeout,
		randomReader:       rand.Read,
		readyAfter:         time.After,
		now:                time.Now,
	}
}

// NewHTTPTransportWithServer creates a new HTTP transport with a reference to the MCP server.
func NewHTTPTransportWithServer(addr string, server *mcp.Server) *HTTPTransport {
	transport := NewHTTPTransport(addr)
	transport.server = server
	return transport
}

// Handler returns the HTTP routes served by the transport.
func (t *HTTPTransport) Handler() http.Handler {
	mux := http.NewServeMux()

	// /mcp dispatches on method: GET streams, POST sends, DELETE closes.
	mux.Handle("/mcp", metrics.Instrument("mcp", "/mcp", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			t.handleSSE(w, r)
		case http.MethodPost:
			t.handleMessages(w, r)
		case http.MethodDelete:
			t.handleDelete(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/mcp/health", metrics.Instrument("mcp", "/mcp/health", http.HandlerFunc(t.handleHealth)))
	mux.Handle("/metrics", http.HandlerFunc(t.handleMetrics))
	return mux
}

// Start starts the HTTP server and blocks until ctx ends or the server fails.
func (t *HTTPTransport) Start(ctx context.Context) error {
	t.serverCtx, t.serverCancel = context.WithCancel(ctx)

	go t.cleanupSessions(ctx)

	t.httpServer = &http.Server{
		Addr:              t.addr,
		Handler:           t.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	t.log.Info().Str("addr", listener.Addr().String()).Msg("starting MCP HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := t.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		t.log.Info().Msg("shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		// SSE streams never finish on their own; closing sessions releases them.
		t.closeAllSessions(closeReasonShutdown)
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		if t.serverCancel != nil {
			t.serverCancel()
		}
		return nil
	case err := <-errChan:
		t.closeAllSessions(closeReasonShutdown)
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
