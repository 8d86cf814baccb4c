package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
)

func setLocalhostHeaders(req *http.Request) {
	req.Host = "localhost:8081"
	req.Header.Set("Origin", "http://localhost:8081")
}

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{" localhost ", true},
		{"example.com", false},
		{"127.0.0.2", false},
		{"", false},
		{"local", false},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := isLoopbackHost(tt.host); got != tt.want {
				t.Errorf("isLoopbackHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOk bool
	}{
		{"localhost:8081", "localhost", true},
		{"example.com:443", "example.com", true},
		{"[::1]:8081", "::1", true},
		{"[::1]", "::1", true},
		{"::1", "::1", true},
		{"example.com", "example.com", true},
		{"", "", false},
		{"  ", "", false},
		{"[::1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := normalizeHost(tt.input)
			if ok != tt.wantOk {
				t.Errorf("normalizeHost(%q) ok = %v, want %v", tt.input, ok, tt.wantOk)
			}
			if got != tt.want {
				t.Errorf("normalizeHost(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteSessionError(t *testing.T) {
	w := httptest.NewRecorder()
	writeSessionError(w, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["jsonrpc"] != "2.0" {
		t.Errorf("expected jsonrpc 2.0, got %v", body["jsonrpc"])
	}
	if id, ok := body["id"]; !ok || id != nil {
		t.Errorf("expected null id, got %v", body["id"])
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["message"] != "test error" {
		t.Errorf("expected message %q, got %v", "test error", errObj["message"])
	}
	if code, _ := errObj["code"].(float64); code != sessionErrorCode {
		t.Errorf("expected code %d, got %v", sessionErrorCode, errObj["code"])
	}
}

func TestIsAllowedHostHeader(t *testing.T) {
	t.Run("loopback always allowed", func(t *testing.T) {
		transport := NewHTTPTransport("localhost:8081")
		if !transport.isAllowedHostHeader("localhost:8081") {
			t.Error("expected localhost to be allowed")
		}
		if !transport.isAllowedHostHeader("[::1]:8081") {
			t.Error("expected [::1] to be allowed")
		}
	})

	t.Run("remote rejected by default", func(t *testing.T) {
		transport := NewHTTPTransport("localhost:8081")
		if transport.isAllowedHostHeader("coureurs.example:8081") {
			t.Error("expected remote host to be rejected")
		}
	})

	t.Run("configured host allowed", func(t *testing.T) {
		transport := NewHTTPTransport("localhost:8081")
		transport.applyConfig(Config{AllowedHosts: []string{" Coureurs.Example ", ""}})
		if !transport.isAllowedHostHeader("coureurs.example:8081") {
			t.Error("expected configured host to be allowed")
		}
	})

	t.Run("env host allowed", func(t *testing.T) {
		t.Setenv("LES_COUREURS_MCP_ALLOWED_HOSTS", "relay.example,depot.example")
		transport := NewHTTPTransport("localhost:8081")
		if !transport.isAllowedHostHeader("depot.example") {
			t.Error("expected env host to be allowed")
		}
	})
}

func TestValidateLocalRequest(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		origin  string
		wantErr string
	}{
		{name: "loopback without origin", host: "localhost:8081"},
		{name: "loopback origin", host: "127.0.0.1:8081", origin: "http://localhost:3000"},
		{name: "remote host", host: "evil.example", wantErr: "invalid host"},
		{name: "rebound origin", host: "localhost:8081", origin: "http://evil.example", wantErr: "invalid origin"},
		{name: "origin without host", host: "localhost:8081", origin: "null", wantErr: "invalid origin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := NewHTTPTransport("localhost:8081")
			req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			err := transport.validateLocalRequest(req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestTokenBucketLimiter(t *testing.T) {
	if newTokenBucketLimiter(0, 5) != nil {
		t.Fatal("expected zero rate to disable limiting")
	}

	limiter := newTokenBucketLimiter(0.001, 2)
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	for i := 0; i < 2; i++ {
		if err := limiter.Allow(req); err != nil {
			t.Fatalf("request %d rejected: %v", i, err)
		}
	}
	if err := limiter.Allow(req); !errors.Is(err, errRateLimited) {
		t.Fatalf("err = %v, want rate limited", err)
	}
}

func TestAdmitRespectsRateLimiter(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	transport.applyConfig(Config{RateLimit: 0.001, RateBurst: 1})
	before := testutil.ToFloat64(metrics.MCPRateLimited)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
	setLocalhostHeaders(req)
	transport.handleHealth(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	transport.handleHealth(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if got := testutil.ToFloat64(metrics.MCPRateLimited) - before; got != 1 {
		t.Fatalf("rate limited counter delta = %v, want 1", got)
	}
}

func TestHandleHealth(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")

	t.Run("GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
		setLocalhostHeaders(req)
		w := httptest.NewRecorder()
		transport.handleHealth(w, req)
		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Fatalf("status = %d body = %q", w.Code, w.Body.String())
		}
	})

	t.Run("POST", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp/health", nil)
		setLocalhostHeaders(req)
		w := httptest.NewRecorder()
		transport.handleHealth(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", w.Code)
		}
	})

	t.Run("remote host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/mcp/health", nil)
		w := httptest.NewRecorder()
		transport.handleHealth(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestHTTPConnectionWriteResponseRouting(t *testing.T) {
	ctx := context.Background()
	conn := newHTTPConnection("test_session", zerolog.Nop())

	reqID, err := jsonrpc.MakeID("req-1")
	if err != nil {
		t.Fatalf("MakeID: %v", err)
	}
	respChan, err := conn.await(reqID)
	if err != nil {
		t.Fatalf("await: %v", err)
	}

	if err := conn.Write(ctx, &jsonrpc.Response{ID: reqID}); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	select {
	case msg := <-respChan:
		if msg == nil {
			t.Error("expected non-nil message")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for response on pending channel")
	}
	if len(conn.notifyChan) != 0 {
		t.Fatal("response leaked onto the notification channel")
	}
}

func TestHTTPConnectionWriteNotification(t *testing.T) {
	conn := newHTTPConnection("test_session", zerolog.Nop())

	notification := &jsonrpc.Request{Method: "notifications/resources/updated"}
	if err := conn.Write(context.Background(), notification); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	select {
	case msg := <-conn.notifyChan:
		if msg == nil {
			t.Error("expected non-nil message")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestHTTPConnectionClose(t *testing.T) {
	conn := newHTTPConnection("test_session", zerolog.Nop())

	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if !conn.isClosed() {
		t.Fatal("expected connection to report closed")
	}

	if _, err := conn.Read(context.Background()); !errors.Is(err, errConnectionClosed) {
		t.Fatalf("Read() err = %v, want connection closed", err)
	}
	if err := conn.Write(context.Background(), &jsonrpc.Request{Method: "ping"}); !errors.Is(err, errConnectionClosed) {
		t.Fatalf("Write() err = %v, want connection closed", err)
	}
	reqID, _ := jsonrpc.MakeID(float64(7))
	if _, err := conn.await(reqID); !errors.Is(err, errConnectionClosed) {
		t.Fatalf("await() err = %v, want connection closed", err)
	}
}

func TestHTTPConnectionReadyStaysObservable(t *testing.T) {
	conn := newHTTPConnection("test_session", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := conn.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Read() err = %v", err)
	}

	for i := range 3 {
		select {
		case <-conn.ready:
		case <-time.After(time.Second):
			t.Fatalf("wait %d blocked after the first read", i)
		}
	}
}

func TestProtocolError(t *testing.T) {
	wire := &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: "bad params"}
	plain := errors.New("boom")
	notHandled := fmt.Errorf("%w: %q unsupported", errors.New(sdkNotHandled), "missions/launch")

	tests := []struct {
		name     string
		err      error
		wantCode int64
		wantSame bool
		wantMsg  string
	}{
		{name: "wire error kept", err: wire, wantCode: jsonrpc.CodeInvalidParams, wantSame: true},
		{name: "plain error kept", err: plain, wantSame: true},
		{name: "unknown method", err: notHandled, wantCode: jsonrpc.CodeMethodNotFound, wantMsg: `method not found: "missions/launch" unsupported`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := protocolError(tt.err)
			if tt.wantSame {
				if got != tt.err {
					t.Fatalf("protocolError() = %v, want unchanged", got)
				}
				return
			}
			var rpcErr *jsonrpc.Error
			if !errors.As(got, &rpcErr) {
				t.Fatalf("protocolError() = %T, want *jsonrpc.Error", got)
			}
			if rpcErr.Code != tt.wantCode || rpcErr.Message != tt.wantMsg {
				t.Fatalf("protocolError() = {%d %q}", rpcErr.Code, rpcErr.Message)
			}
		})
	}
	if protocolError(nil) != nil {
		t.Fatal("protocolError(nil) should be nil")
	}
}

func TestHTTPConnectionReadContextCancelled(t *testing.T) {
	conn := newHTTPConnection("test_session", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := conn.Read(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestGenerateSessionID(t *testing.T) {
	first := generateSessionIDWithRandomRead(func(b []byte) (int, error) {
		for i := range b {
			b[i] = 0xab
		}
		return len(b), nil
	})
	if !strings.HasPrefix(first, "session_abababababababab_") {
		t.Fatalf("id = %q", first)
	}

	fallback := generateSessionIDWithRandomRead(func([]byte) (int, error) {
		return 0, errors.New("no entropy")
	})
	if !strings.HasPrefix(fallback, "session_") || fallback == first {
		t.Fatalf("fallback id = %q", fallback)
	}
}

func TestCompletionHandler(t *testing.T) {
	res, err := completionHandler(context.Background(), nil)
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if res == nil || res.Completion.Values == nil || len(res.Completion.Values) != 0 {
		t.Fatalf("completion = %+v", res)
	}
}

func TestResourceSubscribeHandlers(t *testing.T) {
	if err := resourceSubscribeHandler(context.Background(), nil); err == nil {
		t.Error("expected subscribe error for nil request")
	}
	if err := resourceSubscribeHandler(context.Background(), &mcp.SubscribeRequest{Params: &mcp.SubscribeParams{URI: " "}}); err == nil {
		t.Error("expected subscribe error for blank uri")
	}
	if err := resourceSubscribeHandler(context.Background(), &mcp.SubscribeRequest{Params: &mcp.SubscribeParams{URI: "les-coureurs://missions"}}); err != nil {
		t.Errorf("subscribe: %v", err)
	}
	if err := resourceUnsubscribeHandler(context.Background(), &mcp.UnsubscribeRequest{Params: &mcp.UnsubscribeParams{}}); err == nil {
		t.Error("expected unsubscribe error for empty uri")
	}
	if err := resourceUnsubscribeHandler(context.Background(), &mcp.UnsubscribeRequest{Params: &mcp.UnsubscribeParams{URI: "les-coureurs://missions"}}); err != nil {
		t.Errorf("unsubscribe: %v", err)
	}
}
