package service

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
)

const initializeBody = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"client","version":"v0.0.1"}}}`

// newHTTPTestServer serves the transport routes backed by a real MCP server.
// configure runs before the listener starts.
func newHTTPTestServer(t *testing.T, configure ...func(*HTTPTransport)) (*HTTPTransport, *httptest.Server) {
	t.Helper()

	server, err := newServer(testDeps())
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	transport := NewHTTPTransportWithServer("localhost:0", server.mcpServer)
	for _, fn := range configure {
		fn(transport)
	}
	ts := httptest.NewServer(transport.Handler())
	t.Cleanup(func() {
		transport.closeAllSessions(closeReasonShutdown)
		ts.Close()
		transport.serverCancel()
	})
	return transport, ts
}

func postRPC(t *testing.T, ts *httptest.Server, sessionID, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	return resp
}

// initializeSession performs the initialize handshake and returns the session id.
func initializeSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp := postRPC(t, ts, "", initializeBody)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("initialize status = %d body = %s", resp.StatusCode, body)
	}
	sessionID := resp.Header.Get(sessionHeader)
	if !strings.HasPrefix(sessionID, "session_") {
		t.Fatalf("session header = %q", sessionID)
	}

	var cookieFound bool
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value == sessionID && c.HttpOnly {
			cookieFound = true
		}
	}
	if !cookieFound {
		t.Error("expected session cookie on initialize")
	}

	var envelope struct {
		Result struct {
			ServerInfo struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode initialize: %v", err)
	}
	if envelope.Result.ServerInfo.Name != serverName {
		t.Errorf("server name = %q, want %q", envelope.Result.ServerInfo.Name, serverName)
	}

	notify := postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","method":"notifications/initialized","params":{}}`)
	notify.Body.Close()
	if notify.StatusCode != http.StatusNoContent {
		t.Fatalf("initialized notification status = %d", notify.StatusCode)
	}
	return sessionID
}

func TestHTTPTransportRoundTrip(t *testing.T) {
	_, ts := newHTTPTestServer(t)
	sessionID := initializeSession(t, ts)

	resp := postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_mission","arguments":{"id":"salt-barge"}}}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var envelope struct {
		ID     int `json:"id"`
		Result struct {
			IsError           bool `json:"isError"`
			StructuredContent struct {
				Mission struct {
					ID string `json:"id"`
				} `json:"mission"`
			} `json:"structuredContent"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.ID != 2 || envelope.Result.IsError || envelope.Result.StructuredContent.Mission.ID != "salt-barge" {
		t.Fatalf("envelope = %+v", envelope)
	}
}

func TestHTTPTransportUnknownMethod(t *testing.T) {
	_, ts := newHTTPTestServer(t)
	sessionID := initializeSession(t, ts)

	resp := postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":3,"method":"missions/launch","params":{}}`)
	defer resp.Body.Close()

	var envelope struct {
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error == nil || envelope.Error.Code != -32601 {
		t.Fatalf("expected method not found error, got %+v", envelope.Error)
	}
}

func TestHTTPTransportFollowUpRequestsSkipReadyWait(t *testing.T) {
	_, ts := newHTTPTestServer(t, func(tr *HTTPTransport) {
		tr.serverReadyTimeout = 30 * time.Second
	})
	sessionID := initializeSession(t, ts)

	for i := range 3 {
		start := time.Now()
		resp := postRPC(t, ts, sessionID, fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/list","params":{}}`, 10+i))
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Fatalf("request %d took %v on an established session", i, elapsed)
		}
	}
}

func TestHTTPTransportSessionErrors(t *testing.T) {
	_, ts := newHTTPTestServer(t)

	tests := []struct {
		name      string
		sessionID string
		body      string
		status    int
		message   string
	}{
		{name: "missing session", body: `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, status: http.StatusBadRequest, message: "Invalid or missing session ID"},
		{name: "unknown session", sessionID: "session_0000_1", body: `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, status: http.StatusBadRequest, message: "Invalid session ID"},
		{name: "client response", body: `{"jsonrpc":"2.0","id":1,"result":{}}`, status: http.StatusBadRequest},
		{name: "malformed", body: `{"jsonrpc":`, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRPC(t, ts, tt.sessionID, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.message == "" {
				return
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.message) || !strings.Contains(string(body), "-32000") {
				t.Fatalf("body = %s", body)
			}
		})
	}
}

func TestHTTPTransportDelete(t *testing.T) {
	transport, ts := newHTTPTestServer(t)
	sessionID := initializeSession(t, ts)
	before := testutil.ToFloat64(metrics.MCPSessionsClosed.WithLabelValues(closeReasonDelete))

	del := func() int {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/mcp", nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set(sessionHeader, sessionID)
		resp, err := ts.Client().Do(req)
		if err != nil {
			t.Fatalf("delete: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := del(); status != http.StatusNoContent {
		t.Fatalf("first delete status = %d, want 204", status)
	}
	if transport.lookupSession(sessionID) != nil {
		t.Fatal("session still registered after delete")
	}
	if got := testutil.ToFloat64(metrics.MCPSessionsClosed.WithLabelValues(closeReasonDelete)) - before; got != 1 {
		t.Fatalf("delete close counter delta = %v, want 1", got)
	}
	if status := del(); status != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", status)
	}

	resp := postRPC(t, ts, sessionID, `{"jsonrpc":"2.0","id":9,"method":"tools/list"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("post after delete status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTPTransportSSEDisconnectClosesSession(t *testing.T) {
	transport, ts := newHTTPTestServer(t)
	sessionID := initializeSession(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(sessionHeader, sessionID)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	// Server-initiated notifications arrive on the stream.
	session := transport.lookupSession(sessionID)
	if session == nil {
		t.Fatal("session missing while stream is open")
	}
	notification := `{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info","data":"hello"}}`
	msg, err := jsonrpc.DecodeMessage([]byte(notification))
	if err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if err := session.conn.Write(context.Background(), msg); err != nil {
		t.Fatalf("write notification: %v", err)
	}
	// List-changed notifications from registration may arrive first.
	awaitStreamEvent(t, resp.Body, "notifications/message")

	cancel()
	resp.Body.Close()

	deadline := time.Now().Add(2 * time.Second)
	for transport.lookupSession(sessionID) != nil {
		if time.Now().After(deadline) {
			t.Fatal("session not dropped after stream disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !session.conn.isClosed() {
		t.Fatal("connection not closed after stream disconnect")
	}
}

// awaitStreamEvent reads SSE data lines from body until one mentions method.
func awaitStreamEvent(t *testing.T, body io.Reader, method string) string {
	t.Helper()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		r := bufio.NewReader(body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-done:
				return
			}
		}
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream ended before %s", method)
			}
			if strings.HasPrefix(line, "data: ") && strings.Contains(line, method) {
				return line
			}
		case <-timeout:
			t.Fatalf("no %s on the stream", method)
		}
	}
}

func TestHTTPTransportSSEUnknownSession(t *testing.T) {
	_, ts := newHTTPTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/mcp", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set(sessionHeader, "nonexistent-session")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTPTransportRejectsForeignOrigin(t *testing.T) {
	_, ts := newHTTPTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/mcp", strings.NewReader(initializeBody))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Origin", "https://attacker.example")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHTTPTransportMetricsEndpoint(t *testing.T) {
	_, ts := newHTTPTestServer(t)
	_ = initializeSession(t, ts)

	resp, err := ts.Client().Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, name := range []string{"les_coureurs_mcp_sessions_open", "les_coureurs_mcp_method_calls_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics missing %s", name)
		}
	}
}

func TestSweepIdleSessions(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	current := start
	transport.now = func() time.Time { return current }

	stale, err := transport.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	current = start.Add(50 * time.Minute)
	fresh, err := transport.Connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	current = start.Add(61 * time.Minute)
	if n := transport.sweepIdleSessions(current); n != 1 {
		t.Fatalf("swept = %d, want 1", n)
	}
	if transport.lookupSession(stale.SessionID()) != nil {
		t.Error("stale session survived the sweep")
	}
	if transport.lookupSession(fresh.SessionID()) == nil {
		t.Error("fresh session was swept")
	}
	if transport.sessionCount() != 1 {
		t.Errorf("sessions = %d, want 1", transport.sessionCount())
	}

	transport.closeAllSessions(closeReasonShutdown)
	if transport.sessionCount() != 0 {
		t.Errorf("sessions after shutdown = %d, want 0", transport.sessionCount())
	}
}
