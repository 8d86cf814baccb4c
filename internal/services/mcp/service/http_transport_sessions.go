package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/les-coureurs/internal/platform/metrics"
)

// Connect implements mcp.Transport.Connect.
// Each call registers a fresh session whose connection waits for HTTP requests.
func (t *HTTPTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	sessionID := t.generateSessionID()
	conn := newHTTPConnection(sessionID, t.log)

	now := t.clock()
	session := &httpSession{
		id:        sessionID,
		conn:      conn,
		createdAt: now,
		lastUsed:  now,
	}

	t.sessionsMu.Lock()
	t.sessions[sessionID] = session
	t.sessionsMu.Unlock()

	metrics.MCPSessionsOpen.Inc()
	t.log.Info().Str("session", sessionID).Msg("session opened")
	return conn, nil
}

func (t *HTTPTransport) clock() time.Time {
	if t == nil || t.now == nil {
		return time.Now()
	}
	return t.now()
}

func (t *HTTPTransport) generateSessionID() string {
	randomReader := rand.Read
	if t != nil && t.randomReader != nil {
		randomReader = t.randomReader
	}
	return generateSessionIDWithRandomRead(randomReader)
}

// sessionFromRequest resolves the session named by the header, falling back to the cookie.
// The returned id is whatever the client sent, even when no session matches.
func (t *HTTPTransport) sessionFromRequest(r *http.Request) (string, *httpSession) {
	sessionID := strings.TrimSpace(r.Header.Get(sessionHeader))
	if sessionID == "" {
		if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		}
	}
	if sessionID == "" {
		return "", nil
	}
	t.sessionsMu.RLock()
	session := t.sessions[sessionID]
	t.sessionsMu.RUnlock()
	return sessionID, session
}

// touch records activity so the idle sweep leaves the session alone.
func (t *HTTPTransport) touch(sessionID string) {
	t.sessionsMu.Lock()
	if s, ok := t.sessions[sessionID]; ok && s != nil {
		s.lastUsed = t.clock()
	}
	t.sessionsMu.Unlock()
}

// closeSession drops a session from the registry and closes its connection.
// It reports false when the session was already gone.
func (t *HTTPTransport) closeSession(sessionID, reason string) bool {
	t.sessionsMu.Lock()
	session, ok := t.sessions[sessionID]
	if ok {
		delete(t.sessions, sessionID)
	}
	t.sessionsMu.Unlock()
	if !ok || session == nil {
		return false
	}

	t.serverOnceMu.Lock()
	delete(t.serverOnce, sessionID)
	t.serverOnceMu.Unlock()

	if err := session.conn.Close(); err != nil {
		t.log.Warn().Err(err).Str("session", sessionID).Msg("close session connection")
	}
	metrics.RecordSessionClosed(reason)
	t.log.Info().
		Str("session", sessionID).
		Str("reason", reason).
		Dur("age", t.clock().Sub(session.createdAt)).
		Msg("session closed")
	return true
}

// closeAllSessions closes every registered session.
func (t *HTTPTransport) closeAllSessions(reason string) {
	t.sessionsMu.RLock()
	ids := make([]string, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	t.sessionsMu.RUnlock()

	for _, id := range ids {
		t.closeSession(id, reason)
	}
}

// sessionCount reports how many sessions are registered.
func (t *HTTPTransport) sessionCount() int {
	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()
	return len(t.sessions)
}

func (t *HTTPTransport) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.sweepIdleSessions(t.clock()); n > 0 {
				t.log.Info().Int("count", n).Msg("swept idle sessions")
			}
		}
	}
}

// sweepIdleSessions closes sessions idle since before now minus the expiration window.
func (t *HTTPTransport) sweepIdleSessions(now time.Time) int {
	cutoff := now.Add(-sessionExpirationTime)

	t.sessionsMu.RLock()
	var expired []string
	for id, session := range t.sessions {
		if session.lastUsed.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	t.sessionsMu.RUnlock()

	closed := 0
	for _, id := range expired {
		if t.closeSession(id, closeReasonIdle) {
			closed++
		}
	}
	return closed
}

func (t *HTTPTransport) ensureServerRunning(session *httpSession) {
	if t.server == nil {
		return
	}

	// One server.Connect per session.
	t.serverOnceMu.Lock()
	once, exists := t.serverOnce[session.id]
	if !exists {
		once = &sync.Once{}
		t.serverOnce[session.id] = once
	}
	t.serverOnceMu.Unlock()

	sessionTransport := &sessionTransport{conn: session.conn}

	once.Do(func() {
		go func() {
			serverSession, err := t.server.Connect(t.serverCtx, sessionTransport, nil)
			if err != nil {
				t.log.Error().Err(err).Str("session", session.id).Msg("connect MCP server session")
				t.closeSession(session.id, closeReasonEnded)
				return
			}
			if err := serverSession.Wait(); err != nil && !session.conn.isClosed() {
				t.log.Warn().Err(err).Str("session", session.id).Msg("MCP server session ended")
			}
			t.closeSession(session.id, closeReasonEnded)
		}()
	})

	// Readiness normally arrives within a few milliseconds; if it does not,
	// the first queued message is still read once the server starts.
	select {
	case <-session.conn.ready:
	case <-t.readyAfterOrDefault()(t.serverReadyTimeoutOrDefault()):
	case <-t.serverCtx.Done():
	}
}

func (t *HTTPTransport) readyAfterOrDefault() func(time.Duration) <-chan time.Time {
	if t == nil || t.readyAfter == nil {
		return time.After
	}
	return t.readyAfter
}

func (t *HTTPTransport) serverReadyTimeoutOrDefault() time.Duration {
	if t == nil || t.serverReadyTimeout <= 0 {
		return defaultSessionReadyTimeout
	}
	return t.serverReadyTimeout
}

// sessionTransport is a transport that returns a specific connection.
type sessionTransport struct {
	conn mcp.Connection
}

// Connect implements mcp.Transport.Connect.
func (st *sessionTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	return st.conn, nil
}

var sessionCounter atomic.Uint64

func generateSessionIDWithRandomRead(randomRead func([]byte) (int, error)) string {
	b := make([]byte, 8)
	if randomRead == nil {
		randomRead = rand.Read
	}
	counter := sessionCounter.Add(1)
	if _, err := randomRead(b); err != nil {
		return fmt.Sprintf("session_%d_%d", time.Now().UnixNano(), counter)
	}
	return fmt.Sprintf("session_%s_%d", hex.EncodeToString(b), counter)
}
