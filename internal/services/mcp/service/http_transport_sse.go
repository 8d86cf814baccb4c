package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// handleSSE handles GET /mcp, streaming server notifications for one session.
// The stream owns the session: when the client goes away the session is
// closed and dropped from the registry.
func (t *HTTPTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	if !t.admit(w, r) {
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID, session := t.sessionFromRequest(r)
	if session == nil {
		http.Error(w, "Invalid or missing session ID", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	ctx := r.Context()
	t.touch(sessionID)
	t.log.Debug().Str("session", sessionID).Msg("stream attached")

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if t.closeSession(sessionID, closeReasonDisconnect) {
				t.log.Info().Str("session", sessionID).Msg("stream client disconnected")
			}
			return
		case <-session.conn.closed:
			return
		case <-ticker.C:
			t.touch(sessionID)
		case msg := <-session.conn.notifyChan:
			t.touch(sessionID)

			data, err := jsonrpc.EncodeMessage(msg)
			if err != nil {
				t.log.Error().Err(err).Str("session", sessionID).Msg("encode stream message")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				t.log.Warn().Err(err).Str("session", sessionID).Msg("write stream message")
				t.closeSession(sessionID, closeReasonDisconnect)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
