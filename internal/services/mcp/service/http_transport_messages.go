package service

import (
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// maxMessageBytes caps a single POSTed JSON-RPC message.
const maxMessageBytes = 1 << 20

// sessionErrorCode is the JSON-RPC server error used for session failures.
const sessionErrorCode = -32000

// handleMessages handles POST /mcp for JSON-RPC requests and notifications.
// initialize without a known session creates one; every other message must
// name a live session.
func (t *HTTPTransport) handleMessages(w http.ResponseWriter, r *http.Request) {
	if !t.admit(w, r) {
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		t.log.Warn().Err(err).Msg("read request body")
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}

	msg, err := jsonrpc.DecodeMessage(body)
	if err != nil {
		t.log.Debug().Err(err).Msg("invalid JSON-RPC message")
		http.Error(w, "Invalid JSON-RPC message", http.StatusBadRequest)
		return
	}

	var req *jsonrpc.Request
	switch v := msg.(type) {
	case *jsonrpc.Request:
		req = v
	case *jsonrpc.Response:
		http.Error(w, "Invalid message type: response", http.StatusBadRequest)
		return
	default:
		http.Error(w, "Invalid message type", http.StatusBadRequest)
		return
	}
	isRequest := req.ID != (jsonrpc.ID{})
	isInitialize := req.Method == "initialize"

	sessionID, session := t.sessionFromRequest(r)
	if session == nil {
		if !isInitialize {
			if sessionID != "" {
				writeSessionError(w, "Invalid session ID")
			} else {
				writeSessionError(w, "Invalid or missing session ID")
			}
			return
		}
		conn, err := t.Connect(r.Context())
		if err != nil {
			t.log.Error().Err(err).Msg("create session")
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}
		sessionID = conn.SessionID()
		session = t.lookupSession(sessionID)
		if session == nil {
			http.Error(w, "Failed to retrieve session after creation", http.StatusInternalServerError)
			return
		}

		w.Header().Set(sessionHeader, sessionID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	t.touch(sessionID)
	t.ensureServerRunning(session)
	t.log.Debug().Str("session", sessionID).Str("method", req.Method).Bool("request", isRequest).Msg("message received")

	if !isRequest {
		if !t.enqueue(w, r, session, msg) {
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respChan, err := session.conn.await(req.ID)
	if err != nil {
		writeSessionError(w, "Session closed")
		return
	}
	defer session.conn.forget(req.ID)

	if !t.enqueue(w, r, session, msg) {
		return
	}

	timer := time.NewTimer(defaultRequestTimeout)
	defer timer.Stop()

	select {
	case resp := <-respChan:
		data, err := jsonrpc.EncodeMessage(resp)
		if err != nil {
			t.log.Error().Err(err).Str("session", sessionID).Msg("encode response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(data); err != nil {
			t.log.Debug().Err(err).Str("session", sessionID).Msg("write response")
		}
	case <-session.conn.closed:
		writeSessionError(w, "Session closed")
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
	case <-timer.C:
		t.log.Warn().Str("session", sessionID).Str("method", req.Method).Msg("request timed out")
		http.Error(w, "Request timeout", http.StatusRequestTimeout)
	}
}

// enqueue hands msg to the session's server loop, writing the failure response itself.
func (t *HTTPTransport) enqueue(w http.ResponseWriter, r *http.Request, session *httpSession, msg jsonrpc.Message) bool {
	select {
	case session.conn.reqChan <- msg:
		return true
	case <-session.conn.closed:
		writeSessionError(w, "Session closed")
		return false
	case <-r.Context().Done():
		http.Error(w, "Request cancelled", http.StatusRequestTimeout)
		return false
	}
}

// handleDelete handles DELETE /mcp, ending the caller's session.
func (t *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !t.admit(w, r) {
		return
	}

	sessionID, session := t.sessionFromRequest(r)
	if session == nil {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}
	if !t.closeSession(sessionID, closeReasonDelete) {
		http.Error(w, "Unknown session", http.StatusNotFound)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (t *HTTPTransport) lookupSession(sessionID string) *httpSession {
	t.sessionsMu.RLock()
	defer t.sessionsMu.RUnlock()
	return t.sessions[sessionID]
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcErrorEnvelope struct {
	JSONRPC string       `json:"jsonrpc"`
	Error   rpcErrorBody `json:"error"`
	ID      any          `json:"id"`
}

func writeSessionError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	data, err := json.Marshal(rpcErrorEnvelope{
		JSONRPC: "2.0",
		Error:   rpcErrorBody{Code: sessionErrorCode, Message: message},
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"Session error"},"id":null}`))
		return
	}
	_, _ = w.Write(data)
}
