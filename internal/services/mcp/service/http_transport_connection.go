package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/rs/zerolog"
)

var errConnectionClosed = errors.New("connection closed")

// sdkNotHandled prefixes the error the SDK returns for methods it has no
// handler for. It never reaches the receiving middleware.
const sdkNotHandled = "JSON RPC not handled"

// httpConnection implements mcp.Connection for HTTP-based communication.
// The SDK expects a bidirectional connection, so this adapter maps
// request/response flow and notification delivery onto separate buffered channels.
//
// Close only closes the closed channel; data channels stay open and every
// send selects on closed, so a late Write never panics.
type httpConnection struct {
	sessionID   string
	reqChan     chan jsonrpc.Message
	notifyChan  chan jsonrpc.Message // delivered over SSE
	closed      chan struct{}
	ready       chan struct{} // closed on the first Read
	readyOnce   sync.Once
	closeOnce   sync.Once
	pendingReqs map[jsonrpc.ID]chan jsonrpc.Message
	pendingMu   sync.Mutex
	log         zerolog.Logger
}

func newHTTPConnection(sessionID string, log zerolog.Logger) *httpConnection {
	return &httpConnection{
		sessionID:   sessionID,
		reqChan:     make(chan jsonrpc.Message, defaultChannelBufferSize),
		notifyChan:  make(chan jsonrpc.Message, defaultChannelBufferSize),
		closed:      make(chan struct{}),
		ready:       make(chan struct{}),
		pendingReqs: make(map[jsonrpc.ID]chan jsonrpc.Message),
		log:         log.With().Str("session", sessionID).Logger(),
	}
}

// Read implements mcp.Connection.Read.
func (c *httpConnection) Read(ctx context.Context) (jsonrpc.Message, error) {
	c.readyOnce.Do(func() { close(c.ready) })

	select {
	case msg := <-c.reqChan:
		return msg, nil
	case <-c.closed:
		return nil, errConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Write implements mcp.Connection.Write.
// Responses go to the waiting POST handler; everything else goes to SSE.
func (c *httpConnection) Write(ctx context.Context, msg jsonrpc.Message) error {
	select {
	case <-c.closed:
		return errConnectionClosed
	default:
	}

	if resp, ok := msg.(*jsonrpc.Response); ok {
		resp.Error = protocolError(resp.Error)
		if resp.ID != (jsonrpc.ID{}) {
			if respChan, exists := c.pending(resp.ID); exists {
				select {
				case respChan <- msg:
					return nil
				case <-c.closed:
					return errConnectionClosed
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			c.log.Debug().Msg("response without pending request, forwarding to stream")
		}
	}

	select {
	case c.notifyChan <- msg:
		return nil
	case <-c.closed:
		return errConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// protocolError gives unknown-method failures the JSON-RPC method not found
// code. Other errors pass through unchanged.
func protocolError(err error) error {
	if err == nil {
		return nil
	}
	var wire *jsonrpc.Error
	if errors.As(err, &wire) {
		return err
	}
	if msg := err.Error(); strings.HasPrefix(msg, sdkNotHandled) {
		return &jsonrpc.Error{
			Code:    jsonrpc.CodeMethodNotFound,
			Message: "method not found" + strings.TrimPrefix(msg, sdkNotHandled),
		}
	}
	return err
}

// Close implements mcp.Connection.Close. It is safe to call more than once.
func (c *httpConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.pendingMu.Lock()
		c.pendingReqs = nil
		c.pendingMu.Unlock()
	})
	return nil
}

// SessionID implements mcp.Connection.SessionID.
func (c *httpConnection) SessionID() string {
	return c.sessionID
}

// isClosed reports whether Close has been called.
func (c *httpConnection) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// await registers a response channel for id. It fails once the connection is closed.
func (c *httpConnection) await(id jsonrpc.ID) (chan jsonrpc.Message, error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if c.pendingReqs == nil {
		return nil, errConnectionClosed
	}
	respChan := make(chan jsonrpc.Message, 1)
	c.pendingReqs[id] = respChan
	return respChan, nil
}

func (c *httpConnection) forget(id jsonrpc.ID) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	delete(c.pendingReqs, id)
}

func (c *httpConnection) pending(id jsonrpc.ID) (chan jsonrpc.Message, bool) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	respChan, ok := c.pendingReqs[id]
	return respChan, ok
}
