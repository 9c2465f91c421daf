// ABOUTME: WebSocket client for the calibration bridge
// ABOUTME: Handles connection, handshake, and message routing
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// HandshakeTimeout bounds the wait for session/hello
const HandshakeTimeout = 5 * time.Second

// Config holds client configuration
type Config struct {
	ServerAddr string
}

// Client represents a WebSocket client
type Client struct {
	config Config
	conn   *websocket.Conn
	mu     sync.RWMutex

	// Hello is filled by the handshake
	Hello SessionHello

	// Message channels
	States  chan SessionState
	Results chan ExtractResult
	Errors  chan SessionError

	// State
	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a new WebSocket client
func NewClient(config Config) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config:  config,
		States:  make(chan SessionState, 10),
		Results: make(chan ExtractResult, 10),
		Errors:  make(chan SessionError, 10),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect establishes WebSocket connection and performs handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: Path}
	slog.Debug("Connecting to bridge", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

// handshake waits for session/hello
func (c *Client) handshake() error {
	c.conn.SetReadDeadline(time.Now().Add(HandshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	var msg Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("failed to read %s: %w", TypeSessionHello, err)
	}

	if msg.Type != TypeSessionHello {
		return fmt.Errorf("expected %s, got %s", TypeSessionHello, msg.Type)
	}

	if err := DecodePayload(msg, &c.Hello); err != nil {
		return err
	}

	slog.Debug("Handshake complete", "session_id", c.Hello.SessionID, "source", c.Hello.Source)
	return nil
}

// sendJSON sends a JSON message
func (c *Client) sendJSON(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	return c.conn.WriteJSON(msg)
}

// readMessages reads and routes incoming messages
func (c *Client) readMessages() {
	defer c.Close()

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.ctx.Done():
			default:
				slog.Debug("Read error", "error", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			slog.Warn("Unexpected WebSocket message type", "type", messageType)
			continue
		}
		c.handleJSONMessage(data)
	}
}

// handleJSONMessage routes JSON messages to their channels
func (c *Client) handleJSONMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("Failed to parse JSON message", "error", err)
		return
	}

	switch msg.Type {
	case TypeSessionState:
		var state SessionState
		if err := DecodePayload(msg, &state); err != nil {
			slog.Warn("Dropping message", "error", err)
			return
		}
		deliver(c.ctx, c.States, state)

	case TypeExtractResult:
		var result ExtractResult
		if err := DecodePayload(msg, &result); err != nil {
			slog.Warn("Dropping message", "error", err)
			return
		}
		deliver(c.ctx, c.Results, result)

	case TypeSessionError:
		var serr SessionError
		if err := DecodePayload(msg, &serr); err != nil {
			slog.Warn("Dropping message", "error", err)
			return
		}
		deliver(c.ctx, c.Errors, serr)

	default:
		slog.Debug("Unknown message type", "type", msg.Type)
	}
}

// deliver hands v to ch unless the client is closing or the reader is stalled
func deliver[T any](ctx context.Context, ch chan T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		slog.Warn("Client channel full, dropping message")
	}
}

// SetThreshold sends threshold/set
func (c *Client) SetThreshold(value float64) error {
	return c.sendJSON(Message{Type: TypeThresholdSet, Payload: ThresholdSet{Value: &value}})
}

// ResetThreshold sends threshold/reset
func (c *Client) ResetThreshold() error {
	return c.sendJSON(Message{Type: TypeThresholdReset})
}

// AutoThreshold sends threshold/auto
func (c *Client) AutoThreshold() error {
	return c.sendJSON(Message{Type: TypeThresholdAuto})
}

// RequestExtract sends extract/request; an empty path uses the server default
func (c *Client) RequestExtract(path string) error {
	return c.sendJSON(Message{Type: TypeExtractRequest, Payload: ExtractRequest{Path: path}})
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		slog.Debug("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
