// ABOUTME: Calibration bridge server
// ABOUTME: Manages WebSocket connections and shares one session between clients
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/alon/egloorator/internal/discovery"
	"github.com/alon/egloorator/internal/version"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/protocol"
)

const (
	sendBufferSize = 64
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
	shutdownGrace  = 5 * time.Second
)

// Config holds server configuration
type Config struct {
	Port       int
	Name       string
	Source     string // path of the recording, used for hello and default file names
	OutputDir  string
	EnableMDNS bool
	UseTUI     bool
}

// Server shares one calibration session with any number of WebSocket clients
type Server struct {
	config    Config
	sessionID string

	// Session access is serialised; Session itself is single-threaded
	session   *calibrate.Session
	sessionMu sync.Mutex

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// HTTP server
	httpServer *http.Server
	mux        *http.ServeMux

	// Client management
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// mDNS discovery
	mdnsManager *discovery.Manager

	// TUI
	tui *ServerTUI

	// Control
	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// Client represents a connected client
type Client struct {
	ID         string
	RemoteAddr string
	Conn       *websocket.Conn

	// Output channel for messages
	sendChan chan protocol.Message
}

// New creates a bridge for session
func New(config Config, session *calibrate.Session) *Server {
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.Name == "" {
		config.Name = version.Product
	}

	s := &Server{
		config:    config,
		sessionID: uuid.New().String(),
		session:   session,
		mux:       http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Browser front-ends are served from anywhere on the local network
				if origin := r.Header.Get("Origin"); origin != "" {
					slog.Debug("Accepting WebSocket origin", "origin", origin)
				}
				return true
			},
		},
		clients:  make(map[string]*Client),
		stopChan: make(chan struct{}),
	}

	s.mux.HandleFunc(protocol.Path, s.handleWebSocket)

	return s
}

// Handler returns the HTTP handler serving the bridge endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// SessionID returns the identifier sent in session/hello
func (s *Server) SessionID() string {
	return s.sessionID
}

// Start serves until Stop is called, the TUI quits, or the listener fails
func (s *Server) Start() error {
	if s.config.UseTUI {
		s.tui = NewServerTUI(s.status())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.tui.Start(); err != nil {
				slog.Error("TUI failed", "error", err)
			}
		}()
	}

	slog.Info("Bridge starting", "name", s.config.Name, "session_id", s.sessionID, "source", s.config.Source)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Path:        protocol.Path,
			Source:      filepath.Base(s.config.Source),
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			slog.Warn("Failed to start mDNS advertisement", "error", err)
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	slog.Info("WebSocket server listening", "addr", addr, "path", protocol.Path)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serverErr error
	var tuiQuitChan <-chan struct{}
	if s.tui != nil {
		tuiQuitChan = s.tui.QuitChan()
	}

	select {
	case <-s.stopChan:
		slog.Info("Bridge shutting down")
	case <-tuiQuitChan:
		slog.Info("TUI quit requested, shutting down")
	case err := <-errChan:
		slog.Error("HTTP server error", "error", err)
		serverErr = err
	}

	s.shutdown()

	if s.tui != nil {
		s.tui.Stop()
	}

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	s.wg.Wait()
	slog.Info("Bridge stopped cleanly")

	if serverErr != nil {
		return fmt.Errorf("HTTP server failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// shutdown rejects new connections and closes the current ones
func (s *Server) shutdown() {
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Conn.Close()
	}
	s.clientsMu.RUnlock()
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	closing := s.isShutdown
	s.shutdownMu.RUnlock()
	if closing {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade error", "error", err)
		return
	}

	slog.Info("New WebSocket connection", "remote", r.RemoteAddr)

	s.handleConnection(conn, r.RemoteAddr)
}

// handleConnection greets a client and serves its requests until it leaves
func (s *Server) handleConnection(conn *websocket.Conn, remoteAddr string) {
	defer conn.Close()

	client := &Client{
		ID:         uuid.New().String(),
		RemoteAddr: remoteAddr,
		Conn:       conn,
		sendChan:   make(chan protocol.Message, sendBufferSize),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(client)
	}()

	// hello and the first state are queued before any broadcast can reach
	// the client
	s.sessionMu.Lock()
	s.clientsMu.Lock()
	s.clients[client.ID] = client
	s.clientsMu.Unlock()
	err := s.sendMessage(client, protocol.TypeSessionHello, s.helloLocked(client.ID))
	if err == nil {
		err = s.sendMessage(client, protocol.TypeSessionState, s.stateLocked())
	}
	s.sessionMu.Unlock()
	s.updateTUI()

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client.ID)
		close(client.sendChan)
		s.clientsMu.Unlock()
		slog.Info("Client disconnected", "client_id", client.ID)
		s.updateTUI()
	}()

	if err != nil {
		slog.Warn("Error greeting client", "client_id", client.ID, "error", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("WebSocket read error", "client_id", client.ID, "error", err)
			}
			return
		}

		s.handleClientMessage(client, data)
	}
}

// clientWriter sends queued messages to the client
func (s *Server) clientWriter(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.sendChan:
			if !ok {
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				slog.Error("Error marshaling message", "type", msg.Type, "error", err)
				continue
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := client.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("Error writing message", "client_id", client.ID, "error", err)
				client.Conn.Close()
				return
			}

		case <-ticker.C:
			if err := client.Conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				return
			}
		}
	}
}

// sendMessage queues a JSON message for one client
func (s *Server) sendMessage(client *Client, msgType string, payload interface{}) error {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if _, ok := s.clients[client.ID]; !ok {
		return fmt.Errorf("client %s is gone", client.ID)
	}

	select {
	case client.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// broadcast queues a JSON message for every connected client
func (s *Server) broadcast(msgType string, payload interface{}) {
	msg := protocol.Message{
		Type:    msgType,
		Payload: payload,
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, client := range s.clients {
		select {
		case client.sendChan <- msg:
		default:
			slog.Warn("Client send buffer full, dropping message", "client_id", client.ID, "type", msgType)
		}
	}
}

// ClientCount returns the number of connected clients
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
