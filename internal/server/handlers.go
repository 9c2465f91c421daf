// ABOUTME: Request handlers for the calibration bridge
// ABOUTME: Applies threshold and extract requests to the shared session
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/alon/egloorator/internal/version"
	"github.com/alon/egloorator/pkg/audio/encode"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/protocol"
)

// handleClientMessage processes messages from clients
func (s *Server) handleClientMessage(client *Client, data []byte) {
	var msg protocol.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(client, protocol.ErrCodeBadRequest, fmt.Sprintf("malformed message: %v", err))
		return
	}

	slog.Debug("Client message", "client_id", client.ID, "type", msg.Type)

	switch msg.Type {
	case protocol.TypeThresholdSet:
		s.handleThresholdSet(client, msg)
	case protocol.TypeThresholdReset:
		s.handleThresholdReset()
	case protocol.TypeThresholdAuto:
		s.handleThresholdAuto(client)
	case protocol.TypeExtractRequest:
		s.handleExtractRequest(client, msg)
	default:
		s.sendError(client, protocol.ErrCodeUnknownType, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

// handleThresholdSet stores the requested threshold and broadcasts it
func (s *Server) handleThresholdSet(client *Client, msg protocol.Message) {
	var req protocol.ThresholdSet
	if err := protocol.DecodePayload(msg, &req); err != nil {
		s.sendError(client, protocol.ErrCodeBadRequest, err.Error())
		return
	}
	if req.Value == nil {
		s.sendError(client, protocol.ErrCodeBadRequest, "threshold/set requires a value")
		return
	}

	s.sessionMu.Lock()
	s.session.SetThreshold(*req.Value)
	s.broadcast(protocol.TypeSessionState, s.stateLocked())
	s.sessionMu.Unlock()

	slog.Info("Threshold set", "client_id", client.ID, "threshold", *req.Value)
	s.updateTUI()
}

// handleThresholdReset restores the midpoint threshold and broadcasts it
func (s *Server) handleThresholdReset() {
	s.sessionMu.Lock()
	threshold := s.session.ResetThreshold()
	s.broadcast(protocol.TypeSessionState, s.stateLocked())
	s.sessionMu.Unlock()

	slog.Info("Threshold reset", "threshold", threshold)
	s.updateTUI()
}

// handleThresholdAuto asks the session for an automatic threshold
func (s *Server) handleThresholdAuto(client *Client) {
	s.sessionMu.Lock()
	threshold, err := s.session.ComputeOptimalThreshold()
	if err == nil {
		s.session.SetThreshold(threshold)
		s.broadcast(protocol.TypeSessionState, s.stateLocked())
	}
	s.sessionMu.Unlock()

	switch {
	case errors.Is(err, calibrate.ErrNotImplemented):
		s.sendError(client, protocol.ErrCodeNotImplemented, "feature unavailable")
	case err != nil:
		s.sendError(client, protocol.ErrCodeBadRequest, err.Error())
	default:
		s.updateTUI()
	}
}

// handleExtractRequest saves the above-threshold audio and reports the file
func (s *Server) handleExtractRequest(client *Client, msg protocol.Message) {
	var req protocol.ExtractRequest
	if msg.Payload != nil {
		if err := protocol.DecodePayload(msg, &req); err != nil {
			s.sendError(client, protocol.ErrCodeBadRequest, err.Error())
			return
		}
	}

	s.sessionMu.Lock()
	samples, segments := s.session.ExtractAboveThreshold()
	threshold := s.session.Threshold()
	params := s.session.Params()
	s.sessionMu.Unlock()

	path, err := s.outputPath(req.Path, threshold)
	if err != nil {
		s.sendError(client, protocol.ErrCodeBadRequest, err.Error())
		return
	}

	if err := encode.SaveWAV(path, params, samples); err != nil {
		slog.Error("Extraction failed", "path", path, "error", err)
		s.sendError(client, protocol.ErrCodeExtractFailed, err.Error())
		return
	}

	slog.Info("Extraction saved", "client_id", client.ID, "path", path, "samples", len(samples), "segments", len(segments))

	result := protocol.ExtractResult{
		Path:     path,
		Samples:  len(samples),
		Segments: len(segments),
	}
	if err := s.sendMessage(client, protocol.TypeExtractResult, result); err != nil {
		slog.Warn("Error sending extract result", "client_id", client.ID, "error", err)
	}
}

// outputPath resolves a requested file name inside the output directory.
// Requests may name a file but not a directory.
func (s *Server) outputPath(requested string, threshold float64) (string, error) {
	name := requested
	if name == "" {
		name = calibrate.OutputName(s.config.Source, threshold)
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("path %q must be a plain file name", requested)
	}
	return filepath.Join(s.config.OutputDir, name), nil
}

// sendError reports a rejected request to one client
func (s *Server) sendError(client *Client, code, message string) {
	slog.Debug("Rejecting request", "client_id", client.ID, "error", code, "message", message)
	if err := s.sendMessage(client, protocol.TypeSessionError, protocol.SessionError{Error: code, Message: message}); err != nil {
		slog.Warn("Error sending error", "client_id", client.ID, "error", err)
	}
}

// helloLocked builds session/hello; callers hold sessionMu
func (s *Server) helloLocked(clientID string) protocol.SessionHello {
	return protocol.SessionHello{
		SessionID: s.sessionID,
		ClientID:  clientID,
		Server: protocol.ServerInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
		Source:     filepath.Base(s.config.Source),
		Params:     s.session.Params(),
		WindowSize: s.session.WindowSize(),
		Curve:      s.session.Curve().Points,
	}
}

// stateLocked builds session/state; callers hold sessionMu
func (s *Server) stateLocked() protocol.SessionState {
	low, high := s.session.Range()
	segments := s.session.Segments()
	params := s.session.Params()

	return protocol.SessionState{
		Threshold:       s.session.Threshold(),
		Min:             low,
		Max:             high,
		Segments:        segments,
		SelectedSamples: segments.TotalSamples(),
		SelectedSeconds: segments.Duration(params.FrameRate).Seconds(),
	}
}
