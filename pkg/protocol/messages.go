// ABOUTME: Calibration bridge message type definitions
// ABOUTME: Defines the envelope and payload structs for every message type
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/alon/egloorator/pkg/audio"
	"github.com/alon/egloorator/pkg/calibrate"
	"github.com/alon/egloorator/pkg/loudness"
)

// Path is the WebSocket endpoint served by the bridge
const Path = "/calibrate"

// Server to client message types
const (
	TypeSessionHello  = "session/hello"
	TypeSessionState  = "session/state"
	TypeSessionError  = "session/error"
	TypeExtractResult = "extract/result"
)

// Client to server message types
const (
	TypeThresholdSet   = "threshold/set"
	TypeThresholdReset = "threshold/reset"
	TypeThresholdAuto  = "threshold/auto"
	TypeExtractRequest = "extract/request"
)

// Error codes carried by session/error
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeUnknownType    = "unknown_type"
	ErrCodeNotImplemented = "not_implemented"
	ErrCodeExtractFailed  = "extract_failed"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// DecodePayload converts a received message payload into v
func DecodePayload(msg Message, v interface{}) error {
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return nil
}

// ServerInfo identifies the bridge software
type ServerInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// SessionHello is sent once to every client after it connects
type SessionHello struct {
	SessionID  string           `json:"session_id"`
	ClientID   string           `json:"client_id"`
	Server     ServerInfo       `json:"server"`
	Source     string           `json:"source"`
	Params     audio.Params     `json:"params"`
	WindowSize int              `json:"window_size"`
	Curve      []loudness.Point `json:"curve"`
}

// SessionState reports the threshold and the windows it selects
type SessionState struct {
	Threshold       float64             `json:"threshold"`
	Min             float64             `json:"min"`
	Max             float64             `json:"max"`
	Segments        []calibrate.Segment `json:"segments"`
	SelectedSamples int                 `json:"selected_samples"`
	SelectedSeconds float64             `json:"selected_seconds"`
}

// SessionError reports a rejected request
type SessionError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ThresholdSet asks the server to store a new threshold in dB
type ThresholdSet struct {
	Value *float64 `json:"value"`
}

// ExtractRequest asks the server to save the above-threshold audio.
// An empty Path saves to the server's default file name.
type ExtractRequest struct {
	Path string `json:"path,omitempty"`
}

// ExtractResult reports a completed extraction
type ExtractResult struct {
	Path     string `json:"path"`
	Samples  int    `json:"samples"`
	Segments int    `json:"segments"`
}
