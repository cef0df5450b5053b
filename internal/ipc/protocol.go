package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandSaveState    CommandType = "SAVE_STATE"
	CommandRestoreState CommandType = "RESTORE_STATE"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetMonitors  CommandType = "GET_MONITORS"
	CommandGetHistory   CommandType = "GET_HISTORY"
	CommandReload       CommandType = "RELOAD"
	CommandShutdown     CommandType = "SHUTDOWN"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RestoreInfo summarizes one restore run.
type RestoreInfo struct {
	Trigger     string `json:"trigger"`
	At          int64  `json:"at_unix"`
	Fingerprint string `json:"fingerprint"`
	Restored    int    `json:"restored"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool         `json:"daemon_running"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	IntervalMS    int64        `json:"interval_ms"`
	SettleTicks   int          `json:"settle_ticks"`
	HistoryDepth  int          `json:"history_depth"`
	Ticks         uint64       `json:"ticks"`
	Fingerprint   string       `json:"fingerprint"`
	Settling      bool         `json:"settling"`
	Countdown     int          `json:"countdown"`
	Topologies    int          `json:"topologies"`
	Windows       int          `json:"windows"`
	LastError     string       `json:"last_error,omitempty"`
	SavedAt       int64        `json:"saved_at_unix,omitempty"`
	SavedWindows  int          `json:"saved_windows,omitempty"`
	LastRestore   *RestoreInfo `json:"last_restore,omitempty"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	WorkArea string `json:"work_area"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Fingerprint string        `json:"fingerprint"`
	Monitors    []MonitorInfo `json:"monitors"`
}

// TopologyInfo describes the recorded layouts for one monitor topology.
type TopologyInfo struct {
	Fingerprint string   `json:"fingerprint"`
	Monitors    []string `json:"monitors"`
	Snapshots   int      `json:"snapshots"`
	Oldest      int64    `json:"oldest_unix,omitempty"`
	Newest      int64    `json:"newest_unix,omitempty"`
}

// HistoryData represents the data returned by GET_HISTORY
type HistoryData struct {
	Depth      int            `json:"depth"`
	Topologies []TopologyInfo `json:"topologies"`
}

// SaveData represents the data returned by SAVE_STATE
type SaveData struct {
	Fingerprint string `json:"fingerprint"`
	Monitors    int    `json:"monitors"`
	Windows     int    `json:"windows"`
	Dump        string `json:"dump,omitempty"`
}

// RestoreData represents the data returned by RESTORE_STATE
type RestoreData struct {
	Restored int      `json:"restored"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
