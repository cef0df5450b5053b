// Package mcp exposes the running daemon to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winpin/internal/ipc"
)

const (
	ServerName    = "winpin"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call into.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	GetHistory() (*ipc.HistoryData, error)
	SaveState() (*ipc.SaveData, error)
	RestoreState() (*ipc.RestoreData, error)
}

// Server is the MCP server for winpin.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server forwarding to d.
func NewServer(d Daemon) *Server {
	s := &Server{daemon: d}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the winpin daemon is running, the current monitor fingerprint, whether a monitor change is still settling, and the last restore result.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List the monitors currently attached with their bounds and work areas, plus the fingerprint identifying this arrangement.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_history",
		Description: "List every monitor arrangement the daemon has recorded window layouts for and how many snapshots each one holds.",
	}, s.handleListHistory)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_state",
		Description: "Capture the current window layout into the manual save slot. This does not affect the automatic per-arrangement history.",
	}, s.handleSaveState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_state",
		Description: "Move windows back to the layout captured by the last save_state. Windows that no longer exist are skipped.",
	}, s.handleRestoreState)
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.StatusData, error) {
	st, err := s.daemon.GetStatus()
	if err != nil {
		return nil, ipc.StatusData{}, fmt.Errorf("get_status: %w", err)
	}
	return nil, *st, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.MonitorsData, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ipc.MonitorsData{}, fmt.Errorf("list_monitors: %w", err)
	}
	return nil, *data, nil
}

func (s *Server) handleListHistory(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.HistoryData, error) {
	data, err := s.daemon.GetHistory()
	if err != nil {
		return nil, ipc.HistoryData{}, fmt.Errorf("list_history: %w", err)
	}
	return nil, *data, nil
}

func (s *Server) handleSaveState(_ context.Context, _ *mcpsdk.CallToolRequest, args SaveStateInput) (*mcpsdk.CallToolResult, ipc.SaveData, error) {
	data, err := s.daemon.SaveState()
	if err != nil {
		return nil, ipc.SaveData{}, fmt.Errorf("save_state: %w", err)
	}
	out := *data
	if !args.IncludeDump {
		out.Dump = ""
	}
	return nil, out, nil
}

func (s *Server) handleRestoreState(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ipc.RestoreData, error) {
	data, err := s.daemon.RestoreState()
	if err != nil {
		return nil, ipc.RestoreData{}, fmt.Errorf("restore_state: %w", err)
	}
	return nil, *data, nil
}
