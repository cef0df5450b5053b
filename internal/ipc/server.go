package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/winpin/internal/daemon"
	"github.com/1broseidon/winpin/internal/history"
	"github.com/1broseidon/winpin/internal/restore"
	"github.com/1broseidon/winpin/internal/runtimepath"
	"github.com/1broseidon/winpin/internal/snapshot"
)

// requestTimeout bounds how long a single command may wait on the daemon.
const requestTimeout = 10 * time.Second

// Controller is the daemon surface exposed over IPC.
type Controller interface {
	SaveState(ctx context.Context) (daemon.SaveReport, error)
	RestoreState(ctx context.Context) (restore.Result, error)
	Status(ctx context.Context) (daemon.Status, error)
	Monitors(ctx context.Context) ([]snapshot.Monitor, snapshot.Fingerprint, error)
	History(ctx context.Context) ([]history.Entry, error)
}

// Hooks are process-level actions the server can trigger.
type Hooks struct {
	// Reload re-reads the configuration file.
	Reload func() error
	// Shutdown asks the daemon to exit. It must not block.
	Shutdown func()
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	hooks        Hooks
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server on the default socket path.
func NewServer(ctrl Controller, hooks Hooks, logger *slog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerWithSocket(socketPath, ctrl, hooks, logger), nil
}

// NewServerWithSocket creates a server listening on socketPath.
func NewServerWithSocket(socketPath string, ctrl Controller, hooks Hooks, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		hooks:      hooks,
		logger:     logger,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout + time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", string(req.Command))
	switch req.Command {
	case CommandSaveState:
		return s.handleSaveState(ctx)
	case CommandRestoreState:
		return s.handleRestoreState(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetMonitors:
		return s.handleGetMonitors(ctx)
	case CommandGetHistory:
		return s.handleGetHistory(ctx)
	case CommandReload:
		return s.handleReload()
	case CommandShutdown:
		return s.handleShutdown()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleSaveState(ctx context.Context) *Response {
	report, err := s.ctrl.SaveState(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to save state: %v", err))
	}
	return okResponse(SaveData{
		Fingerprint: report.Fingerprint.String(),
		Monitors:    report.Monitors,
		Windows:     report.Windows,
		Dump:        report.Dump,
	})
}

func (s *Server) handleRestoreState(ctx context.Context) *Response {
	res, err := s.ctrl.RestoreState(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to restore state: %v", err))
	}
	data := RestoreData{
		Restored: res.Restored,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
	}
	for _, e := range res.Errors {
		data.Errors = append(data.Errors, e.Error())
	}
	return okResponse(data)
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	st, err := s.ctrl.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	data := StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(st.Started).Seconds()),
		IntervalMS:    st.Interval.Milliseconds(),
		SettleTicks:   st.SettleTicks,
		HistoryDepth:  st.HistoryDepth,
		Ticks:         st.Ticks,
		Fingerprint:   st.Fingerprint.String(),
		Settling:      st.Countdown >= 0,
		Countdown:     st.Countdown,
		Topologies:    st.Topologies,
		Windows:       st.Windows,
		LastError:     st.LastError,
	}
	if st.Saved != nil {
		data.SavedAt = st.Saved.Taken.Unix()
		data.SavedWindows = st.Saved.Windows
	}
	if lr := st.LastRestore; lr != nil {
		data.LastRestore = &RestoreInfo{
			Trigger:     lr.Trigger,
			At:          lr.At.Unix(),
			Fingerprint: lr.Fingerprint.String(),
			Restored:    lr.Restored,
			Skipped:     lr.Skipped,
			Failed:      lr.Failed,
		}
	}
	return okResponse(data)
}

func (s *Server) handleGetMonitors(ctx context.Context) *Response {
	monitors, fp, err := s.ctrl.Monitors(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get monitors: %v", err))
	}

	infos := make([]MonitorInfo, len(monitors))
	for i, m := range monitors {
		infos[i] = MonitorInfo{
			Name:     m.Name,
			X:        m.Bounds.X,
			Y:        m.Bounds.Y,
			Width:    m.Bounds.Width,
			Height:   m.Bounds.Height,
			WorkArea: m.WorkArea.String(),
		}
	}
	return okResponse(MonitorsData{Fingerprint: fp.String(), Monitors: infos})
}

func (s *Server) handleGetHistory(ctx context.Context) *Response {
	entries, err := s.ctrl.History(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get history: %v", err))
	}
	st, err := s.ctrl.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}

	data := HistoryData{Depth: st.HistoryDepth, Topologies: make([]TopologyInfo, 0, len(entries))}
	for _, e := range entries {
		names := make([]string, 0, len(e.Monitors))
		for _, m := range e.Monitors {
			names = append(names, fmt.Sprintf("%s %s", m.Name, m.Bounds))
		}
		data.Topologies = append(data.Topologies, TopologyInfo{
			Fingerprint: e.Fingerprint.String(),
			Monitors:    names,
			Snapshots:   e.Count,
			Oldest:      e.Oldest.Unix(),
			Newest:      e.Newest.Unix(),
		})
	}
	return okResponse(data)
}

func (s *Server) handleReload() *Response {
	if s.hooks.Reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	s.logger.Info("IPC: received RELOAD command")
	if err := s.hooks.Reload(); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	return okResponse(nil)
}

func (s *Server) handleShutdown() *Response {
	if s.hooks.Shutdown == nil {
		return NewErrorResponse("shutdown is not supported")
	}
	s.logger.Info("IPC: received SHUTDOWN command")
	s.hooks.Shutdown()
	return okResponse(nil)
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
