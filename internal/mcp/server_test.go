package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winpin/internal/ipc"
)

type fakeDaemon struct {
	err      error
	restores int
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{DaemonRunning: true, Fingerprint: "00000000deadbeef", Countdown: -1}, nil
}

func (f *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	return &ipc.MonitorsData{
		Fingerprint: "00000000deadbeef",
		Monitors:    []ipc.MonitorInfo{{Name: "eDP-1", Width: 1920, Height: 1080}},
	}, nil
}

func (f *fakeDaemon) GetHistory() (*ipc.HistoryData, error) {
	return &ipc.HistoryData{Depth: 3, Topologies: []ipc.TopologyInfo{{Fingerprint: "00000000deadbeef", Snapshots: 2}}}, nil
}

func (f *fakeDaemon) SaveState() (*ipc.SaveData, error) {
	return &ipc.SaveData{Fingerprint: "00000000deadbeef", Monitors: 1, Windows: 4, Dump: "Fingerprint: 00000000deadbeef\n"}, nil
}

func (f *fakeDaemon) RestoreState() (*ipc.RestoreData, error) {
	f.restores++
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.RestoreData{Restored: 4}, nil
}

func TestHandleSaveState_DumpIsOptIn(t *testing.T) {
	s := NewServer(&fakeDaemon{})

	_, out, err := s.handleSaveState(context.Background(), nil, SaveStateInput{})
	if err != nil {
		t.Fatalf("handleSaveState: %v", err)
	}
	if out.Dump != "" || out.Windows != 4 {
		t.Fatalf("unexpected output: %+v", out)
	}

	_, out, err = s.handleSaveState(context.Background(), nil, SaveStateInput{IncludeDump: true})
	if err != nil {
		t.Fatalf("handleSaveState: %v", err)
	}
	if !strings.HasPrefix(out.Dump, "Fingerprint:") {
		t.Fatalf("dump missing: %+v", out)
	}
}

func TestHandleRestoreState_WrapsDaemonError(t *testing.T) {
	daemonErr := errors.New("daemon error: no saved state")
	d := &fakeDaemon{err: daemonErr}
	s := NewServer(d)

	_, _, err := s.handleRestoreState(context.Background(), nil, EmptyInput{})
	if !errors.Is(err, daemonErr) || !strings.HasPrefix(err.Error(), "restore_state:") {
		t.Fatalf("handleRestoreState error = %v", err)
	}
	if d.restores != 1 {
		t.Fatalf("restores = %d", d.restores)
	}
}

func TestHandlers_ForwardDaemonData(t *testing.T) {
	s := NewServer(&fakeDaemon{})
	ctx := context.Background()

	_, st, err := s.handleGetStatus(ctx, nil, EmptyInput{})
	if err != nil || !st.DaemonRunning {
		t.Fatalf("get_status = %+v, %v", st, err)
	}

	_, mons, err := s.handleListMonitors(ctx, nil, EmptyInput{})
	if err != nil {
		t.Fatalf("list_monitors: %v", err)
	}
	want := []ipc.MonitorInfo{{Name: "eDP-1", Width: 1920, Height: 1080}}
	if diff := cmp.Diff(want, mons.Monitors); diff != "" {
		t.Fatalf("monitors mismatch (-want +got):\n%s", diff)
	}

	_, hist, err := s.handleListHistory(ctx, nil, EmptyInput{})
	if err != nil || hist.Depth != 3 || len(hist.Topologies) != 1 {
		t.Fatalf("list_history = %+v, %v", hist, err)
	}
}

func TestServer_ToolsOverInMemoryTransport(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(&fakeDaemon{})
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"get_status", "list_history", "list_monitors", "restore_state", "save_state"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{Name: "restore_state"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("restore_state returned a tool error: %+v", res.Content)
	}
}
