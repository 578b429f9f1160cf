package media

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"
)

func startFakeMPV(t *testing.T) (*MPV, net.Conn) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "mpv-test.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		accepted <- conn
	}()

	res := NewMPV(MPVOptions{
		MPVPath:        "mpv",
		IPCPath:        socketPath,
		DisableProcess: true,
	})
	if err := res.Start(context.Background()); err != nil {
		t.Fatalf("start resource: %v", err)
	}
	conn := <-accepted
	t.Cleanup(func() { conn.Close() })
	return res, conn
}

func writeIPC(t *testing.T, conn net.Conn, msg map[string]any) {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal ipc: %v", err)
	}
	if _, err := conn.Write(append(b, '\n')); err != nil {
		t.Fatalf("write ipc: %v", err)
	}
}

func collect(t *testing.T, res *MPV, want int) []Event {
	t.Helper()
	var events []Event
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case evt := <-res.Events():
			events = append(events, evt)
		case <-timeout:
			t.Fatalf("timeout, got %d of %d events: %+v", len(events), want, events)
		}
	}
	return events
}

func TestMPV_ReadyFiresOnceAfterLoad(t *testing.T) {
	res, conn := startFakeMPV(t)

	if err := res.Load("https://example.com/a.mp3", nil); err != nil {
		t.Fatalf("load: %v", err)
	}
	writeIPC(t, conn, map[string]any{"event": "property-change", "name": "duration", "data": 205.0})
	writeIPC(t, conn, map[string]any{"event": "property-change", "name": "duration", "data": 205.4})
	writeIPC(t, conn, map[string]any{"event": "property-change", "name": "time-pos", "data": 3.5})

	events := collect(t, res, 4)
	if events[0].Kind != EventDuration || events[0].Seconds != 205.0 {
		t.Errorf("expected duration first, got %+v", events[0])
	}
	if events[1].Kind != EventReady {
		t.Errorf("expected ready after first duration, got %+v", events[1])
	}
	if events[2].Kind != EventDuration {
		t.Errorf("second duration must not re-emit ready, got %+v", events[2])
	}
	if events[3].Kind != EventTime || events[3].Seconds != 3.5 {
		t.Errorf("expected time event, got %+v", events[3])
	}
}

func TestMPV_EndedOnlyOnNaturalEOF(t *testing.T) {
	res, conn := startFakeMPV(t)

	// Replacing the source makes mpv report end-file with reason "stop";
	// that must not surface as an Ended event.
	writeIPC(t, conn, map[string]any{"event": "end-file", "reason": "stop"})
	writeIPC(t, conn, map[string]any{"event": "end-file", "reason": "eof"})

	events := collect(t, res, 1)
	if events[0].Kind != EventEnded {
		t.Fatalf("expected ended event, got %+v", events[0])
	}
}

func TestMPV_ErrorReasonSurfacesAsError(t *testing.T) {
	res, conn := startFakeMPV(t)

	writeIPC(t, conn, map[string]any{"event": "end-file", "reason": "error"})

	events := collect(t, res, 1)
	if events[0].Kind != EventError || events[0].Err == nil {
		t.Fatalf("expected error event, got %+v", events[0])
	}
}

func TestMPV_SendsCommands(t *testing.T) {
	res, conn := startFakeMPV(t)

	if err := res.SetVolume(1.7); err != nil {
		t.Fatalf("set volume: %v", err)
	}

	scanner := bufio.NewScanner(conn)
	// Skip the two observe_property commands issued at startup.
	var cmd struct {
		Command []any `json:"command"`
	}
	for i := 0; i < 3; i++ {
		if !scanner.Scan() {
			t.Fatalf("missing command line %d: %v", i, scanner.Err())
		}
		if err := json.Unmarshal(scanner.Bytes(), &cmd); err != nil {
			t.Fatalf("decode command: %v", err)
		}
	}
	if cmd.Command[0] != "set_property" || cmd.Command[1] != "volume" {
		t.Fatalf("expected volume command, got %+v", cmd.Command)
	}
	// Out-of-range input clamps to full volume (mpv speaks percent).
	if cmd.Command[2].(float64) != 100 {
		t.Errorf("expected clamped volume 100, got %v", cmd.Command[2])
	}
}
