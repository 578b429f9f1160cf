package media

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// MPVOptions configures the mpv-backed Resource.
type MPVOptions struct {
	MPVPath        string
	IPCPath        string
	Logger         *slog.Logger
	DisableProcess bool
	Dial           func(ctx context.Context, network, addr string) (net.Conn, error)
	ExtraArgs      []string
}

// MPV drives an mpv process over its JSON IPC socket and adapts its property
// stream into Resource events.
type MPV struct {
	opts MPVOptions
	cmd  *exec.Cmd

	mu        sync.Mutex
	conn      net.Conn
	readySent bool

	events chan Event
}

var _ Resource = (*MPV)(nil)

func NewMPV(opts MPVOptions) *MPV {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &MPV{
		opts:   opts,
		events: make(chan Event, 32),
	}
}

func defaultIPCPath() string {
	if runtime.GOOS == "windows" {
		return `\\.\pipe\soniq-mpv`
	}
	return filepath.Join(os.TempDir(), "soniq-mpv.sock")
}

// Start launches mpv (unless disabled) and connects to the IPC socket.
func (m *MPV) Start(ctx context.Context) error {
	if m.opts.IPCPath == "" {
		m.opts.IPCPath = defaultIPCPath()
	}
	m.opts.Logger.Debug("starting media resource", slog.String("ipc_path", m.opts.IPCPath))
	if !m.opts.DisableProcess {
		if err := m.spawn(ctx); err != nil {
			return err
		}
	}
	if err := m.connect(ctx); err != nil {
		return err
	}
	if err := m.observeProperties(); err != nil {
		return err
	}
	go m.readLoop()
	m.opts.Logger.Debug("media resource started")
	return nil
}

func (m *MPV) spawn(ctx context.Context) error {
	args := []string{
		"--idle=yes",
		"--force-window=no",
		"--no-terminal",
		"--no-video",
		"--pause=yes",
		"--input-ipc-server=" + m.opts.IPCPath,
	}
	args = append(args, m.opts.ExtraArgs...)
	m.cmd = exec.CommandContext(ctx, m.opts.MPVPath, args...)
	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	m.opts.Logger.Debug("mpv process started", slog.Int("pid", m.cmd.Process.Pid))
	return nil
}

func (m *MPV) connect(ctx context.Context) error {
	dial := m.opts.Dial
	if dial == nil {
		dial = (&net.Dialer{Timeout: 5 * time.Second}).DialContext
	}
	var conn net.Conn
	var err error
	baseDelay := 50 * time.Millisecond
	maxDelay := 500 * time.Millisecond
	maxRetries := 10
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < maxRetries; i++ {
		conn, err = dial(ctx, "unix", m.opts.IPCPath)
		if err == nil {
			m.mu.Lock()
			m.conn = conn
			m.mu.Unlock()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect mpv ipc: %w", ctx.Err())
		default:
		}
		if i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<uint(i))
			if delay > maxDelay {
				delay = maxDelay
			}
			jitter := time.Duration(float64(delay) * 0.2 * rng.Float64())
			time.Sleep(delay + jitter)
		}
	}
	return fmt.Errorf("connect mpv ipc: %w", err)
}

func (m *MPV) observeProperties() error {
	props := []string{"time-pos", "duration"}
	for i, p := range props {
		if err := m.send(map[string]any{
			"command": []any{"observe_property", i + 1, p},
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MPV) Events() <-chan Event { return m.events }

func (m *MPV) send(cmd map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return fmt.Errorf("mpv not connected")
	}
	b, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	_, err = m.conn.Write(append(b, '\n'))
	return err
}

// Load replaces the current source. Playback stays paused until Play; the
// Ready event fires once mpv has probed the new stream.
func (m *MPV) Load(url string, headers map[string]string) error {
	m.opts.Logger.Debug("loading source", slog.String("url", url))
	m.mu.Lock()
	m.readySent = false
	m.mu.Unlock()

	if len(headers) > 0 {
		var lines []string
		for k, v := range headers {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
		_ = m.send(map[string]any{"command": []any{"set_property", "http-header-fields", strings.Join(lines, "\n")}})
	}
	if err := m.send(map[string]any{"command": []any{"set_property", "pause", true}}); err != nil {
		return err
	}
	return m.send(map[string]any{"command": []any{"loadfile", url, "replace"}})
}

func (m *MPV) Play() error {
	return m.send(map[string]any{"command": []any{"set_property", "pause", false}})
}

func (m *MPV) Pause() error {
	return m.send(map[string]any{"command": []any{"set_property", "pause", true}})
}

func (m *MPV) Seek(seconds float64) error {
	return m.send(map[string]any{"command": []any{"seek", seconds, "absolute"}})
}

// SetVolume takes a fraction in [0,1]; mpv speaks percent.
func (m *MPV) SetVolume(v float64) error {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return m.send(map[string]any{"command": []any{"set_property", "volume", v * 100}})
}

// Close tears down the IPC connection and the mpv process.
func (m *MPV) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		b, _ := json.Marshal(map[string]any{"command": []any{"quit"}})
		_, _ = m.conn.Write(append(b, '\n'))
		_ = m.conn.Close()
		m.conn = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
		_ = m.cmd.Wait()
		m.cmd = nil
	}
	return nil
}

type ipcMessage struct {
	Event  string      `json:"event"`
	Name   string      `json:"name"`
	Data   interface{} `json:"data"`
	Reason string      `json:"reason"` // end-file: "eof", "stop", "quit", "error", "redirect"
}

func (m *MPV) readLoop() {
	defer close(m.events)
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			m.events <- Event{Kind: EventError, Err: fmt.Errorf("decode ipc: %w", err)}
			continue
		}
		switch msg.Event {
		case "property-change":
			m.handlePropertyChange(msg)
		case "end-file":
			// "stop" is emitted when we replace the source, "quit" when mpv
			// exits; only eof is a natural end.
			switch msg.Reason {
			case "eof":
				m.events <- Event{Kind: EventEnded}
			case "error":
				m.events <- Event{Kind: EventError, Err: fmt.Errorf("mpv failed to play source")}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		m.events <- Event{Kind: EventError, Err: err}
	}
}

func (m *MPV) handlePropertyChange(msg ipcMessage) {
	switch msg.Name {
	case "time-pos":
		if v, ok := toFloat(msg.Data); ok {
			m.events <- Event{Kind: EventTime, Seconds: v}
		}
	case "duration":
		v, ok := toFloat(msg.Data)
		if !ok {
			return
		}
		m.events <- Event{Kind: EventDuration, Seconds: v}
		// mpv has no canplay signal; the first duration report after a load
		// means the stream is open and probed.
		m.mu.Lock()
		ready := !m.readySent
		m.readySent = true
		m.mu.Unlock()
		if ready {
			m.events <- Event{Kind: EventReady}
		}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
