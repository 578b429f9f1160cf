package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds Soniq runtime configuration loaded from TOML.
type Config struct {
	API         APIConfig     `toml:"api"`
	UI          UIConfig      `toml:"ui"`
	Player      PlayerConfig  `toml:"player"`
	Session     SessionConfig `toml:"session"`
	Keybindings KeybindConfig `toml:"keybindings"`
}

// APIConfig points the client at the catalog service.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	TimeoutMS int    `toml:"timeout_ms"`
}

// SessionConfig controls token persistence across restarts.
type SessionConfig struct {
	Persist bool `toml:"persist"`
}

type UIConfig struct {
	Theme   string `toml:"theme"`
	NoEmoji bool   `toml:"no_emoji"`
}

type PlayerConfig struct {
	MPVPath       string `toml:"mpv_path"`
	IPC           string `toml:"ipc"`
	InitialVolume int    `toml:"initial_volume"` // 0-100
	SeekSmall     int    `toml:"seek_small_seconds"`
	SeekLarge     int    `toml:"seek_large_seconds"`
	VolumeStep    int    `toml:"volume_step"`
}

// KeybindConfig allows customizing keybindings.
type KeybindConfig struct {
	PlayPause    string `toml:"play_pause"`
	NextTrack    string `toml:"next_track"`
	PrevTrack    string `toml:"prev_track"`
	SeekForward  string `toml:"seek_forward"`
	SeekBackward string `toml:"seek_backward"`
	VolumeUp     string `toml:"volume_up"`
	VolumeDown   string `toml:"volume_down"`
	Shuffle      string `toml:"shuffle"`
	Repeat       string `toml:"repeat"`
	Favorite     string `toml:"favorite"`
	Search       string `toml:"search"`
	Logout       string `toml:"logout"`
	Help         string `toml:"help"`
	Quit         string `toml:"quit"`
}

// Load reads configuration from disk. If path is empty, a default OS-specific
// location is used. A missing file is not an error: the app runs on defaults.
func Load(path string) (*Config, string, error) {
	cfgPath := path
	if cfgPath == "" {
		var err error
		cfgPath, err = defaultPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve config path: %w", err)
		}
	}

	var cfg Config
	data, err := os.ReadFile(cfgPath)
	switch {
	case os.IsNotExist(err):
		// run on defaults
	case err != nil:
		return nil, cfgPath, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, cfgPath, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := Validate(cfg); err != nil {
		return nil, cfgPath, err
	}

	return &cfg, cfgPath, nil
}

func defaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	name := "soniq"
	if runtime.GOOS == "windows" {
		name = "Soniq"
	}
	base := filepath.Join(dir, name)
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(base, "config.toml"), nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.TimeoutMS == 0 {
		cfg.API.TimeoutMS = 8000
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = "midnight"
	}
	if cfg.Player.MPVPath == "" {
		cfg.Player.MPVPath = "mpv"
	}
	if cfg.Player.InitialVolume == 0 {
		cfg.Player.InitialVolume = 50
	}
	if cfg.Player.SeekSmall == 0 {
		cfg.Player.SeekSmall = 5
	}
	if cfg.Player.SeekLarge == 0 {
		cfg.Player.SeekLarge = 30
	}
	if cfg.Player.VolumeStep == 0 {
		cfg.Player.VolumeStep = 5
	}
	// Keybinding defaults
	if cfg.Keybindings.PlayPause == "" {
		cfg.Keybindings.PlayPause = "space"
	}
	if cfg.Keybindings.NextTrack == "" {
		cfg.Keybindings.NextTrack = "n"
	}
	if cfg.Keybindings.PrevTrack == "" {
		cfg.Keybindings.PrevTrack = "p"
	}
	if cfg.Keybindings.SeekForward == "" {
		cfg.Keybindings.SeekForward = "l"
	}
	if cfg.Keybindings.SeekBackward == "" {
		cfg.Keybindings.SeekBackward = "h"
	}
	if cfg.Keybindings.VolumeUp == "" {
		cfg.Keybindings.VolumeUp = "+"
	}
	if cfg.Keybindings.VolumeDown == "" {
		cfg.Keybindings.VolumeDown = "-"
	}
	if cfg.Keybindings.Shuffle == "" {
		cfg.Keybindings.Shuffle = "s"
	}
	if cfg.Keybindings.Repeat == "" {
		cfg.Keybindings.Repeat = "r"
	}
	if cfg.Keybindings.Favorite == "" {
		cfg.Keybindings.Favorite = "f"
	}
	if cfg.Keybindings.Search == "" {
		cfg.Keybindings.Search = "/"
	}
	if cfg.Keybindings.Logout == "" {
		cfg.Keybindings.Logout = "ctrl+l"
	}
	if cfg.Keybindings.Help == "" {
		cfg.Keybindings.Help = "?"
	}
	if cfg.Keybindings.Quit == "" {
		cfg.Keybindings.Quit = "q,ctrl+c"
	}
	// Session persistence defaults to on. TOML parses a missing key as false,
	// so missing is treated as "use default".
	if !cfg.Session.Persist {
		cfg.Session.Persist = true
	}
}

// Validate performs semantic validation of the loaded config.
func Validate(cfg Config) error {
	if cfg.API.TimeoutMS < 0 {
		return fmt.Errorf("api.timeout_ms must not be negative")
	}
	if cfg.Player.InitialVolume < 0 || cfg.Player.InitialVolume > 100 {
		return fmt.Errorf("player.initial_volume must be 0-100")
	}
	if cfg.Player.SeekSmall < 0 || cfg.Player.SeekLarge < 0 {
		return fmt.Errorf("seek steps must not be negative")
	}
	if cfg.Player.VolumeStep < 1 || cfg.Player.VolumeStep > 100 {
		return fmt.Errorf("player.volume_step must be 1-100")
	}
	return nil
}

// DeadlineContext returns a context bounded by the api timeout.
func (c Config) DeadlineContext() (context.Context, context.CancelFunc) {
	d := time.Duration(c.API.TimeoutMS) * time.Millisecond
	if d == 0 {
		d = 8 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}
