package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soniq/soniq/internal/api"
	"github.com/soniq/soniq/internal/app"
	"github.com/soniq/soniq/internal/auth"
	"github.com/soniq/soniq/internal/config"
	"github.com/soniq/soniq/internal/favorites"
	"github.com/soniq/soniq/internal/logging"
	"github.com/soniq/soniq/internal/media"
	"github.com/soniq/soniq/internal/playback"
	"github.com/soniq/soniq/internal/playlist"
)

var version = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Soniq - a terminal client for the Soniq music service

Usage: soniq [options]

Options:
  -config string
        Path to config file (default: ~/.config/soniq/config.toml)
  -version
        Print version and exit

Diagnostics:
  -doctor
        Check configuration and dependencies

Examples:
  soniq                  # Start interactive TUI
  soniq --doctor         # Check setup

`)
	}

	cfgPath := flag.String("config", "", "")
	doctor := flag.Bool("doctor", false, "")
	showVersion := flag.Bool("version", false, "")
	flag.Parse()

	if *showVersion {
		fmt.Println("soniq", version)
		return
	}

	cfg, resolvedPath, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, logFile, err := logging.Setup()
	if err != nil {
		log.Fatalf("setup logging: %v", err)
	}
	defer logFile.Close()
	logger.Info("starting soniq", slog.String("config", resolvedPath))

	if *doctor {
		runDoctor(cfg)
		return
	}

	client := api.New(cfg.API.BaseURL, &http.Client{
		Timeout: time.Duration(cfg.API.TimeoutMS) * time.Millisecond,
	})

	var store *auth.Store
	if cfg.Session.Persist {
		store, err = auth.OpenStore("")
		if err != nil {
			logger.Warn("session persistence unavailable", slog.Any("err", err))
		} else {
			defer store.Close()
		}
	}
	session := auth.NewManager(client, store, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := session.Restore(ctx); err != nil {
		logger.Warn("restore session", slog.Any("err", err))
	}
	cancel()

	res := media.NewMPV(media.MPVOptions{
		MPVPath: cfg.Player.MPVPath,
		IPCPath: cfg.Player.IPC,
		Logger:  logger,
	})
	if err := res.Start(context.Background()); err != nil {
		logger.Error("start media resource", slog.Any("err", err))
		log.Fatalf("start mpv: %v", err)
	}
	defer res.Close()

	engine := playlist.New()
	ctrl := playback.New(res, engine, logger, float64(cfg.Player.InitialVolume)/100)
	favs := favorites.New(client, session, logger)

	model := app.New(cfg, client, session, res, engine, ctrl, favs)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("run tui", slog.Any("err", err))
		log.Fatalf("tui: %v", err)
	}
}

func runDoctor(cfg *config.Config) {
	fmt.Println("Soniq doctor")
	fmt.Println("Config file: OK")

	mpvPath, err := exec.LookPath(cfg.Player.MPVPath)
	if err != nil {
		fmt.Printf("mpv (%s): NOT FOUND\n", cfg.Player.MPVPath)
	} else {
		fmt.Printf("mpv: OK (%s)\n", mpvPath)
	}

	base := cfg.API.BaseURL
	if base == "" {
		base = api.DefaultBaseURL
	}
	fmt.Printf("API base URL: %s\n", base)

	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get(base + "/catalog/track/all/")
	if err != nil {
		fmt.Printf("API: UNREACHABLE (%v)\n", err)
		return
	}
	resp.Body.Close()
	fmt.Printf("API: OK (status %d)\n", resp.StatusCode)

	if cfg.Session.Persist {
		store, err := auth.OpenStore("")
		if err != nil {
			fmt.Printf("Session store: ERROR - %v\n", err)
			return
		}
		store.Close()
		fmt.Println("Session store: OK")
	} else {
		fmt.Println("Session store: disabled")
	}
}
