package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"klocka/internal"
	"klocka/internal/alarm"
	"klocka/internal/app"
	"klocka/internal/config"
	"klocka/internal/kv"
	"klocka/internal/product"
	"klocka/internal/timer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "klocka.yaml", "Configuration file path")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	kiosk := flag.Bool("kiosk", false, "Hide the configuration view")
	lang := flag.String("lang", "", "Display language: de, en")
	logPath := flag.String("log", "", "Log file path (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	tick := flag.Duration("tick", 0, "Countdown refresh interval (overrides config)")
	reset := flag.Bool("reset", false, "Forget stored products and timers, then exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("klocka %s\n", version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *kiosk {
		cfg.UI.Kiosk = true
	}
	if *lang != "" {
		cfg.UI.Language = *lang
	}
	if *logPath != "" {
		cfg.Log.Path = *logPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *tick != 0 {
		cfg.Timer.Tick = *tick
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()

	store, err := kv.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if *reset {
		if err := errors.Join(store.Delete(product.StorageKey), store.Delete(timer.StorageKey)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		logger.Info("stored state cleared")
		return 0
	}

	a := app.New(store, app.SystemClock{}, logger)
	if err := a.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load state: %v\n", err)
		return 1
	}

	al, err := alarm.Open(cfg.Alarm.Enabled, cfg.Alarm.Sound, cfg.Alarm.Volume, os.Stderr)
	if err != nil {
		logger.Warn("alarm sound unavailable, using terminal bell", "error", err)
	}

	m := internal.NewModel(a, internal.Options{
		Kiosk:    cfg.UI.Kiosk,
		Language: cfg.UI.Language,
		PIN:      cfg.UI.PIN,
		Alarm:    al,
		Logger:   logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())

	ticker := time.NewTicker(cfg.Timer.Tick)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				p.Send(internal.MsgTick{})
			case <-done:
				return
			}
		}
	}()

	logger.Info("klocka started", "db", cfg.Database.Path, "tick", cfg.Timer.Tick, "kiosk", cfg.UI.Kiosk)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		return 1
	}
	logger.Info("klocka stopped")
	return 0
}

// newLogger opens the log file; the terminal belongs to the TUI while it runs.
func newLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("session", uuid.NewString())
	return logger, func() { f.Close() }, nil
}
