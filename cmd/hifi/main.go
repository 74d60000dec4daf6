package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/mmcdole/hifi/internal/api"
	"github.com/mmcdole/hifi/internal/config"
	"github.com/mmcdole/hifi/internal/console"
	"github.com/mmcdole/hifi/internal/history"
	"github.com/mmcdole/hifi/internal/log"
	"github.com/mmcdole/hifi/internal/player"
	"github.com/mmcdole/hifi/internal/service"
	"github.com/mmcdole/hifi/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("hifi %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, logCloser, err := log.SetupLogger(&cfg.Logging, Version)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	} else {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting hifi", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The player session lives for the whole program
	session, err := player.Start(ctx, player.Options{
		Command:           cfg.Player.Command,
		Args:              cfg.Player.Args,
		Socket:            cfg.Player.Socket,
		Spawn:             cfg.Player.Spawn,
		StartupTimeout:    cfg.Player.StartupTimeout,
		CommandTimeout:    cfg.Player.CommandTimeout,
		MsgLevel:          cfg.Player.MsgLevel,
		LogFile:           cfg.Player.LogFile,
		ProtocolWhitelist: cfg.Player.ProtocolWhitelistOption(),
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start player: %w", err)
	}
	defer session.Close()

	client := api.NewClient(cfg.API.SearchURL, cfg.API.TrackURL, cfg.API.UserAgent, logger)
	queue := player.NewQueue(session, cfg.Player.PlaylistFile, logger)
	searchSvc := service.NewSearchService(client, cfg.Search.Limit, cfg.Search.Rerank, logger)

	// Numeric prompt unless stdin is an interactive terminal
	var selector console.Selector
	if cfg.UI.Picker && term.IsTerminal(int(os.Stdin.Fd())) {
		selector = tui.NewPicker(os.Stdin, os.Stdout, logger)
	}

	// History is optional; run without it rather than fail.
	// Nil interfaces are passed explicitly, never a nil *history.Store.
	var playbackSvc *service.PlaybackService
	var app *console.Console
	store, err := history.Open(cfg.History.File, cfg.History.Max)
	if err != nil {
		logger.Warn("history disabled", "error", err, "path", cfg.History.File)
		playbackSvc = service.NewPlaybackService(client, queue, nil, logger)
		app = console.New(os.Stdin, os.Stdout, searchSvc, playbackSvc, nil, selector, logger)
	} else {
		defer store.Close()
		playbackSvc = service.NewPlaybackService(client, queue, store, logger)
		app = console.New(os.Stdin, os.Stdout, searchSvc, playbackSvc, store, selector, logger)
	}

	app.WatchPlayer(session.Done())

	if err := app.Run(ctx); err != nil {
		logger.Error("console error", "error", err)
		return err
	}

	logger.Info("shutting down")
	return nil
}
