package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calinvite/calinvite/internal/ai"
	"github.com/calinvite/calinvite/internal/config"
	"github.com/calinvite/calinvite/internal/database"
	"github.com/calinvite/calinvite/internal/events"
	"github.com/calinvite/calinvite/internal/integrations"
	"github.com/calinvite/calinvite/internal/models"
	"github.com/calinvite/calinvite/internal/parser"
	"github.com/calinvite/calinvite/internal/repository"
	"github.com/calinvite/calinvite/internal/scheduler"
	"github.com/calinvite/calinvite/internal/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; the environment wins either way
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "calinvite",
		Usage: "Natural language calendar server",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: runServe,
			},
			{
				Name:      "parse",
				Usage:     "Parse event text and print the result as JSON",
				ArgsUsage: "<text>",
				Action:    runParse,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	// Console writer for better formatting in containers
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().
		Timestamp().
		Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.DefaultContextLogger = &logger

	return logger
}

func runServe(c *cli.Context) error {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	repo := repository.NewEventRepository(db.DB(), logger)
	if err := repository.SeedDemoEvents(context.Background(), repo, time.Now().UTC()); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed demo events")
	}

	// Redis is optional; without it notifications are dropped
	var notifier events.Notifier = events.NoopNotifier{}
	if cfg.RedisURL != "" {
		redisClient, err := events.NewRedisClient(cfg.RedisURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, notifications disabled")
		} else {
			defer redisClient.Close()
			notifier = events.NewPublisher(redisClient, cfg.RedisChannel, logger)
		}
	}

	// The Ollama strategy is tried first; the deterministic parser is the
	// chain's built-in fallback
	ollama := ai.NewOllamaStrategy(cfg.OllamaHost, cfg.OllamaModel, logger)
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if ollama.Available(probeCtx) {
		logger.Info().Str("model", cfg.OllamaModel).Msg("Ollama model available")
	} else {
		logger.Info().Msg("Ollama unavailable, using deterministic parser only")
	}
	probeCancel()
	chain := ai.NewChain(logger, cfg.AITimeout, ollama)

	manager := integrations.NewManager(cfg, logger)

	sched := scheduler.New(repo, notifier, cfg.ReminderLead, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start reminder scheduler")
	}
	defer sched.Stop()

	srv := server.New(cfg, db.DB(), repo, chain, notifier, manager, &logger)

	// Channel to listen for errors from server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for an error or interrupt signal
	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
	return nil
}

func runParse(c *cli.Context) error {
	text := c.Args().First()
	if text == "" {
		return cli.Exit("usage: calinvite parse <text>", 1)
	}

	cfg := config.Load()
	logger := newLogger("error")

	event, err := parser.Parse(text, time.Now().UTC())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// Conflicts are checked against the local store when it is reachable;
	// parsing itself needs no database.
	var sameDay []*models.Event
	if db, err := database.New(cfg.DBPath); err == nil {
		defer db.Close()
		repo := repository.NewEventRepository(db.DB(), logger)
		if list, err := repo.ListByDate(context.Background(), event.Date); err == nil {
			sameDay = list
		}
	}

	validation := parser.Validate(event, sameDay)
	out, err := json.MarshalIndent(map[string]interface{}{
		"event":      event,
		"validation": validation,
	}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
