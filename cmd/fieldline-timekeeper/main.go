// Package main provides the Fieldline timekeeper service: the singleton timer
// process that fires status-dwell timeouts and runs retention sweeps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/fieldline/fieldline/pkg/cmd"
	"github.com/fieldline/fieldline/pkg/log"
	"github.com/fieldline/fieldline/pkg/timekeeper"
)

func main() {
	app := &cli.Command{
		Name:                  "fieldline-timekeeper",
		Usage:                 "Start the status-timeout timer service",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "timekeeper-id",
				Aliases: []string{"id"},
				Usage:   "Custom timekeeper ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("TIMEKEEPER_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "poll-interval",
				Usage:   "Due-watch poll interval as a Go duration (default 30s)",
				Value:   "",
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.IntFlag{
				Name:    "batch-size",
				Usage:   "Maximum due watches picked up per poll",
				Value:   timekeeper.DefaultBatchSize,
				Sources: cli.EnvVars("BATCH_SIZE"),
			},
			&cli.StringFlag{
				Name:    "retention-schedule",
				Usage:   "Cron schedule for the retention sweep",
				Value:   timekeeper.DefaultRetentionSchedule,
				Sources: cli.EnvVars("RETENTION_SCHEDULE"),
			},
			&cli.StringFlag{
				Name:    "retention-window",
				Usage:   "How long spent watches and finished runs are kept, as a Go duration (default 720h)",
				Value:   "",
				Sources: cli.EnvVars("RETENTION_WINDOW"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			timekeeperID := command.String("timekeeper-id")
			if timekeeperID == "" {
				timekeeperID = "timekeeper-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("fieldline-timekeeper").With("timekeeper_id", timekeeperID)

			logger.InfoContext(ctx, "Initializing Fieldline Timekeeper")

			var pollInterval time.Duration

			if raw := command.String("poll-interval"); raw != "" {
				parsed, err := time.ParseDuration(raw)
				if err != nil {
					return fmt.Errorf("invalid poll-interval %q: %w", raw, err)
				}

				pollInterval = parsed
			}

			var retentionWindow time.Duration

			if raw := command.String("retention-window"); raw != "" {
				parsed, err := time.ParseDuration(raw)
				if err != nil {
					return fmt.Errorf("invalid retention-window %q: %w", raw, err)
				}

				retentionWindow = parsed
			}

			persist, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return fmt.Errorf("failed to initialize persistence: %w", err)
			}

			defer func() {
				err := persist.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), "fieldline-timekeeper", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			keeper := timekeeper.New(logger, persist, eventBus, timekeeper.Config{
				PollInterval:      pollInterval,
				BatchSize:         command.Int("batch-size"),
				RetentionSchedule: command.String("retention-schedule"),
				RetentionWindow:   retentionWindow,
			})

			err = keeper.Start(ctx)
			if err != nil {
				return fmt.Errorf("failed to start timekeeper: %w", err)
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			<-sigChan
			logger.InfoContext(ctx, "Shutting down timekeeper...")

			return keeper.Stop(ctx)
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
