package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/fieldline/fieldline/pkg/actions/invoicedraft"
	"github.com/fieldline/fieldline/pkg/cmd"
	"github.com/fieldline/fieldline/pkg/log"
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/otelhelper"
)

func main() {
	app := &cli.Command{
		Name:                  "fieldline-worker",
		EnableShellCompletion: true,
		Usage:                 "Start workers to run work order automations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("WORKER_ID"),
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
				Name:    "redis-addr",
				Usage:   "Redis address for the shared idempotency ledger (in-memory when empty)",
				Value:   "",
				Sources: cli.EnvVars("REDIS_ADDR"),
			},
			&cli.StringFlag{
				Name:    "default-labor-rate",
				Usage:   "Fallback hourly rate for drafted invoices (default 50.00)",
				Value:   "",
				Sources: cli.EnvVars("DEFAULT_LABOR_RATE"),
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password for the idempotency ledger",
				Value:   "",
				Sources: cli.EnvVars("REDIS_PASSWORD"),
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number for the idempotency ledger",
				Value:   0,
				Sources: cli.EnvVars("REDIS_DB"),
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

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("fieldline-worker").With("worker_id", workerID)

			logger.InfoContext(ctx, "Initializing Fieldline Worker")

			tracerProvider, err := otelhelper.InitTracer(ctx, "fieldline-worker")
			if err != nil {
				return fmt.Errorf("failed to initialize tracer: %w", err)
			}

			defer func() {
				if err := tracerProvider.Shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

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

			eventBus := cmd.NewEventBus(command.String("event-bus"), "fieldline-worker", logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			ledger, err := cmd.NewDeduper(
				ctx,
				command.String("redis-addr"),
				command.String("redis-password"),
				command.Int("redis-db"),
			)
			if err != nil {
				return fmt.Errorf("failed to initialize idempotency ledger: %w", err)
			}

			defer func() {
				if err := ledger.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close idempotency ledger", "error", err)
				}
			}()

			laborRate := invoicedraft.DefaultLaborRate
			if raw := command.String("default-labor-rate"); raw != "" {
				laborRate, err = strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("invalid default-labor-rate %q: %w", raw, err)
				}
			}

			registry := cmd.NewRegistry(logger, persist, numbering.NewAllocator(), laborRate)

			worker := NewWorkerManager(
				workerID,
				persist,
				eventBus,
				logger,
				registry,
				ledger,
				tracerProvider,
			)

			err = worker.Start(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start worker", "error", err)
			}

			return nil
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
