// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"log/slog"

	"github.com/fieldline/fieldline/pkg/actions/customernotify"
	"github.com/fieldline/fieldline/pkg/actions/invoicedraft"
	logaction "github.com/fieldline/fieldline/pkg/actions/log"
	"github.com/fieldline/fieldline/pkg/actions/webhook"
	"github.com/fieldline/fieldline/pkg/dedup"
	"github.com/fieldline/fieldline/pkg/numbering"
	"github.com/fieldline/fieldline/pkg/persistence"
	"github.com/fieldline/fieldline/pkg/registry"
)

func registerNativeActions(reg *registry.Registry, persist persistence.Persistence, numbers *numbering.Allocator, laborRate float64) {
	reg.RegisterAction(invoicedraft.NewActionFactory(persist, numbers, laborRate))
	reg.RegisterAction(customernotify.NewActionFactory(persist))
	reg.RegisterAction(logaction.NewActionFactory())
	reg.RegisterAction(webhook.NewActionFactory())
}

// NewRegistry builds the action registry with the native factories. laborRate
// is the fallback hourly rate for drafted invoices when neither the trigger
// params nor the work order carry one.
func NewRegistry(log *slog.Logger, persist persistence.Persistence, numbers *numbering.Allocator, laborRate float64) *registry.Registry {
	reg := registry.NewRegistry(log)

	registerNativeActions(reg, persist, numbers, laborRate)

	return reg
}

// NewDeduper picks the idempotency ledger backend: redis when an address is
// configured, otherwise the per-process in-memory ledger.
func NewDeduper(ctx context.Context, redisAddr, redisPassword string, redisDB int) (dedup.Deduper, error) {
	if redisAddr == "" {
		return dedup.NewMemoryDeduper(), nil
	}

	return dedup.NewRedisDeduper(ctx, redisAddr, redisPassword, redisDB)
}
