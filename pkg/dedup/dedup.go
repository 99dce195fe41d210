// Package dedup provides the fast-path duplicate-delivery ledger used by the
// automation executor. The ledger is advisory: the invoice and notification
// repositories keep the authoritative idempotency check on their own
// collections.
package dedup

import (
	"context"
	"time"
)

// Deduper records idempotency keys as they are dispatched.
type Deduper interface {
	// MarkIfFirst records key and reports whether this is its first sighting
	// within the ttl window. A zero ttl falls back to the ledger's default
	// window.
	MarkIfFirst(ctx context.Context, key string, ttl time.Duration) (bool, error)

	Close() error
}
