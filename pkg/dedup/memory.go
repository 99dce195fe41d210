package dedup

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultWindow   = 24 * time.Hour
	cleanupInterval = 1 * time.Minute
)

// MemoryDeduper keeps the ledger in process memory. Suitable for a single
// worker; a fleet shares deliveries and needs the redis ledger.
type MemoryDeduper struct {
	seen *cache.Cache
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: cache.New(defaultWindow, cleanupInterval)}
}

// MarkIfFirst reports true only for the first call with key inside the ttl
// window. Add fails exactly when the key is present and not yet expired.
func (d *MemoryDeduper) MarkIfFirst(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := d.seen.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}

	return true, nil
}

func (d *MemoryDeduper) Close() error {
	d.seen.Flush()

	return nil
}
