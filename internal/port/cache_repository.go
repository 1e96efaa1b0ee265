package port

import (
	"context"
	"time"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

// ItemCache is a disposable accelerator in front of ItemRepository reads.
// The store stays authoritative: entries may be stale up to their TTL and may
// vanish at any time.
type ItemCache interface {
	// GetItem returns the cached snapshot for id, (nil, nil) on a miss.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// SetItem stores a snapshot of the item that expires after ttl.
	SetItem(ctx context.Context, item domain.Item, ttl time.Duration) error

	// DeleteItem removes the entry for id. Deleting an absent entry is not
	// an error.
	DeleteItem(ctx context.Context, id int64) error
}
