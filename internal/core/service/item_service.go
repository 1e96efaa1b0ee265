package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/port"
)

var ErrItemNotFound = errors.New("item not found")

// ItemService orchestrates inventory CRUD over the authoritative store with a
// read-through cache on single-item lookups.
type ItemService struct {
	db       port.ItemRepository
	cache    port.ItemCache
	cacheTTL time.Duration
}

func NewItemService(db port.ItemRepository, cache port.ItemCache, cacheTTL time.Duration) *ItemService {
	return &ItemService{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *ItemService) List(ctx context.Context) ([]domain.Item, error) {
	items, err := s.db.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// Create persists a new item. The cache is not pre-populated; the first read
// warms it.
func (s *ItemService) Create(ctx context.Context, item domain.Item) (*domain.Item, error) {
	created, err := s.db.CreateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return created, nil
}

// Get looks the item up through the cache, populating it on a store hit.
func (s *ItemService) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// Update overwrites all fields of an existing item and removes its cache
// entry before returning, so a subsequent read can never observe the
// pre-update snapshot through this process.
func (s *ItemService) Update(ctx context.Context, item domain.Item) (*domain.Item, error) {
	existing, err := s.lookup(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrItemNotFound
	}

	ok, err := s.db.UpdateItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}

	s.invalidate(ctx, item.ID)

	if !ok {
		// Row vanished between the cached lookup and the write.
		return nil, ErrItemNotFound
	}
	return &item, nil
}

// Delete removes the item and its cache entry.
func (s *ItemService) Delete(ctx context.Context, id int64) error {
	existing, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrItemNotFound
	}

	ok, err := s.db.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.invalidate(ctx, id)

	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// lookup is the shared cached read: cache get, fall through to the store on a
// miss, populate the cache on a store hit. Cache failures count as misses;
// only the store path can fail the request.
func (s *ItemService) lookup(ctx context.Context, id int64) (*domain.Item, error) {
	cached, err := s.cache.GetItem(ctx, id)
	if err != nil {
		slog.DebugContext(ctx, "item cache read failed, falling through", "item_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	item, err := s.db.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	if err := s.cache.SetItem(ctx, *item, s.cacheTTL); err != nil {
		slog.DebugContext(ctx, "item cache populate failed", "item_id", id, "error", err)
	}
	return item, nil
}

func (s *ItemService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.DeleteItem(ctx, id); err != nil {
		// The entry self-expires within its TTL; log and move on.
		slog.WarnContext(ctx, "item cache invalidation failed", "item_id", id, "error", err)
	}
}
