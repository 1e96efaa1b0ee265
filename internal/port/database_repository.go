package port

import (
	"context"
	"errors"

	"github.com/rl1809/inventory-api/internal/core/domain"
)

// ErrDuplicateUsername is returned by CreateUser when the username collides
// with an existing row.
var ErrDuplicateUsername = errors.New("duplicate username")

type ItemRepository interface {
	// CreateItem persists a new item and returns it with its assigned id.
	CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error)

	// ListItems returns all items in id order.
	ListItems(ctx context.Context) ([]domain.Item, error)

	// GetItem retrieves an item by id, (nil, nil) if absent.
	GetItem(ctx context.Context, id int64) (*domain.Item, error)

	// UpdateItem overwrites all mutable fields of the item with the given id,
	// returning false if no such row exists.
	UpdateItem(ctx context.Context, item domain.Item) (bool, error)

	// DeleteItem removes the item, returning false if no such row exists.
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type UserRepository interface {
	// CreateUser persists a new user and returns it with its assigned id.
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)

	// GetUserByUsername retrieves a user by username, (nil, nil) if absent.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}
