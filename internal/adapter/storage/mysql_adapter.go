package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/inventory-api/internal/core/domain"
	"github.com/rl1809/inventory-api/internal/port"
)

const mysqlDuplicateEntry = 1062

// MySQLAdapter implements port.ItemRepository and port.UserRepository over
// the authoritative relational store.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// InitSchema creates the tables if they are missing so a fresh database
// works without a separate migration step.
func (m *MySQLAdapter) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_users_username (username)
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			quantity INT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO items (name, description, quantity, price)
		VALUES (?, ?, ?, ?)`,
		item.Name, item.Description, item.Quantity, item.Price,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("item insert id: %w", err)
	}

	return m.GetItem(ctx, id)
}

func (m *MySQLAdapter) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, description, quantity, price, created_at, updated_at
		FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var it domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, quantity, price, created_at, updated_at
		FROM items WHERE id = ?`, id,
	).Scan(&it.ID, &it.Name, &it.Description, &it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &it, nil
}

func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, description = ?, quantity = ?, price = ?, updated_at = NOW()
		WHERE id = ?`,
		item.Name, item.Description, item.Quantity, item.Price, item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update item rows: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	// RowsAffected is zero both for a missing row and for a no-op overwrite
	// with identical values; only the former is a miss.
	existing, err := m.GetItem(ctx, item.ID)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, id int64) (bool, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item rows: %w", err)
	}
	return rows > 0, nil
}

func (m *MySQLAdapter) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, email)
		VALUES (?, ?, ?)`,
		user.Username, user.PasswordHash, user.Email,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, port.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}

	user.ID = id
	return &user, nil
}

func (m *MySQLAdapter) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, email, created_at
		FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
