package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// SaveItem inserts a new item (ID == 0) or updates an existing one.
// On insert the generated ID and timestamps are written back to item.
func (s *SQLiteStorage) SaveItem(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}
	return s.saveItemTx(ctx, s.db, item)
}

func (s *SQLiteStorage) saveItemTx(ctx context.Context, q queryable, item *model.Item) error {
	now := time.Now()

	if item.ID == 0 {
		result, err := q.ExecContext(ctx, `
			INSERT INTO items (name, sell_in, quality, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, item.Name, item.SellIn, item.Quality, now, now)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get item ID: %w", err)
		}

		item.ID = int(id)
		item.CreatedAt = now
		item.UpdatedAt = now
		slog.Debug("saved item", "id", item.ID, "name", item.Name)
		return nil
	}

	result, err := q.ExecContext(ctx, `
		UPDATE items SET name = ?, sell_in = ?, quality = ?, updated_at = ?
		WHERE id = ?
	`, item.Name, item.SellIn, item.Quality, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %d: %w", item.ID, common.ErrNotFound)
	}

	item.UpdatedAt = now
	return nil
}

// ImportItems saves items in a single transaction. With replace set, the
// existing inventory is removed first.
func (s *SQLiteStorage) ImportItems(ctx context.Context, items []model.Item, replace bool) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for i := range items {
		if err := validateItem(&items[i]); err != nil {
			return 0, fmt.Errorf("item at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
			return 0, fmt.Errorf("failed to clear items: %w", err)
		}
	}

	for i := range items {
		item := items[i]
		item.ID = 0
		if err := s.saveItemTx(ctx, tx, &item); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	slog.Info("imported items", "count", len(items), "replace", replace)
	return len(items), nil
}

// GetItems returns the whole inventory in insertion order.
func (s *SQLiteStorage) GetItems(ctx context.Context) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getItemsTx(ctx, s.db)
}

func (s *SQLiteStorage) getItemsTx(ctx context.Context, q queryable) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, sell_in, quality, created_at, updated_at
		FROM items
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.SellIn, &item.Quality, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	slog.Debug("retrieved items", "count", len(items))
	return items, nil
}

// GetItem returns a single item by ID.
func (s *SQLiteStorage) GetItem(ctx context.Context, id int) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var item model.Item
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, sell_in, quality, created_at, updated_at
		FROM items
		WHERE id = ?
	`, id).Scan(&item.ID, &item.Name, &item.SellIn, &item.Quality, &item.CreatedAt, &item.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return &item, nil
}

// DeleteItem removes a single item.
func (s *SQLiteStorage) DeleteItem(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("item %d: %w", id, common.ErrNotFound)
	}

	return nil
}

// DeleteAllItems empties the inventory and returns how many items were removed.
func (s *SQLiteStorage) DeleteAllItems(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}

	return int(rows), nil
}
