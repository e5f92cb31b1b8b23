package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/rs/xid"
)

// Advancer advances a batch of items by one day.
type Advancer interface {
	AdvanceOneDay(items []*model.Item) (inventory.Report, error)
}

// DayFunc is called after every committed day.
type DayFunc func(day int, run model.DayRun)

// AdvanceDays advances the stored inventory days times. Each day runs in its own
// SQL transaction: if any item fails validation the whole day is rolled back,
// a failed run is recorded and the error is returned. Days committed before the
// failure stay committed.
func (s *SQLiteStorage) AdvanceDays(ctx context.Context, advancer Advancer, days int, onDay DayFunc) ([]model.DayRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if advancer == nil {
		return nil, fmt.Errorf("%w: advancer", ErrNilParameter)
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDays, days)
	}

	runs := make([]model.DayRun, 0, days)
	for day := 1; day <= days; day++ {
		select {
		case <-ctx.Done():
			return runs, ctx.Err()
		default:
		}

		run, err := s.advanceOneDay(ctx, advancer)
		if err != nil {
			if run != nil {
				runs = append(runs, *run)
			}
			return runs, fmt.Errorf("day %d: %w", day, err)
		}

		runs = append(runs, *run)
		if onDay != nil {
			onDay(day, *run)
		}
	}

	return runs, nil
}

func (s *SQLiteStorage) advanceOneDay(ctx context.Context, advancer Advancer) (*model.DayRun, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	items, err := s.getItemsTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrNoItems
	}

	run := &model.DayRun{
		ID:        xid.New().String(),
		StartedAt: time.Now(),
		Total:     len(items),
	}

	report, advanceErr := advancer.AdvanceOneDay(model.Pointers(items))
	run.Processed = report.Processed

	if advanceErr != nil {
		_ = tx.Rollback()

		run.Error = advanceErr.Error()
		var qualityErr *inventory.QualityError
		if errors.As(advanceErr, &qualityErr) && qualityErr.Index < len(items) {
			id := items[qualityErr.Index].ID
			run.FailedItemID = &id
		}

		if err := s.insertRun(ctx, s.db, run); err != nil {
			slog.Warn("Failed to record failed day run", "run_id", run.ID, "error", err)
		}

		slog.Warn("Day rolled back",
			"run_id", run.ID,
			"processed", run.Processed,
			"total", run.Total,
			"error", advanceErr)
		return run, advanceErr
	}

	run.Committed = true
	if err := s.insertRun(ctx, tx, run); err != nil {
		return nil, err
	}

	for i := range items {
		if err := s.saveItemTx(ctx, tx, &items[i]); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO item_history (run_id, item_id, sell_in, quality, recorded_at)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, items[i].ID, items[i].SellIn, items[i].Quality, run.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to record item history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit day: %w", err)
	}

	slog.Debug("Day committed", "run_id", run.ID, "items", run.Processed)
	return run, nil
}

func (s *SQLiteStorage) insertRun(ctx context.Context, q queryable, run *model.DayRun) error {
	var failedItemID sql.NullInt64
	if run.FailedItemID != nil {
		failedItemID = sql.NullInt64{Int64: int64(*run.FailedItemID), Valid: true}
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO day_runs (id, started_at, total, processed, committed, failed_item_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.Total, run.Processed, run.Committed, failedItemID, run.Error)
	if err != nil {
		return fmt.Errorf("failed to insert day run: %w", err)
	}
	return nil
}

// GetRuns returns the most recent day runs, newest first. A limit of 0 returns all runs.
func (s *SQLiteStorage) GetRuns(ctx context.Context, limit int) ([]model.DayRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, total, processed, committed, failed_item_id, COALESCE(error, '')
		FROM day_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query day runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.DayRun
	for rows.Next() {
		var run model.DayRun
		var failedItemID sql.NullInt64
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Total, &run.Processed, &run.Committed, &failedItemID, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan day run: %w", err)
		}
		if failedItemID.Valid {
			id := int(failedItemID.Int64)
			run.FailedItemID = &id
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day runs: %w", err)
	}

	return runs, nil
}

// ItemHistory returns the recorded states of an item, oldest first.
func (s *SQLiteStorage) ItemHistory(ctx context.Context, itemID int) ([]model.ItemSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, item_id, sell_in, quality, recorded_at
		FROM item_history
		WHERE item_id = ?
		ORDER BY id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.ItemSnapshot
	for rows.Next() {
		var snap model.ItemSnapshot
		if err := rows.Scan(&snap.RunID, &snap.ItemID, &snap.SellIn, &snap.Quality, &snap.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item history: %w", err)
		}
		history = append(history, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item history: %w", err)
	}

	return history, nil
}
