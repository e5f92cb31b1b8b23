package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/xid"
)

// maxAutoCheckpoints is how many automatic checkpoints are kept before the oldest are pruned.
const maxAutoCheckpoints = 5

// CheckpointManager snapshots and restores the inventory database.
type CheckpointManager struct {
	store          *SQLiteStorage
	checkpointsDir string
}

// CheckpointMetadata is stored next to each snapshot as <id>.meta.json.
type CheckpointMetadata struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Items         int       `json:"items"`
	DayRuns       int       `json:"day_runs"`
	SchemaVersion int       `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// Checkpoint errors.
var (
	ErrCheckpointNotFound    = errors.New("checkpoint not found")
	ErrCheckpointCorrupted   = errors.New("checkpoint integrity check failed")
	ErrCheckpointExists      = errors.New("checkpoint already exists")
	ErrInvalidCheckpointTag  = errors.New("invalid checkpoint tag: cannot contain path separators")
	ErrCheckpointUnsupported = errors.New("checkpoints require a file-backed database")
)

// NewCheckpointManager returns a manager that keeps snapshots in a
// "checkpoints" directory next to the database file.
func (s *SQLiteStorage) NewCheckpointManager() (*CheckpointManager, error) {
	if s.dbPath == memoryPath {
		return nil, ErrCheckpointUnsupported
	}

	checkpointsDir := filepath.Join(filepath.Dir(s.dbPath), "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	return &CheckpointManager{
		store:          s,
		checkpointsDir: checkpointsDir,
	}, nil
}

// Dir returns the directory holding the snapshots.
func (cm *CheckpointManager) Dir() string {
	return cm.checkpointsDir
}

// Create snapshots the database under tag. An empty tag is generated from the current time.
func (cm *CheckpointManager) Create(ctx context.Context, tag, description string) (*CheckpointMetadata, error) {
	return cm.create(ctx, tag, description, false)
}

// AutoCheckpoint snapshots the database before an operation named by prefix
// and prunes old automatic snapshots.
func (cm *CheckpointManager) AutoCheckpoint(ctx context.Context, prefix string) (*CheckpointMetadata, error) {
	tag := fmt.Sprintf("auto-%s-%s", prefix, xid.New().String())
	meta, err := cm.create(ctx, tag, fmt.Sprintf("Automatic checkpoint before %s", prefix), true)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto-checkpoint: %w", err)
	}

	if err := cm.cleanupOldAutoCheckpoints(ctx); err != nil {
		slog.Warn("failed to clean up old auto-checkpoints", "error", err)
	}

	return meta, nil
}

func (cm *CheckpointManager) create(ctx context.Context, tag, description string, auto bool) (*CheckpointMetadata, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if tag == "" {
		tag = fmt.Sprintf("checkpoint-%s", time.Now().Format("2006-01-02-150405"))
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	checkpointPath := cm.snapshotPath(tag)
	if _, err := os.Stat(checkpointPath); err == nil {
		return nil, ErrCheckpointExists
	}

	meta := CheckpointMetadata{
		ID:          tag,
		CreatedAt:   time.Now(),
		Description: description,
		IsAuto:      auto,
	}

	db := cm.store.db
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&meta.SchemaVersion); err != nil {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&meta.Items); err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM day_runs").Scan(&meta.DayRuns); err != nil {
		return nil, fmt.Errorf("failed to count day runs: %w", err)
	}

	// VACUUM INTO produces a consistent copy even with a live WAL.
	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(checkpointPath, "'", "''"))
	if _, err := db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to backup database: %w", err)
	}

	info, err := os.Stat(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	meta.FileSize = info.Size()

	if err := saveMetadata(cm.metadataPath(tag), meta); err != nil {
		if rmErr := os.Remove(checkpointPath); rmErr != nil {
			slog.Error("failed to remove checkpoint file after metadata save failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save metadata: %w", err)
	}

	slog.Debug("Checkpoint created", "id", tag, "items", meta.Items, "auto", auto)
	return &meta, nil
}

// List returns all checkpoints, newest first. Unreadable metadata files are skipped.
func (cm *CheckpointManager) List(_ context.Context) ([]CheckpointMetadata, error) {
	entries, err := os.ReadDir(cm.checkpointsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoints directory: %w", err)
	}

	checkpoints := make([]CheckpointMetadata, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		meta, err := loadMetadata(filepath.Join(cm.checkpointsDir, entry.Name()))
		if err != nil {
			slog.Debug("skipping unreadable checkpoint metadata", "file", entry.Name(), "error", err)
			continue
		}
		checkpoints = append(checkpoints, *meta)
	}

	sort.SliceStable(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// Get returns the metadata of a single checkpoint.
func (cm *CheckpointManager) Get(_ context.Context, id string) (*CheckpointMetadata, error) {
	if err := validateTag(id); err != nil {
		return nil, err
	}

	meta, err := loadMetadata(cm.metadataPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint metadata: %w", err)
	}
	return meta, nil
}

// Restore replaces the database with the snapshot id and reopens the storage on it.
func (cm *CheckpointManager) Restore(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := cm.Get(ctx, id); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := verifyIntegrity(ctx, checkpointPath); err != nil {
		slog.Error("checkpoint failed integrity check", "id", id, "error", err)
		return ErrCheckpointCorrupted
	}

	dbPath := cm.store.dbPath
	if err := cm.store.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	backupPath := dbPath + ".restore-backup"
	if err := copyFile(dbPath, backupPath); err != nil {
		return cm.reopen(fmt.Errorf("failed to backup current database: %w", err))
	}

	// Stale WAL frames would otherwise be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove journal file", "path", dbPath+suffix, "error", err)
		}
	}

	if err := copyFile(checkpointPath, dbPath); err != nil {
		if restoreErr := copyFile(backupPath, dbPath); restoreErr != nil {
			slog.Error("failed to restore backup after checkpoint restore failure", "error", restoreErr)
		}
		return cm.reopen(fmt.Errorf("failed to restore checkpoint: %w", err))
	}

	if err := os.Remove(backupPath); err != nil {
		slog.Error("failed to remove backup file", "error", err)
	}

	return cm.reopen(nil)
}

// reopen points the storage at a fresh connection and returns cause.
func (cm *CheckpointManager) reopen(cause error) error {
	db, err := openDB(cm.store.dbPath)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("failed to reopen database: %w", err))
	}
	cm.store.db = db
	return cause
}

// Delete removes a checkpoint and its metadata.
func (cm *CheckpointManager) Delete(_ context.Context, id string) error {
	if err := validateTag(id); err != nil {
		return err
	}

	checkpointPath := cm.snapshotPath(id)
	if _, err := os.Stat(checkpointPath); err != nil {
		if os.IsNotExist(err) {
			return ErrCheckpointNotFound
		}
		return fmt.Errorf("failed to access checkpoint: %w", err)
	}

	if err := os.Remove(checkpointPath); err != nil {
		return fmt.Errorf("failed to remove checkpoint file: %w", err)
	}

	if err := os.Remove(cm.metadataPath(id)); err != nil {
		slog.Debug("failed to remove metadata file", "error", err, "id", id)
	}

	return nil
}

func (cm *CheckpointManager) cleanupOldAutoCheckpoints(ctx context.Context) error {
	checkpoints, err := cm.List(ctx)
	if err != nil {
		return err
	}

	autoCount := 0
	for _, cp := range checkpoints {
		if !cp.IsAuto {
			continue
		}
		autoCount++
		if autoCount > maxAutoCheckpoints {
			if err := cm.Delete(ctx, cp.ID); err != nil {
				slog.Debug("failed to delete old auto-checkpoint during cleanup", "error", err, "checkpoint", cp.ID)
			}
		}
	}

	return nil
}

func (cm *CheckpointManager) snapshotPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".db")
}

func (cm *CheckpointManager) metadataPath(id string) string {
	return filepath.Join(cm.checkpointsDir, id+".meta.json")
}

func validateTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("%w: checkpoint tag", ErrEmptyString)
	}
	if strings.ContainsAny(tag, `/\`) || strings.Contains(tag, "..") {
		return ErrInvalidCheckpointTag
	}
	return nil
}

func saveMetadata(path string, meta CheckpointMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

func loadMetadata(path string) (*CheckpointMetadata, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from a validated tag
	if err != nil {
		return nil, err
	}

	var meta CheckpointMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}

	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}

	return nil
}

func copyFile(src, dst string) error {
	source, err := os.Open(src) //nolint:gosec // src is the database or a checkpoint path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			slog.Error("failed to close source file", "error", closeErr)
		}
	}()

	tmpDst := dst + ".tmp"
	destination, err := os.Create(tmpDst) //nolint:gosec // tmpDst is derived from dst
	if err != nil {
		return err
	}

	if _, err := io.Copy(destination, source); err != nil {
		_ = destination.Close()
		if rmErr := os.Remove(tmpDst); rmErr != nil {
			slog.Error("failed to remove temporary file after copy error", "error", rmErr)
		}
		return err
	}

	if err := destination.Close(); err != nil {
		if rmErr := os.Remove(tmpDst); rmErr != nil {
			slog.Error("failed to remove temporary file after close error", "error", rmErr)
		}
		return err
	}

	return os.Rename(tmpDst, dst)
}
