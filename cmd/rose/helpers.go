package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/config"
	"github.com/Veraticus/the-gilded-rose/internal/storage"
	"github.com/spf13/viper"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, common.NewUserError("Could not open the inventory database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func parseItemID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item ID %q", arg)
	}
	return id, nil
}
