package datastore

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// SQLiteStore implements Interface for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings

	mu sync.Mutex
}

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings == nil {
		return errors.New(errors.NewStd("settings are nil")).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Build()
	}
	if settings.Store.Path == "" {
		return errors.New(errors.NewStd("sqlite path is empty")).
			Component("datastore").
			Category(errors.CategoryConfiguration).
			Context("setting", "store.path").
			Build()
	}
	return nil
}

// Initialize opens the SQLite database and migrates the records table.
// Calling it on an open store is a no-op.
func (store *SQLiteStore) Initialize(ctx context.Context) (err error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.DB != nil {
		return nil
	}

	start := time.Now()
	defer func() { observe(store.recorder(), metrics.OpInitialize, start, err) }()

	if err = validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	dir, fileName := filepath.Split(store.Settings.StorePath())
	basePath := conf.GetBasePath(dir)
	absoluteFilePath := filepath.Join(basePath, fileName)

	gormLogger := logger.NewGormLoggerAdapter(GetLogger(), store.Settings.Store.SlowThreshold)

	db, openErr := gorm.Open(sqlite.Open(absoluteFilePath+"?_busy_timeout=5000"), &gorm.Config{Logger: gormLogger})
	if openErr != nil {
		err = dbError(openErr, metrics.OpInitialize, "path", absoluteFilePath)
		return err
	}

	if migrateErr := db.WithContext(ctx).AutoMigrate(&Record{}); migrateErr != nil {
		closeDB(db)
		err = dbError(migrateErr, metrics.OpInitialize, "path", absoluteFilePath, "stage", "migrate")
		return err
	}

	store.DB = db
	GetLogger().Info("database opened",
		logger.String("path", absoluteFilePath))
	return nil
}

// Close releases the database connection. Closing a store that was never
// opened is a no-op.
func (store *SQLiteStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.DB == nil {
		return nil
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	store.DB = nil
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			GetLogger().Warn("failed to close database", logger.Error(err))
		}
	}
}
