// interfaces.go: this code defines the interface for the record store operations
package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
	"github.com/tphakala/qrregister/internal/observability/metrics"
)

const (
	maxWriteAttempts  = 3
	writeRetryBackoff = 50 * time.Millisecond
)

// ErrRecordNotFound is returned by Rename when no record has the given code.
var ErrRecordNotFound = errors.NewStd("record not found")

// Interface abstracts the underlying store implementation.
type Interface interface {
	// Initialize opens the store and ensures the schema exists. Safe to call repeatedly.
	Initialize(ctx context.Context) error
	Exists(ctx context.Context, code string) (bool, error)
	// Upsert inserts rec or replaces the row with the same code.
	Upsert(ctx context.Context, rec Record) error
	// ListAll returns every record in no particular order.
	ListAll(ctx context.Context) ([]Record, error)
	// Rename updates the label only. A missing code yields ErrRecordNotFound.
	Rename(ctx context.Context, code, label string) error
	// Remove deletes the record; a missing code is not an error.
	Remove(ctx context.Context, code string) error
	Close() error
}

// New creates the store selected by settings. Nothing is opened until Initialize.
func New(settings *conf.Settings, recorder metrics.Recorder) Interface {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if settings.Store.Memory {
		return NewMemoryStore(recorder)
	}
	return &SQLiteStore{
		DataStore: DataStore{metrics: recorder},
		Settings:  settings,
	}
}

// DataStore implements the record operations on top of a GORM database.
type DataStore struct {
	DB      *gorm.DB // GORM database instance
	metrics metrics.Recorder
}

func (ds *DataStore) recorder() metrics.Recorder {
	if ds.metrics == nil {
		return metrics.NoopRecorder{}
	}
	return ds.metrics
}

func (ds *DataStore) ready(operation string) error {
	if ds.DB == nil {
		return dbError(errors.NewStd("database connection is not initialized"), operation)
	}
	return nil
}

// Exists reports whether a record with code is stored.
func (ds *DataStore) Exists(ctx context.Context, code string) (found bool, err error) {
	start := time.Now()
	defer func() { observe(ds.recorder(), metrics.OpExists, start, err) }()

	if err = ds.ready(metrics.OpExists); err != nil {
		return false, err
	}

	var count int64
	if dbErr := ds.DB.WithContext(ctx).Model(&Record{}).Where("code = ?", code).Count(&count).Error; dbErr != nil {
		err = dbError(dbErr, metrics.OpExists, "code", code)
		return false, err
	}
	return count > 0, nil
}

// Upsert inserts rec, replacing every column of an existing row with the same code.
func (ds *DataStore) Upsert(ctx context.Context, rec Record) (err error) {
	start := time.Now()
	defer func() { observe(ds.recorder(), metrics.OpUpsert, start, err) }()

	if err = validateRecord(rec); err != nil {
		return err
	}
	if err = ds.ready(metrics.OpUpsert); err != nil {
		return err
	}

	var dbErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		dbErr = ds.DB.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				UpdateAll: true,
			}).
			Create(&rec).Error
		if dbErr == nil || !isRetryable(dbErr) || attempt == maxWriteAttempts {
			break
		}
		GetLogger().Debug("database busy, retrying write",
			logger.String("code", rec.Code),
			logger.Int("attempt", attempt))
		select {
		case <-ctx.Done():
			err = dbError(ctx.Err(), metrics.OpUpsert, "code", rec.Code)
			return err
		case <-time.After(time.Duration(attempt) * writeRetryBackoff):
		}
	}
	if dbErr != nil {
		err = dbError(dbErr, metrics.OpUpsert, "code", rec.Code)
		return err
	}

	GetLogger().Debug("record stored",
		logger.String("code", rec.Code),
		logger.String("label", rec.Label))
	return nil
}

// ListAll returns all stored records.
func (ds *DataStore) ListAll(ctx context.Context) (records []Record, err error) {
	start := time.Now()
	defer func() { observe(ds.recorder(), metrics.OpListAll, start, err) }()

	if err = ds.ready(metrics.OpListAll); err != nil {
		return nil, err
	}

	if dbErr := ds.DB.WithContext(ctx).Find(&records).Error; dbErr != nil {
		err = dbError(dbErr, metrics.OpListAll)
		return nil, err
	}
	updateRecordCount(ds.recorder(), len(records))
	return records, nil
}

// Rename sets a new label on an existing record.
func (ds *DataStore) Rename(ctx context.Context, code, label string) (err error) {
	start := time.Now()
	defer func() { observe(ds.recorder(), metrics.OpRename, start, err) }()

	if err = ds.ready(metrics.OpRename); err != nil {
		return err
	}

	result := ds.DB.WithContext(ctx).Model(&Record{}).Where("code = ?", code).Update("label", label)
	if result.Error != nil {
		err = dbError(result.Error, metrics.OpRename, "code", code)
		return err
	}
	if result.RowsAffected == 0 {
		return notFoundError(code)
	}
	return nil
}

// Remove deletes the record with code if present.
func (ds *DataStore) Remove(ctx context.Context, code string) (err error) {
	start := time.Now()
	defer func() { observe(ds.recorder(), metrics.OpRemove, start, err) }()

	if err = ds.ready(metrics.OpRemove); err != nil {
		return err
	}

	if dbErr := ds.DB.WithContext(ctx).Where("code = ?", code).Delete(&Record{}).Error; dbErr != nil {
		err = dbError(dbErr, metrics.OpRemove, "code", code)
		return err
	}
	return nil
}

// validateRecord rejects records the rest of the system could not display or key.
func validateRecord(rec Record) error {
	if rec.Code == "" {
		return errors.ValidationError("datastore", "record code is empty")
	}
	return nil
}
