package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// GormLoggerAdapter adapts Logger to GORM's logger.Interface.
// SQL statements are logged at TRACE level and only show up when the
// datastore module runs at "trace":
//
//	store := logger.NewGormLoggerAdapter(centralLogger.Module("datastore"), 200*time.Millisecond)
//	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: store})
type GormLoggerAdapter struct {
	logger        Logger
	slowThreshold time.Duration
}

// NewGormLoggerAdapter creates a new GORM logger adapter. Statements slower
// than slowThreshold are logged at WARN; 0 disables the check. A nil logger
// falls back to a discard logger.
func NewGormLoggerAdapter(logger Logger, slowThreshold time.Duration) *GormLoggerAdapter {
	if logger == nil {
		logger = NewDiscardLogger()
	}
	return &GormLoggerAdapter{
		logger:        logger,
		slowThreshold: slowThreshold,
	}
}

// LogMode returns the adapter itself; levels come from the module logger.
func (a *GormLoggerAdapter) LogMode(_ gorm_logger.LogLevel) gorm_logger.Interface {
	return a
}

// Info maps GORM's verbose info output to DEBUG.
func (a *GormLoggerAdapter) Info(_ context.Context, msg string, data ...any) {
	a.logger.Debug(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Warn(_ context.Context, msg string, data ...any) {
	a.logger.Warn(fmt.Sprintf(msg, data...))
}

func (a *GormLoggerAdapter) Error(_ context.Context, msg string, data ...any) {
	a.logger.Error(fmt.Sprintf(msg, data...))
}

// Trace logs one executed statement. Failed and slow statements go to WARN,
// everything else to TRACE. ErrRecordNotFound is an expected outcome of
// lookups and is not treated as a failure.
func (a *GormLoggerAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	log := a.logger.WithContext(ctx)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		log.Warn("statement failed",
			String("sql", sql),
			Int("rows_affected", int(rows)),
			Duration("elapsed", elapsed),
			Error(err))

	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		log.Warn("slow statement",
			String("sql", sql),
			Int("rows_affected", int(rows)),
			Duration("elapsed", elapsed),
			Duration("threshold", a.slowThreshold))

	default:
		log.Trace("statement",
			String("sql", sql),
			Int("rows_affected", int(rows)),
			Duration("elapsed", elapsed))
	}
}
