package datastore

import (
	"time"

	"github.com/tphakala/qrregister/internal/observability/metrics"
)

// observe records one finished store operation.
func observe(rec metrics.Recorder, operation string, start time.Time, err error) {
	rec.RecordDuration(operation, time.Since(start).Seconds())
	if err != nil {
		rec.RecordOperation(operation, metrics.StatusError)
		rec.RecordError(operation, classifyError(err))
		return
	}
	rec.RecordOperation(operation, metrics.StatusSuccess)
}

// updateRecordCount forwards the listing size to recorders that track it.
func updateRecordCount(rec metrics.Recorder, count int) {
	if m, ok := rec.(interface{ UpdateRecordCount(int) }); ok {
		m.UpdateRecordCount(count)
	}
}
