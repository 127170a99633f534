package datastore

import (
	"slices"
	"time"

	"github.com/tphakala/qrregister/internal/timeformat"
)

// SortNewestFirst returns a copy of records ordered by CapturedAt, newest
// first. Records whose timestamp cannot be parsed keep their relative order
// and go last.
func SortNewestFirst(records []Record) []Record {
	type keyed struct {
		rec Record
		at  time.Time
		ok  bool
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		at, err := timeformat.ParseTimestamp(rec.CapturedAt)
		items[i] = keyed{rec: rec, at: at, ok: err == nil}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return 0
	})

	sorted := make([]Record, len(items))
	for i := range items {
		sorted[i] = items[i].rec
	}
	return sorted
}
