// Package timeformat renders record timestamps for display and export.
//
// All wall-clock output uses a fixed UTC+3 offset labelled "EAT". The zone
// is built with time.FixedZone, so no timezone database is consulted and
// the result does not depend on the host's locale.
package timeformat

import (
	"strings"
	"time"

	"github.com/tphakala/qrregister/internal/conf"
)

const (
	// ISOLayout is the storage format for capture timestamps, matching
	// JavaScript's Date.toISOString output.
	ISOLayout = "2006-01-02T15:04:05.000Z"

	displayLayout = "Jan 2, 2006, 3:04 PM"
	csvLayout     = "01/02/2006 15:04:05"

	// UnknownDisplay is shown when a timestamp is missing or unreadable.
	UnknownDisplay = "Unknown date"
	// UnknownCSV is written to CSV columns when a timestamp is missing or unreadable.
	UnknownCSV = "N/A"
)

var eat = time.FixedZone(conf.ZoneName, conf.UTCOffsetMinutes*60)

// Zone returns the fixed display zone.
func Zone() *time.Location {
	return eat
}

// ToEAT shifts t into the fixed display zone.
func ToEAT(t time.Time) time.Time {
	return t.UTC().In(eat)
}

// FormatISO returns t in UTC with millisecond precision, e.g. 2024-01-15T10:30:00.000Z.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds.
func ParseTimestamp(ts string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(ts))
}

// FormatDisplayTime renders ts as "Jan 15, 2024, 1:30 PM EAT".
func FormatDisplayTime(ts string) string {
	t, ok := parse(ts)
	if !ok {
		return UnknownDisplay
	}
	return ToEAT(t).Format(displayLayout) + " " + conf.ZoneName
}

// FormatCSVTime renders ts as "01/15/2024 13:30:00 EAT".
func FormatCSVTime(ts string) string {
	t, ok := parse(ts)
	if !ok {
		return UnknownCSV
	}
	return ToEAT(t).Format(csvLayout) + " " + conf.ZoneName
}

func parse(ts string) (time.Time, bool) {
	if strings.TrimSpace(ts) == "" {
		return time.Time{}, false
	}
	t, err := ParseTimestamp(ts)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
