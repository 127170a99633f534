// Package export serializes records to CSV and delivers the file to the user.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/qrregister/internal/conf"
	"github.com/tphakala/qrregister/internal/datastore"
)

// Header is the first line of every export.
const Header = "QR Code,Name,Timestamp,Timezone Offset"

// BuildCSV renders records as CSV text. Text fields are wrapped in double
// quotes without escaping embedded quotes; rows are joined with "\n" and
// there is no trailing newline.
func BuildCSV(records []datastore.Record) string {
	var sb strings.Builder
	sb.WriteString(Header)
	for i := range records {
		rec := &records[i]
		sb.WriteByte('\n')
		sb.WriteByte('"')
		sb.WriteString(rec.Code)
		sb.WriteString(`","`)
		sb.WriteString(rec.Label)
		sb.WriteString(`","`)
		sb.WriteString(rec.CapturedAt)
		sb.WriteString(`",`)
		sb.WriteString(strconv.Itoa(rec.UTCOffsetMinutes))
	}
	return sb.String()
}

// FileName returns the export file name for the UTC date of now,
// e.g. qr-records-2024-01-15.csv.
func FileName(now time.Time) string {
	return conf.ExportFilePrefix + now.UTC().Format(time.DateOnly) + conf.ExportFileExt
}
