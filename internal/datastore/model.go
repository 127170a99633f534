// model.go this code defines the data model for the application
package datastore

// Record is one registered QR code.
// Code is the primary key; Label is the only field that changes after creation.
type Record struct {
	Code             string `gorm:"column:code;primaryKey" json:"code"`
	Label            string `gorm:"column:label" json:"label"`
	CapturedAt       string `gorm:"column:captured_at" json:"capturedAt"`              // ISO-8601 UTC, millisecond precision
	UTCOffsetMinutes int    `gorm:"column:utc_offset_minutes" json:"utcOffsetMinutes"` // always 180
}

// TableName pins the table name regardless of GORM's naming strategy.
func (Record) TableName() string {
	return "records"
}
