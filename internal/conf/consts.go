// conf/consts.go hard coded constants
package conf

const (
	UTCOffsetMinutes = 180   // fixed offset stored with every record and used for display
	ZoneName         = "EAT" // label appended to formatted times

	DefaultLabel = "Unnamed" // label used when a registration or rename leaves the name blank

	ExportFilePrefix = "qr-records-"
	ExportFileExt    = ".csv"

	DefaultStoreFile      = "qrregister.db"
	DefaultDecoderCommand = "zbarcam"
)
