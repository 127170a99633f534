package export

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the export module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("export")
}
