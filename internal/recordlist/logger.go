package recordlist

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the record list module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("recordlist")
}
