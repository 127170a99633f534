package notice

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the notice module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("notice")
}
