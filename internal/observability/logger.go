package observability

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the metrics module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("metrics")
}
