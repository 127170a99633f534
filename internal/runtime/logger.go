package runtime

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the runtime module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("runtime")
}
