package registration

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the registration module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("registration")
}
