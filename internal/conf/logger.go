// Package conf provides configuration management for qrregister.
package conf

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
// It is fetched on each call so it follows the central logger once that is set.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
