// Package datastore persists registered QR code records.
package datastore

import "github.com/tphakala/qrregister/internal/logger"

// GetLogger returns the datastore module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("datastore")
}
