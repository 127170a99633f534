// conf/utils.go various util functions for configuration package
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/qrregister/internal/errors"
	"github.com/tphakala/qrregister/internal/logger"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the configuration directories for the current OS.
// If a config.yaml exists in one of them, only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			filepath.Join(homeDir, "AppData", "Roaming", "qrregister"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "qrregister"),
			"/etc/qrregister",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// GetBasePath expands environment variables in path and makes sure the
// directory exists. A failure to create it is logged; callers find out on
// first use.
func GetBasePath(path string) string {
	basePath := filepath.Clean(os.ExpandEnv(path))

	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o750); err != nil {
			GetLogger().Warn("failed to create directory",
				logger.String("path", basePath),
				logger.Error(err))
		}
	}

	return basePath
}

// defaultDataDir is where the database and exports live when not configured.
func defaultDataDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		if runtime.GOOS == osWindows {
			return filepath.Join(dir, "AppData", "Local", "qrregister")
		}
		return filepath.Join(dir, ".local", "share", "qrregister")
	}
	return "."
}

// resolvePath expands env vars in p and joins it to base unless it is absolute.
func resolvePath(base, p string) string {
	p = os.ExpandEnv(p)
	if p == "" || filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(os.ExpandEnv(base), p)
}
