// env.go - Environment variable configuration and validation for qrregister
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QRREGISTER"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "QRREGISTER_DEBUG", validateEnvBool},
		{"main.datadir", "QRREGISTER_DATADIR", validateEnvPath},

		{"store.path", "QRREGISTER_STORE_PATH", validateEnvPath},
		{"store.memory", "QRREGISTER_STORE_MEMORY", validateEnvBool},

		{"export.dir", "QRREGISTER_EXPORT_DIR", validateEnvPath},
		{"export.sharedir", "QRREGISTER_EXPORT_SHAREDIR", validateEnvPath},

		{"capture.camera", "QRREGISTER_CAPTURE_CAMERA", validateEnvBool},
		{"capture.command", "QRREGISTER_CAPTURE_COMMAND", nil},
		{"capture.cooldown", "QRREGISTER_CAPTURE_COOLDOWN", validateEnvDuration},

		{"logging.default_level", "QRREGISTER_LOG_LEVEL", validateEnvLogLevel},
		{"metrics.textfile", "QRREGISTER_METRICS_TEXTFILE", validateEnvPath},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value: must be true or false")
	}
	return nil
}

func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("must be a duration such as 2s or 500ms")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("must be one of trace, debug, info, warn, error")
}

// validateEnvPath rejects values that contain parent directory traversal.
func validateEnvPath(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("path cannot be empty")
	}
	for part := range strings.SplitSeq(filepath.ToSlash(value), "/") {
		if part == ".." {
			return fmt.Errorf("path must not contain '..'")
		}
	}
	return nil
}

// configureEnvironmentVariables enables automatic env lookup and explicit bindings.
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return bindEnvVars()
}
