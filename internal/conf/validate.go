// conf/validate.go

package conf

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) error{
		validateStoreSettings,
		validateCaptureSettings,
		validateRegistrationSettings,
		validateLoggingSettings,
	}
	for _, validate := range validators {
		if err := validate(settings); err != nil {
			ve.Errors = append(ve.Errors, err.Error())
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateStoreSettings(settings *Settings) error {
	if !settings.Store.Memory && strings.TrimSpace(settings.Store.Path) == "" {
		return fmt.Errorf("store.path is required unless store.memory is enabled")
	}
	if settings.Store.SlowThreshold < 0 {
		return fmt.Errorf("store.slowthreshold must not be negative")
	}
	return nil
}

func validateCaptureSettings(settings *Settings) error {
	if settings.Capture.Cooldown < 0 {
		return fmt.Errorf("capture.cooldown must not be negative")
	}
	if settings.Capture.Camera && strings.TrimSpace(settings.Capture.Command) == "" {
		return fmt.Errorf("capture.command is required when capture.camera is enabled")
	}
	return nil
}

func validateRegistrationSettings(settings *Settings) error {
	durations := map[string]time.Duration{
		"registration.warningduration": settings.Registration.WarningDuration,
		"registration.successduration": settings.Registration.SuccessDuration,
		"registration.errorduration":   settings.Registration.ErrorDuration,
	}
	var bad []string
	for key, d := range durations {
		if d <= 0 {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		slices.Sort(bad)
		return fmt.Errorf("notice durations must be positive: %s", strings.Join(bad, ", "))
	}
	return nil
}

func validateLoggingSettings(settings *Settings) error {
	switch settings.Logging.DefaultLevel {
	case "", "trace", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("logging.default_level %q is not a valid level", settings.Logging.DefaultLevel)
}
