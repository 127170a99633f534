// Package errors wraps errors with a category, the component that raised
// them and key/value context. It also passes through the standard library
// helpers, so callers import only this package.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"time"
)

// ErrorCategory groups errors for logging, metrics and user messages.
type ErrorCategory string

const (
	// CategoryStorage covers I/O and schema failures of the record store
	CategoryStorage    ErrorCategory = "storage"
	// CategoryExport covers failures to serialize, write or hand off CSV files
	CategoryExport     ErrorCategory = "export"
	// CategoryPermission covers camera or device capability denial
	CategoryPermission ErrorCategory = "permission-denied"
	// CategoryValidation covers rejected input such as empty codes
	CategoryValidation ErrorCategory = "validation"

	CategoryFileIO        ErrorCategory = "file-io"
	CategoryConfiguration ErrorCategory = "configuration"
	CategorySystem        ErrorCategory = "system-resource"
	CategoryNotFound      ErrorCategory = "not-found"
	CategoryState         ErrorCategory = "state"
	CategoryGeneric       ErrorCategory = "generic"
)

// componentUnknown is reported when no component was set.
const componentUnknown = "unknown"

// EnhancedError is an error with category, component and context.
type EnhancedError struct {
	Err       error
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	component string
}

func (ee *EnhancedError) Error() string {
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error {
	return ee.Err
}

// GetComponent returns the component that raised the error.
func (ee *EnhancedError) GetComponent() string {
	if ee.component == "" {
		return componentUnknown
	}
	return ee.component
}

// GetContext returns a copy of the error context.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.Context == nil {
		return nil
	}
	return maps.Clone(ee.Context)
}

// ErrorBuilder builds an EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts an enhanced error wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts an enhanced error from a format string.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context adds a key/value pair. Later values replace earlier ones.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// FileContext records the base name and extension of filePath. Directories
// are left out so user paths do not end up in logs.
func (eb *ErrorBuilder) FileContext(filePath string) *ErrorBuilder {
	if filePath == "" {
		return eb
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filePath)), ".")
	if ext == "" {
		ext = "none"
	}
	return eb.Context("file_name", filepath.Base(filePath)).
		Context("file_extension", ext)
}

// Build creates the error. Without an explicit category one is inherited
// from a wrapped EnhancedError or guessed from the message.
func (eb *ErrorBuilder) Build() *EnhancedError {
	category := eb.category
	if category == "" {
		category = detectCategory(eb.err)
	}
	return &EnhancedError{
		Err:       eb.err,
		Category:  category,
		Context:   eb.context,
		Timestamp: time.Now(),
		component: eb.component,
	}
}

func detectCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryGeneric
	}

	var inner *EnhancedError
	if As(err, &inner) && inner.Category != "" {
		return inner.Category
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database"), strings.Contains(msg, "sqlite"):
		return CategoryStorage
	case strings.Contains(msg, "permission"):
		return CategoryPermission
	case strings.Contains(msg, "file"), strings.Contains(msg, "open"):
		return CategoryFileIO
	case strings.Contains(msg, "invalid"), strings.Contains(msg, "empty"):
		return CategoryValidation
	}
	return CategoryGeneric
}

// ExportError creates a CSV export error with file context.
func ExportError(err error, filePath string) *EnhancedError {
	return New(err).
		Component("export").
		Category(CategoryExport).
		FileContext(filePath).
		Build()
}

// ValidationError creates a validation error raised by component.
func ValidationError(component, message string) *EnhancedError {
	return New(NewStd(message)).
		Component(component).
		Category(CategoryValidation).
		Build()
}

// IsCategory reports whether err wraps an EnhancedError of category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}

// IsNotFound reports whether err wraps a not-found error.
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}

// Standard library passthroughs.

func NewStd(text string) error      { return stderrors.New(text) }
func Is(err, target error) bool     { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Join(errs ...error) error      { return stderrors.Join(errs...) }
func Unwrap(err error) error        { return stderrors.Unwrap(err) }
