// Package datastore provides error handling helpers for database operations
package datastore

import (
	"github.com/mattn/go-sqlite3"

	"github.com/tphakala/qrregister/internal/errors"
)

// Error type labels recorded with failed operations.
const (
	errTypeBusy       = "busy"
	errTypeLocked     = "locked"
	errTypeReadOnly   = "readonly"
	errTypeCorrupt    = "corrupt"
	errTypeFull       = "full"
	errTypeCantOpen   = "cantopen"
	errTypeConstraint = "constraint"
	errTypeNotFound   = "not_found"
	errTypeValidation = "validation"
	errTypeOther      = "other"
)

// dbError creates a storage error carrying the operation and optional key/value context.
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryStorage).
		Context("operation", operation).
		Context("error_type", classifyError(err))

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// notFoundError wraps ErrRecordNotFound with the missing code.
func notFoundError(code string) error {
	return errors.New(ErrRecordNotFound).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Context("code", code).
		Build()
}

// classifyError maps driver errors to a short label for metrics and logs.
func classifyError(err error) string {
	if err == nil {
		return ""
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrBusy:
			return errTypeBusy
		case sqlite3.ErrLocked:
			return errTypeLocked
		case sqlite3.ErrReadonly:
			return errTypeReadOnly
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return errTypeCorrupt
		case sqlite3.ErrFull:
			return errTypeFull
		case sqlite3.ErrCantOpen:
			return errTypeCantOpen
		case sqlite3.ErrConstraint:
			return errTypeConstraint
		}
		return errTypeOther
	}

	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		if ctxType, ok := enhanced.GetContext()["error_type"].(string); ok && ctxType != "" {
			return ctxType
		}
		switch enhanced.Category {
		case errors.CategoryNotFound:
			return errTypeNotFound
		case errors.CategoryValidation:
			return errTypeValidation
		}
	}

	return errTypeOther
}

// isRetryable reports whether the failure is transient lock contention.
func isRetryable(err error) bool {
	switch classifyError(err) {
	case errTypeBusy, errTypeLocked:
		return true
	}
	return false
}
