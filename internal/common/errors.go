// Package common defines shared constants and sentinel errors used across
// the Content Hub components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal  = errors.New("internal error")
	ErrorForbidden = errors.New("forbidden")

	// ErrorConflict is returned when a status transition is rejected,
	// e.g. an attempt to move a record backward in its lifecycle.
	ErrorConflict = errors.New("status conflict")

	// ErrorNotReady is returned when a download capability is requested
	// before the upload has been confirmed.
	ErrorNotReady = errors.New("upload not completed")

	// ErrorInjectedFailure is returned when the failure-injection gate
	// denies a guarded operation.
	ErrorInjectedFailure = errors.New("injected failure")

	// ErrorTransientStorage marks failures of the underlying store or
	// storage provider that the caller/delivery mechanism should retry.
	ErrorTransientStorage = errors.New("transient storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
