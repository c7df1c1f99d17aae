// Package errors provides error handling for the batch processor.
//
// It re-exports github.com/cockroachdb/errors so that every package wraps
// errors the same way and keeps stack traces for the task log:
//
//	if err := store.DownloadToFile(ctx, c, name, path); err != nil {
//	    return errors.Wrapf(err, "download %s/%s", c, name)
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing hints and details
var (
	WithHint       = crdb.WithHint
	WithHintf      = crdb.WithHintf
	WithDetail     = crdb.WithDetail
	WithDetailf    = crdb.WithDetailf
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors shared across packages. Wrap them to add context while
// keeping errors.Is working.
var (
	// ErrNotFound indicates the requested blob or file does not exist
	ErrNotFound = New("not found")

	// ErrAlreadyExists indicates an upload would overwrite an existing blob
	ErrAlreadyExists = New("already exists")

	// ErrInvalidConfig indicates the configuration cannot be used as given
	ErrInvalidConfig = New("invalid configuration")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewInvalidConfig creates an ErrInvalidConfig error with a formatted message.
func NewInvalidConfig(format string, args ...interface{}) error {
	return Wrap(ErrInvalidConfig, Newf(format, args...).Error())
}
