package storage

import "errors"

// Storage errors. Backend errors are wrapped so callers can match with errors.Is.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrBucketNotFound    = errors.New("bucket not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrInvalidConfig     = errors.New("invalid storage configuration")
	ErrInvalidRoute      = errors.New("invalid route")
	ErrOperationTimeout  = errors.New("storage operation timed out")
	ErrOperationCanceled = errors.New("storage operation canceled")
)
