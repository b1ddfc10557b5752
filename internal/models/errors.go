package models

import "errors"

// Sentinel errors returned by services and mapped to HTTP codes by handlers.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	// ErrAuth is deliberately generic so login failures never reveal
	// whether the identifier or the password was wrong.
	ErrAuth = errors.New("invalid username/email or password")
)
