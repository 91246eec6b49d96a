package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrBackendFailure    = errors.New("backend failure")
	ErrInvalidInput      = errors.New("invalid input")

	ErrSubmissionInFlight = errors.New("submission already in progress")

	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
