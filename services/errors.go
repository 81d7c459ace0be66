package services

import "errors"

// Workflow errors. Every service rolls back its whole transaction and
// surfaces one of these; handlers map them to HTTP statuses.
var (
	ErrValidation          = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrCooldown            = errors.New("reward not available yet")
	ErrCollaborator        = errors.New("external service failed")
	ErrConflict            = errors.New("concurrent update conflict, retry")
	ErrForbidden           = errors.New("access denied")
	ErrUnauthorized        = errors.New("invalid credentials")
	ErrThrottled           = errors.New("too many attempts, try again later")
)
