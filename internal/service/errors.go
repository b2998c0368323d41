package service

import "errors"

// Domain errors returned by the services. Controllers translate these to
// HTTP statuses; anything else is treated as an internal failure.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active chat session found to end")
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUserExists      = errors.New("username already registered")
	ErrBadCredentials  = errors.New("invalid credentials")
)
