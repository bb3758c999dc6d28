package storage

import "errors"

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExists     = errors.New("session already exists")
	ErrSessionBusy       = errors.New("session has a query in flight")
	ErrMessageNotFound   = errors.New("message not found")
	ErrMessageNotPending = errors.New("message is not pending")
	ErrPendingExists     = errors.New("session already has a pending message")
	ErrInvalidData       = errors.New("invalid data")
)
