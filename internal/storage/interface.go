package storage

import (
	"lexi-backend/internal/model"
)

// Storage owns the session context objects. Every read returns a copy, so
// callers never mutate the log except through these methods.
type Storage interface {
	// sessions
	CreateSession(session *model.Session) error
	GetSession(sessionID string) (*model.Session, error)
	UpdateTitle(sessionID, title string) error
	DeleteSession(sessionID string) error
	DeleteSessionIfIdle(sessionID string) error
	ListSessions() ([]*model.Session, error)

	// message log: append-only, except the pending placeholder
	AppendMessage(sessionID string, message *model.Message) error
	AppendMessages(sessionID string, messages ...*model.Message) error
	ReplaceMessage(sessionID, messageID string, message *model.Message) error
	GetMessages(sessionID string) ([]model.Message, error)

	// single-flight gate
	MarkBusy(sessionID string) error
	ClearBusy(sessionID string) error

	SetSelection(sessionID string, selection model.Selection) error

	Init() error
	Close() error
}
