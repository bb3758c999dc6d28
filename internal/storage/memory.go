package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"lexi-backend/internal/model"
)

type MemoryStorage struct {
	sessions map[string]*model.Session
	mu       sync.RWMutex
	now      func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

func (m *MemoryStorage) Init() error {
	return nil
}

func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]*model.Session)
	return nil
}

func (m *MemoryStorage) CreateSession(session *model.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("%w: session id is required", ErrInvalidData)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[session.ID]; exists {
		return ErrSessionExists
	}

	m.sessions[session.ID] = session.Clone()
	return nil
}

func (m *MemoryStorage) GetSession(sessionID string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session.Clone(), nil
}

func (m *MemoryStorage) UpdateTitle(sessionID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Title = title
	session.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStorage) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, sessionID)
	return nil
}

// DeleteSessionIfIdle deletes the session unless a query is in flight. The
// busy check and the delete happen under one lock, so a concurrent MarkBusy
// either wins and the delete fails, or finds the session gone.
func (m *MemoryStorage) DeleteSessionIfIdle(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}
	if session.Busy {
		return ErrSessionBusy
	}

	delete(m.sessions, sessionID)
	return nil
}

// ListSessions returns copies ordered by creation time, oldest first.
func (m *MemoryStorage) ListSessions() ([]*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*model.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		sessions = append(sessions, session.Clone())
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	return sessions, nil
}

func (m *MemoryStorage) AppendMessage(sessionID string, message *model.Message) error {
	return m.AppendMessages(sessionID, message)
}

// AppendMessages appends all messages or none of them.
func (m *MemoryStorage) AppendMessages(sessionID string, messages ...*model.Message) error {
	pending := 0
	for _, message := range messages {
		if err := validateMessage(message); err != nil {
			return err
		}
		if message.Pending {
			pending++
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	if pending > 0 && session.PendingCount()+pending > 1 {
		return ErrPendingExists
	}

	for _, message := range messages {
		msg := message.Clone()
		msg.SessionID = sessionID
		session.Messages = append(session.Messages, msg)
	}
	session.UpdatedAt = m.now()
	return nil
}

// ReplaceMessage overwrites the message with messageID in place. Only a
// pending message can be replaced; the id is kept so clients can reconcile.
func (m *MemoryStorage) ReplaceMessage(sessionID, messageID string, message *model.Message) error {
	if err := validateMessage(message); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	for i := range session.Messages {
		if session.Messages[i].ID != messageID {
			continue
		}
		if !session.Messages[i].Pending {
			return fmt.Errorf("%w: %s", ErrMessageNotPending, messageID)
		}
		if message.Pending {
			return fmt.Errorf("%w: replacement must settle the message", ErrInvalidData)
		}

		msg := message.Clone()
		msg.ID = messageID
		msg.SessionID = sessionID
		session.Messages[i] = msg
		session.UpdatedAt = m.now()
		return nil
	}

	return fmt.Errorf("%w: %s", ErrMessageNotFound, messageID)
}

func (m *MemoryStorage) GetMessages(sessionID string) ([]model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	messages := make([]model.Message, len(session.Messages))
	for i, msg := range session.Messages {
		messages[i] = msg.Clone()
	}

	return messages, nil
}

func (m *MemoryStorage) MarkBusy(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}
	if session.Busy {
		return ErrSessionBusy
	}

	session.Busy = true
	return nil
}

func (m *MemoryStorage) ClearBusy(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Busy = false
	return nil
}

func (m *MemoryStorage) SetSelection(sessionID string, selection model.Selection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	session.Selection = model.Selection{}
	if selection.Open {
		session.Selection.Select(model.Citation{Link: selection.Link, Paragraph: selection.Paragraph})
	}
	return nil
}

func validateMessage(message *model.Message) error {
	if message == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidData)
	}
	if !message.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidData, message.Role)
	}
	if message.Role == model.RoleUser && (message.Pending || len(message.Citations) > 0) {
		return fmt.Errorf("%w: user messages carry no citations and are never pending", ErrInvalidData)
	}
	if message.Content == "" && !message.Pending {
		return fmt.Errorf("%w: empty content on a settled message", ErrInvalidData)
	}
	return nil
}
