package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lexi-backend/internal/config"
	"lexi-backend/internal/model"
	"lexi-backend/internal/provider"
	"lexi-backend/internal/storage"
	"lexi-backend/internal/viewer"
	"lexi-backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultSessionTitle = "New conversation"
	titleMaxRunes       = 30
)

type Options struct {
	ProviderTimeout time.Duration
	FallbackMessage string
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	Metrics         *Metrics
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ProviderTimeout: cfg.Provider.Timeout,
		FallbackMessage: cfg.Provider.FallbackMessage,
		SessionTTL:      cfg.Session.TTL,
		CleanupInterval: cfg.Session.CleanupInterval,
	}
}

type ChatService struct {
	storage  storage.Storage
	answers  provider.AnswerProvider
	docs     viewer.Viewer
	validate *validator.Validate
	opts     Options
	metrics  *Metrics

	now      func() time.Time
	inflight sync.WaitGroup
}

func NewChatService(store storage.Storage, answers provider.AnswerProvider, docs viewer.Viewer, opts Options) *ChatService {
	if opts.FallbackMessage == "" {
		opts.FallbackMessage = config.DefaultFallbackMessage
	}
	return &ChatService{
		storage:  store,
		answers:  answers,
		docs:     docs,
		validate: validator.New(),
		opts:     opts,
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (s *ChatService) CreateSession(title string) (*model.Session, error) {
	if title == "" {
		title = DefaultSessionTitle
	}

	now := s.now()
	session := &model.Session{
		ID:        newID(),
		Title:     title,
		Messages:  make([]model.Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.WithFields(logrus.Fields{"session_id": session.ID}).Info("session created")
	return session, nil
}

func (s *ChatService) GetSession(sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *ChatService) GetSessionMessages(sessionID string) ([]model.Message, error) {
	messages, err := s.storage.GetMessages(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages of %s: %w", sessionID, err)
	}
	return messages, nil
}

func (s *ChatService) GetAllSessions() ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *ChatService) UpdateSessionTitle(sessionID, title string) error {
	if err := s.storage.UpdateTitle(sessionID, title); err != nil {
		return fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return nil
}

// DeleteSession refuses sessions with a query in flight; the in-flight
// query would otherwise settle into a log that no longer exists.
func (s *ChatService) DeleteSession(sessionID string) error {
	if err := s.storage.DeleteSessionIfIdle(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

// ClearAllSessions deletes every idle session and reports how many busy
// ones were kept.
func (s *ChatService) ClearAllSessions() (int, error) {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	kept := 0
	for _, session := range sessions {
		err := s.storage.DeleteSessionIfIdle(session.ID)
		switch {
		case errors.Is(err, storage.ErrSessionBusy):
			kept++
		case err != nil && !errors.Is(err, storage.ErrSessionNotFound):
			logger.Errorf("Failed to delete session %s: %v", session.ID, err)
		}
	}
	return kept, nil
}

type pendingQuery struct {
	sessionID   string
	query       string
	user        model.Message
	placeholder model.Message
	started     time.Time
}

// Submit records the query and its pending placeholder, waits for the
// answer provider and settles the placeholder. Provider failures never
// escape: the placeholder then carries the fallback message and the result
// reports Failed.
func (s *ChatService) Submit(ctx context.Context, sessionID, query string) (*model.SubmitResult, error) {
	q, err := s.begin(sessionID, query)
	if err != nil {
		return nil, err
	}

	s.inflight.Add(1)
	defer s.inflight.Done()

	return s.settle(ctx, q, nil), nil
}

// StreamSubmit is Submit with progress events. Validation and the busy gate
// run before it returns; the answer is awaited in the background and the
// channel is closed once the placeholder settles.
func (s *ChatService) StreamSubmit(ctx context.Context, sessionID, query string) (<-chan model.ChatEvent, error) {
	q, err := s.begin(sessionID, query)
	if err != nil {
		return nil, err
	}

	events := make(chan model.ChatEvent, 3)
	events <- model.ChatEvent{Type: model.EventMessage, Message: q.user}
	events <- model.ChatEvent{Type: model.EventMessage, Message: q.placeholder}

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer close(events)

		s.settle(ctx, q, func(e model.ChatEvent) {
			select {
			case events <- e:
			default:
				logger.Warn("Event channel is full, dropping event")
			}
		})
	}()

	return events, nil
}

// Wait blocks until every query in flight has settled.
func (s *ChatService) Wait() {
	s.inflight.Wait()
}

func (s *ChatService) begin(sessionID, query string) (*pendingQuery, error) {
	text := strings.TrimSpace(query)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	if err := s.storage.MarkBusy(sessionID); err != nil {
		if errors.Is(err, storage.ErrSessionBusy) {
			s.metrics.rejected()
		}
		return nil, fmt.Errorf("submit to %s: %w", sessionID, err)
	}

	now := s.now()
	q := &pendingQuery{
		sessionID: sessionID,
		query:     text,
		started:   now,
		user: model.Message{
			ID:        newID(),
			SessionID: sessionID,
			Role:      model.RoleUser,
			Content:   text,
			Timestamp: now,
			Citations: []model.Citation{},
		},
		placeholder: model.Message{
			ID:        newID(),
			SessionID: sessionID,
			Role:      model.RoleAssistant,
			Timestamp: now,
			Citations: []model.Citation{},
			Pending:   true,
		},
	}

	if err := s.storage.AppendMessages(sessionID, &q.user, &q.placeholder); err != nil {
		s.release(sessionID)
		return nil, fmt.Errorf("append query to %s: %w", sessionID, err)
	}

	s.retitle(sessionID, text)
	s.metrics.started()

	logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"message_id": q.placeholder.ID,
	}).Info("query submitted")

	return q, nil
}

func (s *ChatService) settle(ctx context.Context, q *pendingQuery, emit func(model.ChatEvent)) *model.SubmitResult {
	defer s.release(q.sessionID)

	// a submitted query runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	if s.opts.ProviderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ProviderTimeout)
		defer cancel()
	}

	answer, err := s.answer(ctx, q.query)

	resolved := model.Message{
		ID:        q.placeholder.ID,
		SessionID: q.sessionID,
		Role:      model.RoleAssistant,
		Timestamp: s.now(),
		Citations: []model.Citation{},
	}

	entry := logger.WithFields(logrus.Fields{
		"session_id": q.sessionID,
		"message_id": q.placeholder.ID,
	})

	outcome := outcomeAnswered
	if err != nil {
		outcome = outcomeFailed
		resolved.Content = s.opts.FallbackMessage
		entry.Warnf("answer provider failed: %v", err)
	} else {
		resolved.Content = answer.Answer
		resolved.Citations = answer.Citations
	}
	if err := s.storage.ReplaceMessage(q.sessionID, q.placeholder.ID, &resolved); err != nil {
		// the answer was never recorded
		entry.Errorf("failed to settle pending message: %v", err)
		outcome = outcomeFailed
		resolved.Content = s.opts.FallbackMessage
		resolved.Citations = []model.Citation{}
	} else {
		entry.WithField("outcome", outcome).Info("query settled")
	}
	s.metrics.settled(outcome, s.now().Sub(q.started))

	result := &model.SubmitResult{
		SessionID: q.sessionID,
		User:      q.user,
		Assistant: resolved,
		Failed:    outcome == outcomeFailed,
	}

	if emit != nil {
		emit(model.ChatEvent{Type: model.EventResolved, Message: resolved, Failed: result.Failed})
	}
	return result
}

// answer calls the provider and folds panics, empty answers and invalid
// citations into provider failures.
func (s *ChatService) answer(ctx context.Context, query string) (answer *model.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer = nil
			err = fmt.Errorf("%w: panic: %v", provider.ErrProviderFailure, r)
		}
	}()

	answer, err = s.answers.AnswerQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if answer == nil || strings.TrimSpace(answer.Answer) == "" {
		return nil, fmt.Errorf("%w: empty answer", provider.ErrProviderFailure)
	}

	citations := make([]model.Citation, len(answer.Citations))
	for i, c := range answer.Citations {
		if err := s.validate.Struct(c); err != nil {
			return nil, fmt.Errorf("%w: %w: citation %d: %v", provider.ErrProviderFailure, ErrInvalidCitation, i, err)
		}
		citations[i] = c
	}

	return &model.Answer{Answer: answer.Answer, Citations: citations}, nil
}

func (s *ChatService) release(sessionID string) {
	if err := s.storage.ClearBusy(sessionID); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		logger.Errorf("Failed to clear busy flag of %s: %v", sessionID, err)
	}
}

// retitle names a session after its first question while it still carries
// the default title.
func (s *ChatService) retitle(sessionID, query string) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil || session.Title != DefaultSessionTitle {
		return
	}
	if err := s.storage.UpdateTitle(sessionID, truncateString(query, titleMaxRunes)); err != nil {
		logger.Warnf("Failed to retitle session %s: %v", sessionID, err)
	}
}

func truncateString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}

// StartCleanup removes sessions idle for longer than the session TTL until
// ctx is done. Busy sessions are never removed.
func (s *ChatService) StartCleanup(ctx context.Context) {
	if s.opts.SessionTTL <= 0 || s.opts.CleanupInterval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(s.opts.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.cleanupExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *ChatService) cleanupExpired() int {
	sessions, err := s.storage.ListSessions()
	if err != nil {
		logger.Errorf("Failed to list sessions for cleanup: %v", err)
		return 0
	}

	cutoff := s.now().Add(-s.opts.SessionTTL)
	removed := 0
	for _, session := range sessions {
		if !session.UpdatedAt.Before(cutoff) {
			continue
		}
		err := s.storage.DeleteSessionIfIdle(session.ID)
		switch {
		case errors.Is(err, storage.ErrSessionBusy), errors.Is(err, storage.ErrSessionNotFound):
			continue
		case err != nil:
			logger.Errorf("Failed to delete expired session %s: %v", session.ID, err)
			continue
		}
		removed++
		logger.Infof("Cleaned up expired session: %s", session.ID)
	}
	logger.Debugf("Session cleanup removed %d of %d sessions", removed, len(sessions))
	return removed
}
