package model

import "time"

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Busy         bool      `json:"busy"`
}

func NewSessionResponse(s *Session) SessionResponse {
	return SessionResponse{
		SessionID:    s.ID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
		Busy:         s.Busy,
	}
}

// SubmitResult is the outcome of one settled query. Failed is set when the
// answer provider failed and the fallback text was recorded instead.
type SubmitResult struct {
	SessionID string  `json:"session_id"`
	User      Message `json:"user"`
	Assistant Message `json:"assistant"`
	Failed    bool    `json:"failed"`
}

const (
	EventMessage  = "message"
	EventResolved = "resolved"
)

// ChatEvent is streamed to SSE clients while a query is processed.
type ChatEvent struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
	Failed  bool    `json:"failed,omitempty"`
}
