package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Citation is a quoted excerpt plus a reference to its source document.
// Paragraph is nil when the provider gave no anchor.
type Citation struct {
	Text      string `json:"text" validate:"required"`
	Source    string `json:"source" validate:"required"`
	Link      string `json:"link" validate:"required"`
	Paragraph *int   `json:"paragraph,omitempty" validate:"omitempty,gt=0"`
}

type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Citations []Citation `json:"citations"`
	Pending   bool       `json:"pending"`
}

// Clone returns a copy that shares no slices or pointers with m.
func (m Message) Clone() Message {
	out := m
	if m.Citations != nil {
		out.Citations = make([]Citation, len(m.Citations))
		for i, c := range m.Citations {
			out.Citations[i] = c.clone()
		}
	}
	return out
}

func (c Citation) clone() Citation {
	if c.Paragraph != nil {
		p := *c.Paragraph
		c.Paragraph = &p
	}
	return c
}

// Answer is what an answer provider returns for a query.
type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// IntPtr is a helper for optional paragraph anchors.
func IntPtr(v int) *int {
	return &v
}
