package model

import "time"

// Selection tracks which citation, if any, is opened for detail viewing.
// The zero value is closed.
type Selection struct {
	Open      bool   `json:"open"`
	Link      string `json:"link,omitempty"`
	Paragraph *int   `json:"paragraph,omitempty"`
}

func (s *Selection) Select(c Citation) {
	s.Open = true
	s.Link = c.Link
	s.Paragraph = nil
	if c.Paragraph != nil {
		p := *c.Paragraph
		s.Paragraph = &p
	}
}

func (s *Selection) Close() {
	*s = Selection{}
}

// Session is the per-conversation context object: the ordered message log,
// the single-flight busy flag and the citation selection.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	Busy      bool      `json:"busy"`
	Selection Selection `json:"selection"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone deep-copies the session so callers can read it without holding the
// store's lock.
func (s *Session) Clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	if s.Selection.Paragraph != nil {
		p := *s.Selection.Paragraph
		out.Selection.Paragraph = &p
	}
	return &out
}

// PendingCount reports how many messages in the log await an answer.
func (s *Session) PendingCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Pending {
			n++
		}
	}
	return n
}
