package model

// View is the renderable state derived from a session. It carries no state
// of its own.
type View struct {
	SessionID    string        `json:"session_id"`
	Title        string        `json:"title"`
	Empty        bool          `json:"empty"`
	EmptyState   *EmptyState   `json:"empty_state,omitempty"`
	Messages     []MessageView `json:"messages"`
	Busy         bool          `json:"busy"`
	BusyText     string        `json:"busy_text,omitempty"`
	InputEnabled bool          `json:"input_enabled"`
	Detail       *DetailView   `json:"detail,omitempty"`
}

type EmptyState struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SampleQuery string `json:"sample_query"`
}

type MessageView struct {
	ID          string         `json:"id"`
	Role        Role           `json:"role"`
	Author      string         `json:"author"`
	Content     string         `json:"content,omitempty"`
	Time        string         `json:"time"`
	Loading     bool           `json:"loading"`
	LoadingText string         `json:"loading_text,omitempty"`
	Verified    bool           `json:"verified"`
	Citations   []CitationView `json:"citations,omitempty"`
}

// CitationView is a selectable unit; MessageID and Index are what a client
// posts back to open it.
type CitationView struct {
	MessageID string `json:"message_id"`
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	Link      string `json:"link"`
	Paragraph *int   `json:"paragraph,omitempty"`
	Label     string `json:"label,omitempty"`
}

type DetailView struct {
	Link           string `json:"link"`
	Paragraph      *int   `json:"paragraph,omitempty"`
	HighlightLabel string `json:"highlight_label,omitempty"`
}

// Document is what a document viewer produces for a citation link.
type Document struct {
	Link       string      `json:"link"`
	Title      string      `json:"title"`
	Subtitle   string      `json:"subtitle"`
	Court      string      `json:"court"`
	CaseNumber string      `json:"case_number"`
	Bench      string      `json:"bench"`
	Summary    string      `json:"summary"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Principle  string      `json:"principle,omitempty"`
	Anchor     *int        `json:"anchor,omitempty"`
	Note       string      `json:"note,omitempty"`
}

type Paragraph struct {
	Number      int    `json:"number"`
	Text        string `json:"text"`
	Highlighted bool   `json:"highlighted"`
	Mark        string `json:"mark,omitempty"`
}
