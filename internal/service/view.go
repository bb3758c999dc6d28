package service

import (
	"fmt"

	"lexi-backend/internal/model"
)

const (
	AuthorUser      = "You"
	AuthorAssistant = "Lexi Legal Assistant"
	LoadingText     = "Analyzing legal documents..."
	BusyText        = "Processing your legal query..."
	timeLayout      = "15:04"
)

var defaultEmptyState = model.EmptyState{
	Title:       "Welcome to Lexi Legal Assistant",
	Description: "Ask me about legal matters, case law, motor vehicle claims, or any specific legal questions. I'll provide detailed answers with relevant citations from legal documents.",
	SampleQuery: "In a motor accident claim where the deceased was self-employed and aged 54–55 years at the time of death, is the claimant entitled to an addition towards future prospects in computing compensation under Section 166 of the Motor Vehicles Act, 1988?",
}

// BuildView derives what a client should render from the session alone.
func BuildView(session *model.Session) model.View {
	view := model.View{
		SessionID:    session.ID,
		Title:        session.Title,
		Empty:        len(session.Messages) == 0,
		Messages:     make([]model.MessageView, 0, len(session.Messages)),
		Busy:         session.Busy,
		InputEnabled: !session.Busy,
	}

	if view.Empty {
		state := defaultEmptyState
		view.EmptyState = &state
	}
	if session.Busy {
		view.BusyText = BusyText
	}

	for _, msg := range session.Messages {
		view.Messages = append(view.Messages, messageView(msg))
	}

	if session.Selection.Open {
		detail := &model.DetailView{Link: session.Selection.Link}
		if p := session.Selection.Paragraph; p != nil {
			anchor := *p
			detail.Paragraph = &anchor
			detail.HighlightLabel = fmt.Sprintf("Paragraph %d Highlighted", anchor)
		}
		view.Detail = detail
	}

	return view
}

func messageView(msg model.Message) model.MessageView {
	mv := model.MessageView{
		ID:     msg.ID,
		Role:   msg.Role,
		Author: AuthorUser,
		Time:   msg.Timestamp.Format(timeLayout),
	}
	if msg.Role == model.RoleAssistant {
		mv.Author = AuthorAssistant
		mv.Verified = !msg.Pending
	}

	if msg.Pending {
		mv.Loading = true
		mv.LoadingText = LoadingText
		return mv
	}

	mv.Content = msg.Content
	for i, c := range msg.Citations {
		cv := model.CitationView{
			MessageID: msg.ID,
			Index:     i,
			Text:      c.Text,
			Source:    c.Source,
			Link:      c.Link,
		}
		if c.Paragraph != nil {
			p := *c.Paragraph
			cv.Paragraph = &p
			cv.Label = fmt.Sprintf("Paragraph %d", p)
		}
		mv.Citations = append(mv.Citations, cv)
	}
	return mv
}

// GetView loads the session and projects it.
func (s *ChatService) GetView(sessionID string) (model.View, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return model.View{}, err
	}
	return BuildView(session), nil
}
