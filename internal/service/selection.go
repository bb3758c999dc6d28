package service

import (
	"context"
	"fmt"

	"lexi-backend/internal/model"
	"lexi-backend/internal/storage"
)

// SelectCitation opens citation index of the given assistant message for
// detail viewing. The link is not checked for reachability.
func (s *ChatService) SelectCitation(sessionID, messageID string, index int) (model.Selection, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return model.Selection{}, fmt.Errorf("select citation: %w", err)
	}

	var target *model.Message
	for i := range session.Messages {
		if session.Messages[i].ID == messageID {
			target = &session.Messages[i]
			break
		}
	}
	if target == nil {
		return model.Selection{}, fmt.Errorf("select citation: %w: %s", storage.ErrMessageNotFound, messageID)
	}
	if index < 0 || index >= len(target.Citations) {
		return model.Selection{}, fmt.Errorf("select citation: %w: index %d of message %s", ErrCitationNotFound, index, messageID)
	}

	sel := session.Selection
	sel.Select(target.Citations[index])
	if err := s.storage.SetSelection(sessionID, sel); err != nil {
		return model.Selection{}, fmt.Errorf("select citation: %w", err)
	}
	return sel, nil
}

// CloseCitation resets the selection. Closing a closed selection is a no-op.
func (s *ChatService) CloseCitation(sessionID string) error {
	var sel model.Selection
	sel.Close()
	if err := s.storage.SetSelection(sessionID, sel); err != nil {
		return fmt.Errorf("close citation: %w", err)
	}
	return nil
}

// OpenDocument hands the open selection to the document viewer.
func (s *ChatService) OpenDocument(ctx context.Context, sessionID string) (*model.Document, error) {
	session, err := s.storage.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if !session.Selection.Open {
		return nil, ErrSelectionClosed
	}
	return s.docs.Open(ctx, session.Selection.Link, session.Selection.Paragraph)
}
