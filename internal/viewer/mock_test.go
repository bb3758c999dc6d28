package viewer

import (
	"context"
	"testing"

	"lexi-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func highlighted(doc *model.Document) []int {
	var out []int
	for _, p := range doc.Paragraphs {
		if p.Highlighted {
			out = append(out, p.Number)
		}
	}
	return out
}

func TestOpenHighlightsAnchor(t *testing.T) {
	doc, err := NewMockViewer().Open(context.Background(), "https://example.com/doc.pdf", model.IntPtr(7))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/doc.pdf", doc.Link)
	assert.Len(t, doc.Paragraphs, 9)
	assert.Equal(t, []int{7}, highlighted(doc))
	assert.Contains(t, doc.Paragraphs[6].Text, doc.Paragraphs[6].Mark)
	assert.NotEmpty(t, doc.Note)
	require.NotNil(t, doc.Anchor)
	assert.Equal(t, 7, *doc.Anchor)
}

func TestOpenWithoutAnchor(t *testing.T) {
	doc, err := NewMockViewer().Open(context.Background(), "l", nil)
	require.NoError(t, err)

	assert.Empty(t, highlighted(doc))
	assert.Nil(t, doc.Anchor)
}

func TestOpenUnknownAnchorIsNotAnError(t *testing.T) {
	doc, err := NewMockViewer().Open(context.Background(), "l", model.IntPtr(42))
	require.NoError(t, err)

	assert.Empty(t, highlighted(doc))
	assert.Empty(t, doc.Note)
}

func TestOpenRejectsEmptyLink(t *testing.T) {
	_, err := NewMockViewer().Open(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestOpenRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockViewer().Open(ctx, "l", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
