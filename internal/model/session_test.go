package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectCopiesLinkAndParagraph(t *testing.T) {
	c := Citation{Text: "t", Source: "a.pdf", Link: "https://example.com/a.pdf", Paragraph: IntPtr(7)}

	var sel Selection
	sel.Select(c)

	assert.True(t, sel.Open)
	assert.Equal(t, c.Link, sel.Link)
	require.NotNil(t, sel.Paragraph)
	assert.Equal(t, 7, *sel.Paragraph)

	*c.Paragraph = 9
	assert.Equal(t, 7, *sel.Paragraph, "selection must not alias the citation")
}

func TestSelectWithoutParagraphClearsPrevious(t *testing.T) {
	var sel Selection
	sel.Select(Citation{Link: "a", Paragraph: IntPtr(3)})
	sel.Select(Citation{Link: "b"})

	assert.Equal(t, "b", sel.Link)
	assert.Nil(t, sel.Paragraph)
}

func TestCloseIsIdempotent(t *testing.T) {
	var sel Selection
	sel.Close()
	assert.Equal(t, Selection{}, sel)

	sel.Select(Citation{Link: "a", Paragraph: IntPtr(1)})
	sel.Close()
	assert.Equal(t, Selection{}, sel)
	sel.Close()
	assert.Equal(t, Selection{}, sel)
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := &Session{
		ID: "s",
		Messages: []Message{{
			ID:        "m",
			Role:      RoleAssistant,
			Timestamp: time.Now(),
			Citations: []Citation{{Text: "t", Source: "s", Link: "l", Paragraph: IntPtr(2)}},
		}},
	}
	s.Selection.Select(s.Messages[0].Citations[0])

	c := s.Clone()
	c.Messages[0].Content = "changed"
	*c.Messages[0].Citations[0].Paragraph = 5
	*c.Selection.Paragraph = 6

	assert.Empty(t, s.Messages[0].Content)
	assert.Equal(t, 2, *s.Messages[0].Citations[0].Paragraph)
	assert.Equal(t, 2, *s.Selection.Paragraph)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("system").Valid())
}
