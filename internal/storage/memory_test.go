package storage

import (
	"sync"
	"testing"
	"time"

	"lexi-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithSession(t *testing.T) *MemoryStorage {
	t.Helper()
	store := NewMemoryStorage()
	require.NoError(t, store.Init())
	require.NoError(t, store.CreateSession(&model.Session{ID: "s1", Title: "t", CreatedAt: time.Now()}))
	return store
}

func userMsg(id, content string) *model.Message {
	return &model.Message{ID: id, Role: model.RoleUser, Content: content, Timestamp: time.Now(), Citations: []model.Citation{}}
}

func pendingMsg(id string) *model.Message {
	return &model.Message{ID: id, Role: model.RoleAssistant, Timestamp: time.Now(), Citations: []model.Citation{}, Pending: true}
}

func TestAppendKeepsOrder(t *testing.T) {
	store := newStoreWithSession(t)

	require.NoError(t, store.AppendMessage("s1", userMsg("u1", "q1")))
	require.NoError(t, store.AppendMessage("s1", pendingMsg("a1")))

	msgs, err := store.GetMessages("s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u1", msgs[0].ID)
	assert.Equal(t, "a1", msgs[1].ID)
	assert.Equal(t, "s1", msgs[1].SessionID)
}

func TestAppendRejectsSecondPending(t *testing.T) {
	store := newStoreWithSession(t)

	require.NoError(t, store.AppendMessage("s1", pendingMsg("a1")))
	err := store.AppendMessage("s1", pendingMsg("a2"))
	assert.ErrorIs(t, err, ErrPendingExists)

	msgs, _ := store.GetMessages("s1")
	assert.Len(t, msgs, 1)
}

func TestAppendValidatesMessages(t *testing.T) {
	store := newStoreWithSession(t)

	tests := []struct {
		name string
		msg  *model.Message
	}{
		{"nil", nil},
		{"unknown role", &model.Message{ID: "x", Role: "system", Content: "c"}},
		{"user with citations", &model.Message{ID: "x", Role: model.RoleUser, Content: "c", Citations: []model.Citation{{Text: "t"}}}},
		{"pending user", &model.Message{ID: "x", Role: model.RoleUser, Pending: true}},
		{"empty settled", &model.Message{ID: "x", Role: model.RoleAssistant}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.AppendMessage("s1", tt.msg), ErrInvalidData)
		})
	}
}

func TestReplaceByIDKeepsPosition(t *testing.T) {
	store := newStoreWithSession(t)
	require.NoError(t, store.AppendMessage("s1", userMsg("u1", "q")))
	require.NoError(t, store.AppendMessage("s1", pendingMsg("a1")))

	resolved := &model.Message{ID: "other", Role: model.RoleAssistant, Content: "answer", Timestamp: time.Now()}
	require.NoError(t, store.ReplaceMessage("s1", "a1", resolved))

	msgs, _ := store.GetMessages("s1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "a1", msgs[1].ID)
	assert.Equal(t, "answer", msgs[1].Content)
	assert.False(t, msgs[1].Pending)
}

func TestReplaceAddressesPendingMessageNotLast(t *testing.T) {
	store := newStoreWithSession(t)
	require.NoError(t, store.AppendMessage("s1", pendingMsg("a1")))
	require.NoError(t, store.AppendMessage("s1", userMsg("u2", "appended later")))

	require.NoError(t, store.ReplaceMessage("s1", "a1", &model.Message{Role: model.RoleAssistant, Content: "done"}))

	msgs, _ := store.GetMessages("s1")
	assert.Equal(t, "done", msgs[0].Content)
	assert.Equal(t, "appended later", msgs[1].Content)
}

func TestReplaceErrors(t *testing.T) {
	store := newStoreWithSession(t)
	require.NoError(t, store.AppendMessage("s1", userMsg("u1", "q")))
	require.NoError(t, store.AppendMessage("s1", pendingMsg("a1")))

	settled := &model.Message{Role: model.RoleAssistant, Content: "x"}

	assert.ErrorIs(t, store.ReplaceMessage("s1", "u1", settled), ErrMessageNotPending)
	assert.ErrorIs(t, store.ReplaceMessage("s1", "nope", settled), ErrMessageNotFound)
	assert.ErrorIs(t, store.ReplaceMessage("missing", "a1", settled), ErrSessionNotFound)
	assert.ErrorIs(t, store.ReplaceMessage("s1", "a1", pendingMsg("a1")), ErrInvalidData)

	require.NoError(t, store.ReplaceMessage("s1", "a1", settled))
	assert.ErrorIs(t, store.ReplaceMessage("s1", "a1", settled), ErrMessageNotPending)
}

func TestGetMessagesReturnsCopy(t *testing.T) {
	store := newStoreWithSession(t)
	msg := &model.Message{ID: "a1", Role: model.RoleAssistant, Content: "x",
		Citations: []model.Citation{{Text: "t", Source: "s", Link: "l", Paragraph: model.IntPtr(7)}}}
	require.NoError(t, store.AppendMessage("s1", msg))

	msg.Content = "mutated after append"
	msgs, _ := store.GetMessages("s1")
	msgs[0].Content = "mutated copy"
	*msgs[0].Citations[0].Paragraph = 1

	again, _ := store.GetMessages("s1")
	assert.Equal(t, "x", again[0].Content)
	assert.Equal(t, 7, *again[0].Citations[0].Paragraph)
}

func TestBusyGate(t *testing.T) {
	store := newStoreWithSession(t)

	require.NoError(t, store.MarkBusy("s1"))
	assert.ErrorIs(t, store.MarkBusy("s1"), ErrSessionBusy)

	s, _ := store.GetSession("s1")
	assert.True(t, s.Busy)

	require.NoError(t, store.ClearBusy("s1"))
	require.NoError(t, store.ClearBusy("s1"))
	require.NoError(t, store.MarkBusy("s1"))

	assert.ErrorIs(t, store.MarkBusy("missing"), ErrSessionNotFound)
}

func TestBusyGateConcurrent(t *testing.T) {
	store := newStoreWithSession(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.MarkBusy("s1") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestSelection(t *testing.T) {
	store := newStoreWithSession(t)

	require.NoError(t, store.SetSelection("s1", model.Selection{Open: true, Link: "l", Paragraph: model.IntPtr(7)}))
	s, _ := store.GetSession("s1")
	assert.True(t, s.Selection.Open)
	assert.Equal(t, "l", s.Selection.Link)
	assert.Equal(t, 7, *s.Selection.Paragraph)

	require.NoError(t, store.SetSelection("s1", model.Selection{Link: "ignored"}))
	s, _ = store.GetSession("s1")
	assert.Equal(t, model.Selection{}, s.Selection)
}

func TestSessionLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	base := time.Now()

	require.NoError(t, store.CreateSession(&model.Session{ID: "b", CreatedAt: base.Add(time.Second)}))
	require.NoError(t, store.CreateSession(&model.Session{ID: "a", CreatedAt: base}))
	assert.ErrorIs(t, store.CreateSession(&model.Session{ID: "a"}), ErrSessionExists)
	assert.ErrorIs(t, store.CreateSession(&model.Session{}), ErrInvalidData)

	list, err := store.ListSessions()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)

	require.NoError(t, store.UpdateTitle("a", "renamed"))
	s, _ := store.GetSession("a")
	assert.Equal(t, "renamed", s.Title)

	require.NoError(t, store.DeleteSession("a"))
	assert.ErrorIs(t, store.DeleteSession("a"), ErrSessionNotFound)
	_, err = store.GetSession("a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Close())
	list, _ = store.ListSessions()
	assert.Empty(t, list)
}

func TestAppendMessagesIsAllOrNothing(t *testing.T) {
	store := newStoreWithSession(t)
	require.NoError(t, store.AppendMessage("s1", pendingMsg("p0")))

	err := store.AppendMessages("s1", userMsg("u1", "q"), pendingMsg("p1"))
	assert.ErrorIs(t, err, ErrPendingExists)

	err = store.AppendMessages("s1", userMsg("u2", "q"), &model.Message{ID: "bad", Role: "system", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidData)

	msgs, _ := store.GetMessages("s1")
	require.Len(t, msgs, 1)
	assert.Equal(t, "p0", msgs[0].ID)
}

func TestAppendMessagesRejectsTwoPendingInOneBatch(t *testing.T) {
	store := newStoreWithSession(t)

	err := store.AppendMessages("s1", pendingMsg("p1"), pendingMsg("p2"))
	assert.ErrorIs(t, err, ErrPendingExists)

	msgs, _ := store.GetMessages("s1")
	assert.Empty(t, msgs)
}

func TestDeleteSessionIfIdle(t *testing.T) {
	store := newStoreWithSession(t)

	require.NoError(t, store.MarkBusy("s1"))
	assert.ErrorIs(t, store.DeleteSessionIfIdle("s1"), ErrSessionBusy)
	_, err := store.GetSession("s1")
	require.NoError(t, err)

	require.NoError(t, store.ClearBusy("s1"))
	require.NoError(t, store.DeleteSessionIfIdle("s1"))
	assert.ErrorIs(t, store.DeleteSessionIfIdle("s1"), ErrSessionNotFound)
}

func TestDeleteIfIdleRacesMarkBusy(t *testing.T) {
	for i := 0; i < 50; i++ {
		store := newStoreWithSession(t)

		var wg sync.WaitGroup
		var markErr, delErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			markErr = store.MarkBusy("s1")
		}()
		go func() {
			defer wg.Done()
			delErr = store.DeleteSessionIfIdle("s1")
		}()
		wg.Wait()

		if markErr == nil {
			assert.ErrorIs(t, delErr, ErrSessionBusy, "a marked session survives")
			_, err := store.GetSession("s1")
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, markErr, ErrSessionNotFound)
			assert.NoError(t, delErr)
		}
	}
}
