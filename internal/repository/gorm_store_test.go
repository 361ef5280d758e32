package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/idgen"
	"github.com/weiawesome/offershare/pkg/database"
)

var dbSeq atomic.Int64

func newTestStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     fmt.Sprintf("file:store_%d?mode=memory&cache=shared", dbSeq.Add(1)),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return NewGormStore(db, idgen.NewULIDGenerator())
}

func createChat(t *testing.T, s *GormStore, a, b string) *domain.Chat {
	t.Helper()
	chat := &domain.Chat{OfferID: "offer-" + a + b, User1ID: a, User2ID: b}
	require.NoError(t, s.CreateChat(context.Background(), chat))
	return chat
}

func insert(t *testing.T, s Store, chatID, sender, content string) *domain.Message {
	t.Helper()
	msg := &domain.Message{ChatID: chatID, SenderID: sender, Content: content}
	require.NoError(t, s.InsertMessage(context.Background(), msg))
	return msg
}

func TestCreateChat(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	chat := createChat(t, s, "alice", "bob")
	require.NotEmpty(t, chat.ID)
	require.False(t, chat.CreatedAt.IsZero())

	got, err := s.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.User1ID)
	require.Equal(t, "bob", got.User2ID)
	require.Nil(t, got.LastMessage)

	err = s.CreateChat(ctx, &domain.Chat{OfferID: "o", User1ID: "alice", User2ID: "alice"})
	require.ErrorIs(t, err, domain.ErrInvalidParticipants)
}

func TestGetChat_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetChat(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestFindChat_EitherOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")

	got, err := s.FindChat(ctx, chat.OfferID, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, chat.ID, got.ID)

	_, err = s.FindChat(ctx, "other-offer", "alice", "bob")
	require.ErrorIs(t, err, domain.ErrChatNotFound)
}

func TestInsertMessage_AssignsFields(t *testing.T) {
	s := newTestStore(t)
	chat := createChat(t, s, "alice", "bob")

	msg := &domain.Message{ChatID: chat.ID, SenderID: "alice", Content: "hello", IsRead: true}
	require.NoError(t, s.InsertMessage(context.Background(), msg))

	require.Len(t, msg.ID, 26)
	require.False(t, msg.CreatedAt.IsZero())
	require.False(t, msg.IsRead)
	require.Equal(t, domain.MessageTypeText, msg.Type)
}

func TestListMessagesByChat_OrderAndTiebreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")
	other := createChat(t, s, "carol", "dave")

	// Every message shares one timestamp, so order falls to the id.
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	var want []string
	for i := 0; i < 5; i++ {
		sender := "alice"
		if i%2 == 1 {
			sender = "bob"
		}
		want = append(want, insert(t, s, chat.ID, sender, fmt.Sprintf("m%d", i)).ID)
	}
	insert(t, s, other.ID, "carol", "elsewhere")

	for run := 0; run < 2; run++ {
		got, err := s.ListMessagesByChat(ctx, chat.ID)
		require.NoError(t, err)
		require.Len(t, got, 5)
		for i, m := range got {
			require.Equal(t, want[i], m.ID)
			require.Equal(t, chat.ID, m.ChatID)
		}
	}
}

func TestListMessagesByChat_TimestampOrder(t *testing.T) {
	s := newTestStore(t)
	chat := createChat(t, s, "alice", "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	s.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	first := insert(t, s, chat.ID, "alice", "first")
	second := insert(t, s, chat.ID, "bob", "second")

	got, err := s.ListMessagesByChat(context.Background(), chat.ID)
	require.NoError(t, err)
	require.Equal(t, []string{first.ID, second.ID}, []string{got[0].ID, got[1].ID})
	require.False(t, got[1].CreatedAt.Before(got[0].CreatedAt))
}

func TestSetMessagesRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")

	insert(t, s, chat.ID, "alice", "a1")
	insert(t, s, chat.ID, "alice", "a2")
	insert(t, s, chat.ID, "bob", "b1")

	n, err := s.SetMessagesRead(ctx, chat.ID, "bob")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	msgs, err := s.ListMessagesByChat(ctx, chat.ID)
	require.NoError(t, err)
	for _, m := range msgs {
		if m.SenderID == "bob" {
			require.False(t, m.IsRead, "own message must stay unread")
		} else {
			require.True(t, m.IsRead)
		}
	}

	// Second call is a no-op.
	n, err = s.SetMessagesRead(ctx, chat.ID, "bob")
	require.NoError(t, err)
	require.Zero(t, n)

	again, err := s.ListMessagesByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, again, len(msgs))
	for i := range msgs {
		require.Equal(t, msgs[i].ID, again[i].ID)
		require.Equal(t, msgs[i].IsRead, again[i].IsRead)
	}
}

func TestUpdateChatLastMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateChatLastMessage(ctx, chat.ID, "latest", at))

	got, err := s.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastMessage)
	require.Equal(t, "latest", *got.LastMessage)
	require.True(t, got.LastMessageAt.Equal(at))

	require.NoError(t, s.UpdateChatLastMessage(ctx, "missing", "x", at))
}

func TestUpdateChatLastMessage_UnchangedValuesSucceed(t *testing.T) {
	// Given two identical messages sent within the same millisecond
	r := require.New(t)
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	// When
	for i := 0; i < 2; i++ {
		err := s.Transaction(ctx, func(tx Store) error {
			msg := &domain.Message{ChatID: chat.ID, SenderID: "alice", Content: "ok"}
			if err := tx.InsertMessage(ctx, msg); err != nil {
				return err
			}
			return tx.UpdateChatLastMessage(ctx, chat.ID, msg.Content, msg.CreatedAt)
		})
		r.NoError(err)
	}

	// Then both are stored
	msgs, err := s.ListMessagesByChat(ctx, chat.ID)
	r.NoError(err)
	r.Len(msgs, 2)
}

func TestInsertMessage_TimestampMatchesStoredRow(t *testing.T) {
	r := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, store, "alice", "bob")

	msg := insert(t, store, chat.ID, "alice", "hello")

	r.Zero(msg.CreatedAt.Nanosecond() % int(time.Millisecond))
	msgs, err := store.ListMessagesByChat(ctx, chat.ID)
	r.NoError(err)
	r.Len(msgs, 1)
	r.True(msgs[0].CreatedAt.Equal(msg.CreatedAt))
}

func TestTransaction_RollsBackInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	chat := createChat(t, s, "alice", "bob")

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx Store) error {
		insert(t, tx, chat.ID, "alice", "lost")
		return boom
	})
	require.ErrorIs(t, err, boom)

	msgs, err := s.ListMessagesByChat(ctx, chat.ID)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestListChatsByUser_RecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	older := createChat(t, s, "alice", "bob")

	s.now = func() time.Time { return base.Add(time.Minute) }
	newer := createChat(t, s, "carol", "alice")
	createChat(t, s, "carol", "dave")

	chats, err := s.ListChatsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	require.Equal(t, newer.ID, chats[0].ID)

	// A message bumps the older chat to the top.
	require.NoError(t, s.UpdateChatLastMessage(ctx, older.ID, "ping", base.Add(time.Hour)))

	chats, err = s.ListChatsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, older.ID, chats[0].ID)
	require.Equal(t, newer.ID, chats[1].ID)
}
