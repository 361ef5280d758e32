package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/weiawesome/offershare/internal/cache"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/idgen"
	"github.com/weiawesome/offershare/internal/mocks"
	"github.com/weiawesome/offershare/internal/repository"
	"github.com/weiawesome/offershare/pkg/database"
)

var dbSeq atomic.Int64

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()

	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     fmt.Sprintf("file:service_%d?mode=memory&cache=shared", dbSeq.Add(1)),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return repository.NewGormStore(db, idgen.NewULIDGenerator())
}

func newService(store repository.Store) ChatService {
	return NewChatService(store, cache.NewParticipantLoader(cache.NopCache{}, store, time.Minute))
}

func seed(t *testing.T, store repository.Store, chatID string, senders ...string) {
	t.Helper()
	for i, s := range senders {
		msg := &domain.Message{ChatID: chatID, SenderID: s, Content: fmt.Sprintf("m%d", i)}
		require.NoError(t, store.InsertMessage(context.Background(), msg))
	}
}

func TestGetMessages(t *testing.T) {
	// Given
	r := require.New(t)
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "offer-1", "A", "B")
	r.NoError(err)
	seed(t, store, chat.ID, "A", "B", "A")

	// When
	msgs, err := svc.GetMessages(ctx, chat.ID, "B")

	// Then
	r.NoError(err)
	r.Len(msgs, 3)
	r.Equal([]string{"m0", "m1", "m2"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})

	_, err = svc.GetMessages(ctx, chat.ID, "C")
	r.ErrorIs(err, domain.ErrNotParticipant)

	_, err = svc.GetMessages(ctx, "missing", "A")
	r.ErrorIs(err, domain.ErrChatNotFound)
}

func TestMarkRead_MonotonicAndIdempotent(t *testing.T) {
	// Given
	r := require.New(t)
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "offer-1", "A", "B")
	r.NoError(err)
	seed(t, store, chat.ID, "A", "A", "B")

	// When
	n, err := svc.MarkRead(ctx, chat.ID, "B")

	// Then
	r.NoError(err)
	r.EqualValues(2, n)

	after, err := svc.GetMessages(ctx, chat.ID, "B")
	r.NoError(err)
	for _, m := range after {
		r.Equal(m.SenderID == "A", m.IsRead)
	}

	n, err = svc.MarkRead(ctx, chat.ID, "B")
	r.NoError(err)
	r.Zero(n)

	again, err := svc.GetMessages(ctx, chat.ID, "B")
	r.NoError(err)
	for i := range after {
		r.Equal(after[i].IsRead, again[i].IsRead)
	}

	// A reading afterwards flips only B's message and never un-reads anything.
	n, err = svc.MarkRead(ctx, chat.ID, "A")
	r.NoError(err)
	r.EqualValues(1, n)

	final, err := svc.GetMessages(ctx, chat.ID, "A")
	r.NoError(err)
	for _, m := range final {
		r.True(m.IsRead)
	}
}

func TestMarkRead_Rejections(t *testing.T) {
	r := require.New(t)
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "offer-1", "A", "B")
	r.NoError(err)

	_, err = svc.MarkRead(ctx, chat.ID, "C")
	r.ErrorIs(err, domain.ErrNotParticipant)

	_, err = svc.MarkRead(ctx, "missing", "A")
	r.ErrorIs(err, domain.ErrChatNotFound)
}

func TestCreateChat(t *testing.T) {
	r := require.New(t)
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	chat, err := svc.CreateChat(ctx, "offer-1", "owner", "joiner")
	r.NoError(err)
	r.NotEmpty(chat.ID)

	// The trigger may fire more than once for the same match.
	dup, err := svc.CreateChat(ctx, "offer-1", "joiner", "owner")
	r.NoError(err)
	r.Equal(chat.ID, dup.ID)

	other, err := svc.CreateChat(ctx, "offer-2", "owner", "joiner")
	r.NoError(err)
	r.NotEqual(chat.ID, other.ID)

	_, err = svc.CreateChat(ctx, "offer-3", "owner", "owner")
	r.ErrorIs(err, domain.ErrInvalidParticipants)

	_, err = svc.CreateChat(ctx, " ", "owner", "joiner")
	r.ErrorIs(err, domain.ErrInvalidParticipants)
	r.True(domain.IsValidation(err))
}

func TestGetChatAndList(t *testing.T) {
	r := require.New(t)
	store := newStore(t)
	svc := newService(store)
	ctx := context.Background()

	c1, err := svc.CreateChat(ctx, "offer-1", "A", "B")
	r.NoError(err)
	_, err = svc.CreateChat(ctx, "offer-2", "C", "A")
	r.NoError(err)
	_, err = svc.CreateChat(ctx, "offer-3", "C", "D")
	r.NoError(err)

	got, err := svc.GetChat(ctx, c1.ID, "B")
	r.NoError(err)
	r.Equal("offer-1", got.OfferID)

	_, err = svc.GetChat(ctx, c1.ID, "D")
	r.ErrorIs(err, domain.ErrNotParticipant)

	_, err = svc.GetChat(ctx, "missing", "A")
	r.ErrorIs(err, domain.ErrChatNotFound)

	chats, err := svc.ListUserChats(ctx, "A")
	r.NoError(err)
	r.Len(chats, 2)

	chats, err = svc.ListUserChats(ctx, "nobody")
	r.NoError(err)
	r.Empty(chats)
}

func TestGetMessages_StoreFailure(t *testing.T) {
	// Given
	r := require.New(t)
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	participants := mocks.NewMockParticipantSource(ctrl)
	dbDown := errors.New("connection refused")

	participants.EXPECT().Load(gomock.Any(), "c1").
		Return(domain.Participants{ChatID: "c1", User1ID: "A", User2ID: "B"}, nil)
	store.EXPECT().ListMessagesByChat(gomock.Any(), "c1").Return(nil, dbDown)

	// When
	_, err := NewChatService(store, participants).GetMessages(context.Background(), "c1", "A")

	// Then
	r.ErrorIs(err, dbDown)
}

func TestCreateChat_LookupFailureDoesNotCreate(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	dbDown := errors.New("connection refused")

	store.EXPECT().FindChat(gomock.Any(), "offer-1", "A", "B").Return(nil, dbDown)
	store.EXPECT().CreateChat(gomock.Any(), gomock.Any()).Times(0)

	_, err := NewChatService(store, mocks.NewMockParticipantSource(ctrl)).CreateChat(context.Background(), "offer-1", "A", "B")
	require.ErrorIs(t, err, dbDown)
}
