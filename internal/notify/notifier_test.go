package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/mocks"
	"github.com/weiawesome/offershare/pkg/pubsub"
)

func TestPubSubNotifier_PublishesOnRecipientChannel(t *testing.T) {
	// Given
	r := require.New(t)
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	n := NewPubSubNotifier(publisher)
	msg := &domain.Message{ID: "m1", ChatID: "c1", SenderID: "alice", Content: "hello"}

	var got *pubsub.Event
	publisher.EXPECT().
		Publish(gomock.Any(), "chat:user:bob:offline", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ev *pubsub.Event) error {
			got = ev
			return nil
		})

	// When
	err := n.NotifyOffline(context.Background(), "bob", msg)

	// Then
	r.NoError(err)
	r.Equal(pubsub.EventChatOfflineMessage, got.Type)
	r.Equal("bob", got.Key)

	var payload pubsub.OfflineMessagePayload
	r.NoError(got.UnmarshalPayload(&payload))
	r.Equal("m1", payload.MessageID)
	r.Equal("hello", payload.Preview)
}

func TestPubSubNotifier_PublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := mocks.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	err := NewPubSubNotifier(publisher).NotifyOffline(context.Background(), "bob", &domain.Message{ID: "m1"})
	require.ErrorContains(t, err, "broker down")
}

func TestPreview(t *testing.T) {
	require.Equal(t, "short", Preview("short"))

	long := strings.Repeat("é", 100)
	p := Preview(long)
	require.Equal(t, previewLength+1, len([]rune(p)))
	require.True(t, strings.HasSuffix(p, "…"))
}
