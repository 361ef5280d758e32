//go:generate go run go.uber.org/mock/mockgen -source=notifier.go -destination=../mocks/mock_notifier.go -package=mocks
package notify

import (
	"context"
	"fmt"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/pubsub"
)

const previewLength = 80

// Notifier alerts a recipient that had no live connection when a message arrived.
type Notifier interface {
	NotifyOffline(ctx context.Context, recipientID string, msg *domain.Message) error
}

// PubSubNotifier hands offline notices to the notification collaborator over
// the event bus. It does not deliver push notifications itself.
type PubSubNotifier struct {
	publisher pubsub.Publisher
}

func NewPubSubNotifier(publisher pubsub.Publisher) *PubSubNotifier {
	return &PubSubNotifier{publisher: publisher}
}

func (n *PubSubNotifier) NotifyOffline(ctx context.Context, recipientID string, msg *domain.Message) error {
	l := log.Ctx(ctx)

	event, err := pubsub.NewEvent(pubsub.EventChatOfflineMessage, recipientID, pubsub.OfflineMessagePayload{
		RecipientID: recipientID,
		ChatID:      msg.ChatID,
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		Preview:     Preview(msg.Content),
	})
	if err != nil {
		return fmt.Errorf("failed to build offline event: %w", err)
	}

	if err := n.publisher.Publish(ctx, pubsub.UserOfflineChannel(recipientID), event); err != nil {
		return fmt.Errorf("failed to publish offline event: %w", err)
	}

	l.Debug().
		Str(log.FieldRecipientID, recipientID).
		Str(log.FieldMessageID, msg.ID).
		Msg("offline notice published")
	return nil
}

// Preview shortens content for a notification body.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "…"
}
