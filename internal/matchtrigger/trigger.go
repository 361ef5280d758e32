package matchtrigger

import (
	"context"
	"errors"
	"time"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/pubsub"
)

const retryDelay = 2 * time.Second

// ChatCreator opens the chat for a matched offer.
type ChatCreator interface {
	CreateChat(ctx context.Context, offerID, userA, userB string) (*domain.Chat, error)
}

// Trigger listens for offer match events and opens a chat between the
// offer owner and the accepted joiner. Delivery is at least once, so
// CreateChat must be idempotent per offer and pair.
type Trigger struct {
	subscriber pubsub.Subscriber
	chats      ChatCreator
	pattern    string
	retry      time.Duration
	doneCh     chan struct{}
}

func NewTrigger(subscriber pubsub.Subscriber, chats ChatCreator) *Trigger {
	return &Trigger{
		subscriber: subscriber,
		chats:      chats,
		pattern:    pubsub.PatternOfferMatch,
		retry:      retryDelay,
		doneCh:     make(chan struct{}),
	}
}

// Done returns a channel that is closed when Run exits.
func (t *Trigger) Done() <-chan struct{} { return t.doneCh }

// Run consumes match events until ctx is done, resubscribing if the
// event stream ends early.
func (t *Trigger) Run(ctx context.Context) {
	defer close(t.doneCh)
	l := log.L()
	l.Info().Str("pattern", t.pattern).Msg("match trigger started")

	for {
		err := t.consume(ctx)
		if ctx.Err() != nil {
			l.Info().Msg("match trigger stopped")
			return
		}
		if err != nil {
			l.Warn().Err(err).Msg("match subscription error, retrying")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(t.retry):
		}
	}
}

func (t *Trigger) consume(ctx context.Context) error {
	events, err := t.subscriber.SubscribePattern(ctx, t.pattern)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := t.Handle(ctx, event); err != nil {
				l := log.L()
				l.Error().Err(err).Str("event_key", event.Key).Msg("failed to handle match event")
			}
		}
	}
}

// Handle opens the chat for a single match event. Events of other types
// are ignored.
func (t *Trigger) Handle(ctx context.Context, event *pubsub.Event) error {
	if event == nil || event.Type != pubsub.EventOfferMatched {
		return nil
	}

	var payload pubsub.OfferMatchedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	if payload.OfferID == "" {
		payload.OfferID = event.Key
	}

	chat, err := t.chats.CreateChat(ctx, payload.OfferID, payload.OwnerID, payload.JoinerID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidParticipants) {
			l := log.L()
			l.Warn().Err(err).Str("offer_id", payload.OfferID).Msg("match event dropped")
			return nil
		}
		return err
	}

	l := log.L()
	l.Info().
		Str("offer_id", payload.OfferID).
		Str(log.FieldChatID, chat.ID).
		Msg("chat opened for matched offer")
	return nil
}
