//go:generate go run go.uber.org/mock/mockgen -source=router.go -destination=../mocks/mock_participant_source.go -package=mocks
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weiawesome/offershare/internal/audit"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/notify"
	"github.com/weiawesome/offershare/internal/registry"
	"github.com/weiawesome/offershare/internal/repository"
	"github.com/weiawesome/offershare/pkg/log"
)

// ParticipantSource resolves the participant pair of a chat.
type ParticipantSource interface {
	Load(ctx context.Context, chatID string) (domain.Participants, error)
}

// ConnLookup finds a user's live connection. IsOnline also consults the
// presence directory, so it covers connections held by other instances.
type ConnLookup interface {
	Lookup(userID string) (registry.Conn, bool)
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Router is the only path by which messages are created. A message is
// committed to the store before any push is attempted.
type Router struct {
	store        repository.Store
	participants ParticipantSource
	conns        ConnLookup
	notifier     notify.Notifier
}

func NewRouter(store repository.Store, participants ParticipantSource, conns ConnLookup, notifier notify.Notifier) *Router {
	return &Router{
		store:        store,
		participants: participants,
		conns:        conns,
		notifier:     notifier,
	}
}

// SendMessage validates, persists and pushes a message, returning it as stored.
// Only validation and persistence failures are returned; a failed push is not.
func (r *Router) SendMessage(ctx context.Context, draft domain.Draft) (*domain.Message, error) {
	p, err := r.participants.Load(ctx, draft.ChatID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load chat participants: %w", err)
	}
	if !p.Has(draft.SenderID) {
		return nil, domain.ErrNotParticipant
	}
	if strings.TrimSpace(draft.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	msg := &domain.Message{
		ChatID:   draft.ChatID,
		SenderID: draft.SenderID,
		Content:  draft.Content,
		Type:     draft.Type,
	}
	err = r.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.InsertMessage(ctx, msg); err != nil {
			return err
		}
		return tx.UpdateChatLastMessage(ctx, msg.ChatID, msg.Content, msg.CreatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, msg.SenderID, msg.ChatID, "message sent")

	recipientID, _ := p.Other(msg.SenderID)
	r.deliver(ctx, recipientID, msg)

	return msg, nil
}

// deliver pushes msg to the recipient's live connection if there is one.
// Misses are expected and only logged.
func (r *Router) deliver(ctx context.Context, recipientID string, msg *domain.Message) {
	l := log.Ctx(ctx)

	conn, ok := r.conns.Lookup(recipientID)
	if !ok {
		online, err := r.conns.IsOnline(ctx, recipientID)
		if err != nil {
			l.Warn().Err(err).Str(log.FieldRecipientID, recipientID).Msg("presence lookup failed")
		}
		if online {
			l.Debug().Str(log.FieldRecipientID, recipientID).Str(log.FieldMessageID, msg.ID).Msg("recipient connected elsewhere, offline notice skipped")
			return
		}
		if err := r.notifier.NotifyOffline(ctx, recipientID, msg); err != nil {
			l.Warn().Err(err).Str(log.FieldRecipientID, recipientID).Str(log.FieldMessageID, msg.ID).Msg("offline notice failed")
		}
		return
	}

	if err := conn.Send(domain.NewMessageFrame(msg)); err != nil {
		l.Debug().Err(err).
			Str(log.FieldRecipientID, recipientID).
			Str(log.FieldConnID, conn.ID()).
			Str(log.FieldMessageID, msg.ID).
			Msg("delivery miss")
		return
	}

	l.Debug().Str(log.FieldRecipientID, recipientID).Str(log.FieldMessageID, msg.ID).Msg("message pushed")
}
