package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/weiawesome/offershare/internal/audit"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/repository"
	"github.com/weiawesome/offershare/pkg/log"
)

// ParticipantSource resolves the participant pair of a chat.
type ParticipantSource interface {
	Load(ctx context.Context, chatID string) (domain.Participants, error)
}

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	store        repository.Store
	participants ParticipantSource
}

// NewChatService creates a new chat service.
func NewChatService(store repository.Store, participants ParticipantSource) ChatService {
	return &chatServiceImpl{
		store:        store,
		participants: participants,
	}
}

func (s *chatServiceImpl) authorize(ctx context.Context, chatID, userID string) error {
	p, err := s.participants.Load(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			return err
		}
		return fmt.Errorf("failed to load chat participants: %w", err)
	}
	if !p.Has(userID) {
		return domain.ErrNotParticipant
	}
	return nil
}

// GetMessages returns the full history of a chat, oldest first.
func (s *chatServiceImpl) GetMessages(ctx context.Context, chatID, requesterID string) ([]domain.Message, error) {
	if err := s.authorize(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessagesByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages from repository: %w", err)
	}
	return messages, nil
}

// MarkRead marks every unread message the reader received in the chat as read.
func (s *chatServiceImpl) MarkRead(ctx context.Context, chatID, readerID string) (int64, error) {
	if err := s.authorize(ctx, chatID, readerID); err != nil {
		return 0, err
	}

	n, err := s.store.SetMessagesRead(ctx, chatID, readerID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}

	if n > 0 {
		audit.LogWithDetail(ctx, audit.ActionMarkRead, readerID, chatID, "messages marked read")
	}
	return n, nil
}

// GetChat returns a chat the requester takes part in.
func (s *chatServiceImpl) GetChat(ctx context.Context, chatID, requesterID string) (*domain.Chat, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Participants().Has(requesterID) {
		return nil, domain.ErrNotParticipant
	}
	return chat, nil
}

func (s *chatServiceImpl) ListUserChats(ctx context.Context, userID string) ([]domain.Chat, error) {
	chats, err := s.store.ListChatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// CreateChat opens the chat for a matched offer. Repeated calls for the same
// offer and pair return the existing chat.
func (s *chatServiceImpl) CreateChat(ctx context.Context, offerID, userA, userB string) (*domain.Chat, error) {
	l := log.Ctx(ctx)

	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return nil, fmt.Errorf("%w: offer id is required", domain.ErrInvalidParticipants)
	}
	if err := domain.ValidateParticipants(userA, userB); err != nil {
		return nil, err
	}

	existing, err := s.store.FindChat(ctx, offerID, userA, userB)
	if err == nil {
		l.Debug().Str(log.FieldChatID, existing.ID).Str("offer_id", offerID).Msg("chat already exists for offer")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrChatNotFound) {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	chat := &domain.Chat{OfferID: offerID, User1ID: userA, User2ID: userB}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	audit.LogWithDetail(ctx, audit.ActionCreateChat, userA, chat.ID, "chat created for offer "+offerID)
	return chat, nil
}
