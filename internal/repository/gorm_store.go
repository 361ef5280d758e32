package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/idgen"
	"github.com/weiawesome/offershare/pkg/log"
)

// timestampPrecision is the coarsest precision of the supported drivers
// (MySQL datetime(3)), so a timestamp handed back to callers matches the
// stored value.
const timestampPrecision = time.Millisecond

// GormStore implements Store using GORM.
type GormStore struct {
	db  *gorm.DB
	ids idgen.Generator
	now func() time.Time
}

// NewGormStore creates a new GORM-based store.
func NewGormStore(db *gorm.DB, ids idgen.Generator) *GormStore {
	return &GormStore{
		db:  db,
		ids: ids,
		now: func() time.Time { return time.Now().UTC().Truncate(timestampPrecision) },
	}
}

// Migrate creates or updates the chats and messages tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.ChatModel{}, &domain.MessageModel{})
}

// CreateChat creates a new chat.
func (s *GormStore) CreateChat(ctx context.Context, chat *domain.Chat) error {
	l := log.Ctx(ctx)

	if err := domain.ValidateParticipants(chat.User1ID, chat.User2ID); err != nil {
		return err
	}
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	chat.CreatedAt = s.now()

	model := domain.ChatToModel(chat)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Str(log.FieldChatID, chat.ID).Msg("failed to create chat in db")
		return err
	}

	l.Debug().Str(log.FieldChatID, chat.ID).Msg("chat created in db")
	return nil
}

// GetChat retrieves a chat by ID.
func (s *GormStore) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var model domain.ChatModel
	result := s.db.WithContext(ctx).First(&model, "id = ?", chatID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChatNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to get chat by id")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// FindChat looks up the chat of an offer between two users, in either order.
func (s *GormStore) FindChat(ctx context.Context, offerID, userA, userB string) (*domain.Chat, error) {
	var model domain.ChatModel
	result := s.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)", userA, userB, userB, userA).
		Order("created_at ASC").
		First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChatNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str("offer_id", offerID).Msg("failed to find chat")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListChatsByUser returns the user's chats, most recently active first.
func (s *GormStore) ListChatsByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	var models []domain.ChatModel
	result := s.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldUserID, userID).Msg("failed to list user chats from db")
		return nil, result.Error
	}

	chats := make([]domain.Chat, len(models))
	for i, model := range models {
		chats[i] = *model.ToDomain()
	}
	return chats, nil
}

// InsertMessage stores a new unread message.
func (s *GormStore) InsertMessage(ctx context.Context, msg *domain.Message) error {
	l := log.Ctx(ctx)

	id, err := s.ids.Generate()
	if err != nil {
		return err
	}
	msg.ID = id
	msg.CreatedAt = s.now()
	msg.IsRead = false
	msg.Type = domain.NormalizeType(msg.Type)

	if err := s.db.WithContext(ctx).Create(domain.MessageToModel(msg)).Error; err != nil {
		l.Error().Err(err).Str(log.FieldChatID, msg.ChatID).Msg("failed to insert message")
		return err
	}
	return nil
}

// UpdateChatLastMessage refreshes the chat's last-message cache. An unknown
// chat is not an error: callers have already resolved the chat, and MySQL
// reports zero affected rows when the values are unchanged.
func (s *GormStore) UpdateChatLastMessage(ctx context.Context, chatID, content string, at time.Time) error {
	result := s.db.WithContext(ctx).Model(&domain.ChatModel{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{
			"last_message":    content,
			"last_message_at": at,
		})
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to update chat last message")
		return result.Error
	}
	return nil
}

// ListMessagesByChat returns every message of a chat in creation order.
func (s *GormStore) ListMessagesByChat(ctx context.Context, chatID string) ([]domain.Message, error) {
	var models []domain.MessageModel
	result := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to list messages from db")
		return nil, result.Error
	}

	messages := make([]domain.Message, len(models))
	for i, model := range models {
		messages[i] = *model.ToDomain()
	}
	return messages, nil
}

// SetMessagesRead marks the chat's unread messages from the other side as read.
func (s *GormStore) SetMessagesRead(ctx context.Context, chatID, excludingSender string) (int64, error) {
	result := s.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("chat_id = ? AND sender_id <> ? AND is_read = ?", chatID, excludingSender, false).
		Update("is_read", true)
	if result.Error != nil {
		l := log.Ctx(ctx)
		l.Error().Err(result.Error).Str(log.FieldChatID, chatID).Msg("failed to mark messages read")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Transaction runs fn inside a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, ids: s.ids, now: s.now})
	})
}
