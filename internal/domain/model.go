package domain

import (
	"time"
)

// ChatModel is the GORM model for chats table.
type ChatModel struct {
	ID            string     `gorm:"type:varchar(36);primaryKey"`
	OfferID       string     `gorm:"type:varchar(64);index;not null"`
	User1ID       string     `gorm:"type:varchar(64);index;not null"`
	User2ID       string     `gorm:"type:varchar(64);index;not null"`
	LastMessage   *string    `gorm:"type:text"`
	LastMessageAt *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

// TableName specifies the table name for ChatModel.
func (ChatModel) TableName() string {
	return "chats"
}

// ToDomain converts ChatModel to domain Chat.
func (m *ChatModel) ToDomain() *Chat {
	return &Chat{
		ID:            m.ID,
		OfferID:       m.OfferID,
		User1ID:       m.User1ID,
		User2ID:       m.User2ID,
		LastMessage:   m.LastMessage,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
	}
}

// ChatToModel converts domain Chat to ChatModel.
func ChatToModel(c *Chat) *ChatModel {
	return &ChatModel{
		ID:            c.ID,
		OfferID:       c.OfferID,
		User1ID:       c.User1ID,
		User2ID:       c.User2ID,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
}

// MessageModel is the GORM model for messages table.
// The (chat_id, created_at, id) index serves ordered retrieval.
type MessageModel struct {
	ID        string    `gorm:"type:varchar(26);primaryKey;index:idx_messages_chat_order,priority:3"`
	ChatID    string    `gorm:"type:varchar(36);not null;index:idx_messages_chat_order,priority:1"`
	SenderID  string    `gorm:"type:varchar(64);not null"`
	Content   string    `gorm:"type:text;not null"`
	Type      string    `gorm:"type:varchar(32);not null;default:'text'"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index:idx_messages_chat_order,priority:2"`
}

// TableName specifies the table name for MessageModel.
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts MessageModel to domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      m.Type,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

// MessageToModel converts domain Message to MessageModel.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		Type:      msg.Type,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt,
	}
}
