package domain

import "time"

// MessageTypeText is used when a sender does not tag a message.
const MessageTypeText = "text"

// Message is one piece of content in a chat. Type is an opaque tag
// (text, location, product link...) forwarded verbatim to clients.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"message_type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeType returns the stored type tag for an optional client value.
func NormalizeType(t string) string {
	if t == "" {
		return MessageTypeText
	}
	return t
}

// Draft is a message a participant asked to send, before it is persisted.
type Draft struct {
	ChatID   string
	SenderID string
	Content  string
	Type     string
}
