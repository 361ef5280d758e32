package domain

import (
	"time"
)

// Chat is a two-party conversation created once per matched offer.
// The participant pair never changes after creation.
type Chat struct {
	ID            string     `json:"id"`
	OfferID       string     `json:"offer_id"`
	User1ID       string     `json:"user1_id"`
	User2ID       string     `json:"user2_id"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Participants returns the chat's participant pair.
func (c *Chat) Participants() Participants {
	return Participants{ChatID: c.ID, User1ID: c.User1ID, User2ID: c.User2ID}
}

// Participants is the immutable part of a chat needed to route a message.
type Participants struct {
	ChatID  string `json:"chat_id"`
	User1ID string `json:"user1_id"`
	User2ID string `json:"user2_id"`
}

// Has reports whether userID is one of the two participants.
func (p Participants) Has(userID string) bool {
	return userID != "" && (userID == p.User1ID || userID == p.User2ID)
}

// Other returns the participant that is not userID.
func (p Participants) Other(userID string) (string, bool) {
	switch userID {
	case p.User1ID:
		return p.User2ID, true
	case p.User2ID:
		return p.User1ID, true
	}
	return "", false
}

// ValidateParticipants checks a prospective pair: both present and distinct.
func ValidateParticipants(userA, userB string) error {
	if userA == "" || userB == "" || userA == userB {
		return ErrInvalidParticipants
	}
	return nil
}

// CreateChatRequest represents a create chat request from the match trigger.
type CreateChatRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
	User1ID string `json:"user1_id" binding:"required"`
	User2ID string `json:"user2_id" binding:"required"`
}

// SendMessageRequest represents a message sent over the request/response path.
type SendMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

// MarkReadResponse reports how many messages a mark-read call flipped.
type MarkReadResponse struct {
	ChatID string `json:"chat_id"`
	Marked int64  `json:"marked"`
}

// PresenceResponse tells whether a user currently holds a live connection.
type PresenceResponse struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}
