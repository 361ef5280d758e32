package pubsub

import "fmt"

// Channel naming conventions. The third segment is always the entity key,
// which the kafka driver uses as the message key.
const (
	// Match trigger -> chat service
	ChannelOfferMatch = "offer:match:%s"
	PatternOfferMatch = "offer:match:*"

	// Chat service -> notification collaborator
	ChannelUserOffline = "chat:user:%s:offline"
)

// Event types.
const (
	EventOfferMatched       = "offer_matched"
	EventChatOfflineMessage = "chat_offline_message"
)

// OfferMatchChannel returns the channel an offer's match events are published on.
func OfferMatchChannel(offerID string) string {
	return fmt.Sprintf(ChannelOfferMatch, offerID)
}

// UserOfflineChannel returns the channel offline-message notices for a user go to.
func UserOfflineChannel(userID string) string {
	return fmt.Sprintf(ChannelUserOffline, userID)
}

// OfferMatchedPayload is published when a join request on an offer is accepted.
type OfferMatchedPayload struct {
	OfferID  string `json:"offer_id"`
	OwnerID  string `json:"owner_id"`
	JoinerID string `json:"joiner_id"`
}

// OfflineMessagePayload asks the notification collaborator to alert a user
// who had no live connection when a message arrived.
type OfflineMessagePayload struct {
	RecipientID string `json:"recipient_id"`
	ChatID      string `json:"chat_id"`
	MessageID   string `json:"message_id"`
	SenderID    string `json:"sender_id"`
	Preview     string `json:"preview"`
}
