package domain

import "errors"

var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrNotParticipant      = errors.New("user is not a participant of this chat")
	ErrEmptyContent        = errors.New("message content is empty")
	ErrInvalidParticipants = errors.New("a chat needs two distinct participants")
	ErrSenderMismatch      = errors.New("sender does not match the connection identity")
	ErrMalformedFrame      = errors.New("malformed frame")
	ErrUnknownFrame        = errors.New("unknown frame type")
)

// IsValidation reports whether err is a caller error that must not close
// a connection or be retried.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotParticipant) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrInvalidParticipants) ||
		errors.Is(err, ErrSenderMismatch) ||
		errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrUnknownFrame)
}
