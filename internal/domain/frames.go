package domain

import (
	"encoding/json"
	"fmt"
)

// Frame types from client.
const (
	FrameChatMessage = "chat_message"
	FramePing        = "ping"
)

// Frame types to client.
const (
	FrameNewMessage  = "new_message"
	FrameMessageSent = "message_sent"
	FrameError       = "error"
	FramePong        = "pong"
)

// BaseFrame is the envelope shared by every frame.
type BaseFrame struct {
	Type string `json:"type"`
}

// Client -> Server frames

// ChatMessageFrame asks the server to send a message. SenderID is optional;
// the connection identity is authoritative.
type ChatMessageFrame struct {
	Type        string `json:"type"`
	ChatID      string `json:"chat_id"`
	SenderID    string `json:"sender_id,omitempty"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// Server -> Client frames

// MessageFrame carries a persisted message (new_message, message_sent).
type MessageFrame struct {
	Type    string   `json:"type"`
	Message *Message `json:"message"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PongFrame struct {
	Type string `json:"type"`
}

func NewMessageFrame(msg *Message) *MessageFrame {
	return &MessageFrame{Type: FrameNewMessage, Message: msg}
}

func NewMessageSentFrame(msg *Message) *MessageFrame {
	return &MessageFrame{Type: FrameMessageSent, Message: msg}
}

func NewErrorFrame(code, message string) *ErrorFrame {
	return &ErrorFrame{
		Type:    FrameError,
		Code:    code,
		Message: message,
	}
}

func NewPongFrame() *PongFrame {
	return &PongFrame{Type: FramePong}
}

// DecodeFrameType reads the type discriminator of a raw frame.
func DecodeFrameType(data []byte) (string, error) {
	var base BaseFrame
	if err := json.Unmarshal(data, &base); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if base.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return base.Type, nil
}

// DecodeChatMessage parses a chat_message frame. Content is not checked
// here; the router owns content validation.
func DecodeChatMessage(data []byte) (*ChatMessageFrame, error) {
	var f ChatMessageFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Type != FrameChatMessage {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, f.Type)
	}
	if f.ChatID == "" {
		return nil, fmt.Errorf("%w: chat_id is required", ErrMalformedFrame)
	}
	return &f, nil
}
