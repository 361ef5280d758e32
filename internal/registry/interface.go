//go:generate go run go.uber.org/mock/mockgen -source=interface.go -destination=../mocks/mock_conn.go -package=mocks
package registry

import (
	"context"
	"errors"
)

var (
	ErrConnClosed     = errors.New("connection closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn is a live duplex connection owned by one user identity.
type Conn interface {
	ID() string
	// Send enqueues a frame without blocking.
	Send(frame interface{}) error
	Close()
}

// Presence advertises which users are connected to which instance.
type Presence interface {
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
	StartHeartbeat(ctx context.Context) error
	StopHeartbeat()
	Close() error
}
