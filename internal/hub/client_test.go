package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/registry"
)

func TestClient_SendQueuesJSON(t *testing.T) {
	r := require.New(t)
	c := NewClient("alice", nil, config.WebSocketConfig{SendBufferSize: 4})

	r.NoError(c.Send(domain.NewPongFrame()))

	data := <-c.send
	var frame domain.BaseFrame
	r.NoError(json.Unmarshal(data, &frame))
	r.Equal(domain.FramePong, frame.Type)
}

func TestClient_FullBufferIsAMiss(t *testing.T) {
	r := require.New(t)
	c := NewClient("alice", nil, config.WebSocketConfig{SendBufferSize: 1})

	r.NoError(c.Send(domain.NewPongFrame()))
	r.ErrorIs(c.Send(domain.NewPongFrame()), registry.ErrSendBufferFull)
}

func TestClient_SendAfterClose(t *testing.T) {
	r := require.New(t)
	c := NewClient("alice", nil, config.WebSocketConfig{})

	c.Close()
	c.Close()

	r.ErrorIs(c.Send(domain.NewPongFrame()), registry.ErrConnClosed)
}

func TestClient_UniqueIDs(t *testing.T) {
	a := NewClient("alice", nil, config.WebSocketConfig{})
	b := NewClient("alice", nil, config.WebSocketConfig{})
	require.NotEqual(t, a.ID(), b.ID())

	var _ registry.Conn = a
}
