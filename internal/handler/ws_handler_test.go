package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/mocks"
	"github.com/weiawesome/offershare/internal/registry"
	"github.com/weiawesome/offershare/pkg/middleware"
)

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      5 * time.Second,
		MaxMessageSize: 4096,
		SendBufferSize: 16,
	}
}

type wsFixture struct {
	server   *httptest.Server
	registry *registry.Local
	sender   *mocks.MockMessageSender
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &wsFixture{
		registry: registry.NewLocal(nil),
		sender:   mocks.NewMockMessageSender(ctrl),
	}

	engine := gin.New()
	NewWSHandler(f.registry, f.sender, testWSConfig()).
		RegisterRoutes(engine, middleware.NewAuthMiddleware(tokenResolver{}))

	f.server = httptest.NewServer(engine)
	t.Cleanup(func() {
		f.registry.CloseAll()
		f.server.Close()
	})
	return f
}

func (f *wsFixture) dial(t *testing.T, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/chat/ws?token=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		_, ok := f.registry.Lookup(user)
		return ok
	}, time.Second, 5*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestWS_RejectsUnauthenticated(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/chat/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, f.registry.Count())
}

func TestWS_PingPong(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	require.NoError(t, conn.WriteJSON(gin.H{"type": domain.FramePing}))

	frame := readFrame(t, conn)
	require.Equal(t, domain.FramePong, frame["type"])
}

func TestWS_MalformedFrameKeepsConnectionOpen(t *testing.T) {
	// Given
	r := require.New(t)
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	// When
	r.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	r.NoError(conn.WriteJSON(gin.H{"type": "typing"}))
	r.NoError(conn.WriteJSON(gin.H{"type": domain.FrameChatMessage, "content": "no chat"}))

	// Then
	for i := 0; i < 3; i++ {
		frame := readFrame(t, conn)
		r.Equal(domain.FrameError, frame["type"])
		r.NotEmpty(frame["code"])
	}

	r.NoError(conn.WriteJSON(gin.H{"type": domain.FramePing}))
	r.Equal(domain.FramePong, readFrame(t, conn)["type"])
}

func TestWS_ChatMessageEchoesMessageSent(t *testing.T) {
	// Given
	r := require.New(t)
	f := newWSFixture(t)
	f.sender.EXPECT().
		SendMessage(gomock.Any(), domain.Draft{ChatID: "c1", SenderID: "alice", Content: "hello"}).
		Return(&domain.Message{ID: "m1", ChatID: "c1", SenderID: "alice", Content: "hello", Type: domain.MessageTypeText}, nil)
	conn := f.dial(t, "alice")

	// When
	r.NoError(conn.WriteJSON(domain.ChatMessageFrame{Type: domain.FrameChatMessage, ChatID: "c1", Content: "hello"}))

	// Then
	frame := readFrame(t, conn)
	r.Equal(domain.FrameMessageSent, frame["type"])
	msg := frame["message"].(map[string]interface{})
	r.Equal("m1", msg["id"])
	r.Equal("alice", msg["sender_id"])
}

func TestWS_SenderMismatchRejected(t *testing.T) {
	r := require.New(t)
	f := newWSFixture(t)
	f.sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Times(0)
	conn := f.dial(t, "alice")

	r.NoError(conn.WriteJSON(domain.ChatMessageFrame{Type: domain.FrameChatMessage, ChatID: "c1", SenderID: "bob", Content: "spoof"}))

	frame := readFrame(t, conn)
	r.Equal(domain.FrameError, frame["type"])
	r.Equal(domain.ErrSenderMismatch.Error(), frame["message"])
}

func TestWS_SendFailureBecomesErrorFrame(t *testing.T) {
	r := require.New(t)
	f := newWSFixture(t)
	f.sender.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(nil, domain.ErrNotParticipant)
	conn := f.dial(t, "carol")

	r.NoError(conn.WriteJSON(domain.ChatMessageFrame{Type: domain.FrameChatMessage, ChatID: "c1", Content: "let me in"}))

	frame := readFrame(t, conn)
	r.Equal(domain.FrameError, frame["type"])
	r.Equal("BAD_REQUEST", frame["code"])
}

func TestWS_SecondConnectionSupersedesFirst(t *testing.T) {
	// Given
	r := require.New(t)
	f := newWSFixture(t)
	first := f.dial(t, "bob")
	firstConn, _ := f.registry.Lookup("bob")

	// When
	second := f.dial(t, "bob")
	r.Eventually(func() bool {
		current, ok := f.registry.Lookup("bob")
		return ok && current.ID() != firstConn.ID()
	}, time.Second, 5*time.Millisecond)

	// Then the first socket is closed by the server
	r.NoError(first.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := first.ReadMessage()
	r.Error(err)

	// And the late release of the first socket leaves the second registered
	time.Sleep(50 * time.Millisecond)
	current, ok := f.registry.Lookup("bob")
	r.True(ok)
	r.NotEqual(firstConn.ID(), current.ID())
	r.Equal(1, f.registry.Count())

	r.NoError(second.WriteJSON(gin.H{"type": domain.FramePing}))
	r.Equal(domain.FramePong, readFrame(t, second)["type"])
}

func TestWS_DisconnectReleasesRegistration(t *testing.T) {
	f := newWSFixture(t)
	conn := f.dial(t, "alice")

	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		_, ok := f.registry.Lookup("alice")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	allowAll := originChecker(nil)
	restricted := originChecker([]string{"https://offershare.app"})

	req := httptest.NewRequest(http.MethodGet, "/chat/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	require.True(t, allowAll(req))
	require.False(t, restricted(req))

	req.Header.Set("Origin", "https://offershare.app")
	require.True(t, restricted(req))

	req.Header.Del("Origin")
	require.True(t, restricted(req))
}
