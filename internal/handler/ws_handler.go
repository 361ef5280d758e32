package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/weiawesome/offershare/internal/audit"
	"github.com/weiawesome/offershare/internal/config"
	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/hub"
	"github.com/weiawesome/offershare/internal/registry"
	"github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/middleware"
)

// ConnRegistry is the part of the connection registry the websocket
// handler drives.
type ConnRegistry interface {
	Register(userID string, conn registry.Conn) registry.Conn
	Release(userID string, conn registry.Conn) bool
}

type WSHandler struct {
	registry ConnRegistry
	sender   MessageSender
	wsCfg    config.WebSocketConfig
	upgrader websocket.Upgrader
}

func NewWSHandler(reg ConnRegistry, sender MessageSender, wsCfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		registry: reg,
		sender:   sender,
		wsCfg:    wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(wsCfg.AllowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// RegisterRoutes mounts the websocket endpoint. The identity is resolved by
// auth before the upgrade and fixed for the life of the connection.
func (h *WSHandler) RegisterRoutes(r *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	r.GET("/chat/ws", authMiddleware.RequireAuth(), h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(userID, conn, h.wsCfg)
	ctx := h.clientContext(client)

	if prev := h.registry.Register(userID, client); prev != nil {
		prev.Close()
		audit.LogWithDetail(ctx, audit.ActionSupersede, userID, prev.ID(), "previous connection superseded")
	}
	audit.Log(ctx, audit.ActionConnect, userID, "websocket connected")

	go client.WritePump()
	go client.ReadPump(h.handleFrame, h.release)
}

func (h *WSHandler) clientContext(client *hub.Client) context.Context {
	logger := log.L().With().
		Str(log.FieldUserID, client.UserID).
		Str(log.FieldConnID, client.ID()).
		Logger()
	return log.WithLogger(context.Background(), logger)
}

func (h *WSHandler) release(client *hub.Client) {
	ctx := h.clientContext(client)
	released := h.registry.Release(client.UserID, client)

	l := log.Ctx(ctx)
	l.Info().
		Dur("duration", time.Since(client.ConnectedAt)).
		Bool("released", released).
		Msg("websocket closed")

	if released {
		audit.Log(ctx, audit.ActionDisconnect, client.UserID, "websocket disconnected")
	}
}

// handleFrame never closes the connection; bad frames get an error frame.
func (h *WSHandler) handleFrame(client *hub.Client, data []byte) {
	ctx := h.clientContext(client)
	l := log.Ctx(ctx)

	frameType, err := domain.DecodeFrameType(data)
	if err != nil {
		l.Debug().Err(err).Msg("malformed frame dropped")
		h.sendError(ctx, client, err)
		return
	}

	switch frameType {
	case domain.FrameChatMessage:
		h.handleChatMessage(ctx, client, data)

	case domain.FramePing:
		h.reply(ctx, client, domain.NewPongFrame())

	default:
		l.Debug().Str(log.FieldFrameType, frameType).Msg("unknown frame type")
		h.sendError(ctx, client, domain.ErrUnknownFrame)
	}
}

func (h *WSHandler) handleChatMessage(ctx context.Context, client *hub.Client, data []byte) {
	l := log.Ctx(ctx)

	frame, err := domain.DecodeChatMessage(data)
	if err != nil {
		l.Debug().Err(err).Msg("malformed chat_message dropped")
		h.sendError(ctx, client, err)
		return
	}
	if frame.SenderID != "" && frame.SenderID != client.UserID {
		l.Warn().Str("claimed_sender", frame.SenderID).Str(log.FieldChatID, frame.ChatID).Msg("sender mismatch")
		h.sendError(ctx, client, domain.ErrSenderMismatch)
		return
	}

	msg, err := h.sender.SendMessage(ctx, domain.Draft{
		ChatID:   frame.ChatID,
		SenderID: client.UserID,
		Content:  frame.Content,
		Type:     frame.MessageType,
	})
	if err != nil {
		if !domain.IsValidation(err) && !errors.Is(err, domain.ErrChatNotFound) {
			l.Error().Err(err).Str(log.FieldChatID, frame.ChatID).Msg("failed to send message")
		}
		h.sendError(ctx, client, err)
		return
	}

	h.reply(ctx, client, domain.NewMessageSentFrame(msg))
}

func (h *WSHandler) sendError(ctx context.Context, client *hub.Client, err error) {
	status, code := classify(err, false)
	h.reply(ctx, client, domain.NewErrorFrame(code, publicMessage(err, status, "failed to send message")))
}

func (h *WSHandler) reply(ctx context.Context, client *hub.Client, frame interface{}) {
	if err := client.Send(frame); err != nil {
		l := log.Ctx(ctx)
		l.Debug().Err(err).Msg("reply dropped")
	}
}
