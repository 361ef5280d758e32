package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weiawesome/offershare/internal/domain"
	"github.com/weiawesome/offershare/internal/service"
	"github.com/weiawesome/offershare/pkg/log"
	"github.com/weiawesome/offershare/pkg/middleware"
	"github.com/weiawesome/offershare/pkg/response"
)

// Handler handles HTTP requests for chat service.
type Handler struct {
	chatService    service.ChatService
	sender         MessageSender
	presence       PresenceChecker
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(chatService service.ChatService, sender MessageSender, presence PresenceChecker, authMiddleware *middleware.AuthMiddleware) *Handler {
	return &Handler{
		chatService:    chatService,
		sender:         sender,
		presence:       presence,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())
	{
		chats := api.Group("/chats")
		{
			chats.GET("", h.ListMyChats)
			chats.POST("", h.CreateChat)
			chats.GET("/:chat_id", h.GetChat)
			chats.GET("/:chat_id/messages", h.GetMessages)
			chats.POST("/:chat_id/messages", h.SendMessage)
			chats.POST("/:chat_id/read", h.MarkRead)
		}

		api.GET("/users/:user_id/presence", h.GetPresence)
	}
}

func (h *Handler) fail(c *gin.Context, err error, readPath bool, fallback string) {
	status, code := classify(err, readPath)
	if status == http.StatusInternalServerError {
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str(log.FieldChatID, c.Param("chat_id")).Msg(fallback)
	}
	response.Error(c, status, code, publicMessage(err, status, fallback))
}

// GetMessages returns the full ordered history of a chat.
func (h *Handler) GetMessages(c *gin.Context) {
	ctx := c.Request.Context()
	chatID := c.Param("chat_id")

	messages, err := h.chatService.GetMessages(ctx, chatID, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err, true, "failed to get messages")
		return
	}

	response.Success(c, gin.H{
		"chat_id":  chatID,
		"messages": messages,
	})
}

// SendMessage sends a message without a websocket. The recipient is still
// pushed to if connected.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind send message request")
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.sender.SendMessage(ctx, domain.Draft{
		ChatID:   c.Param("chat_id"),
		SenderID: middleware.GetUserID(c),
		Content:  req.Content,
		Type:     req.MessageType,
	})
	if err != nil {
		h.fail(c, err, false, "failed to send message")
		return
	}

	response.Created(c, msg)
}

// MarkRead marks the caller's received messages in a chat as read.
func (h *Handler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	chatID := c.Param("chat_id")

	n, err := h.chatService.MarkRead(ctx, chatID, middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err, true, "failed to mark messages read")
		return
	}

	response.Success(c, domain.MarkReadResponse{ChatID: chatID, Marked: n})
}

// GetChat retrieves a chat by ID.
func (h *Handler) GetChat(c *gin.Context) {
	chat, err := h.chatService.GetChat(c.Request.Context(), c.Param("chat_id"), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err, true, "failed to get chat")
		return
	}

	response.Success(c, chat)
}

// ListMyChats lists the caller's chats, most recent activity first.
func (h *Handler) ListMyChats(c *gin.Context) {
	chats, err := h.chatService.ListUserChats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err, true, "failed to list chats")
		return
	}

	response.Success(c, gin.H{"chats": chats})
}

// CreateChat is called by the match trigger once an offer is matched.
func (h *Handler) CreateChat(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create chat request")
		response.BadRequest(c, err.Error())
		return
	}

	chat, err := h.chatService.CreateChat(ctx, req.OfferID, req.User1ID, req.User2ID)
	if err != nil {
		h.fail(c, err, false, "failed to create chat")
		return
	}

	response.Created(c, chat)
}

// GetPresence reports whether a user currently has a live connection.
func (h *Handler) GetPresence(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("user_id")

	online, err := h.presence.IsOnline(ctx, userID)
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldUserID, userID).Msg("presence lookup failed")
	}

	response.Success(c, domain.PresenceResponse{UserID: userID, Online: online})
}
