package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/domain"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/repository"
	"github.com/Kurdishgpt/GameShopConnect-sub000/internal/service"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/log"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/middleware"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/pubsub"
	"github.com/Kurdishgpt/GameShopConnect-sub000/pkg/response"
)

// Handler handles HTTP requests for the messaging service.
type Handler struct {
	messageService service.MessageService
	authMiddleware *middleware.AuthMiddleware
	bus            pubsub.Subscriber
}

// NewHandler creates a new HTTP handler.
func NewHandler(messageService service.MessageService, authMiddleware *middleware.AuthMiddleware, bus pubsub.Subscriber) *Handler {
	return &Handler{
		messageService: messageService,
		authMiddleware: authMiddleware,
		bus:            bus,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.Use(h.authMiddleware.RequireAuth())
	{
		messages := api.Group("/messages")
		{
			messages.POST("", h.SendMessage)
			messages.DELETE("/:id", h.DeleteMessage)
		}

		api.GET("/conversations", h.ListConversations)

		threads := api.Group("/threads")
		{
			threads.GET("/:peer_id", h.GetThread)
			threads.POST("/:peer_id/read", h.MarkThreadRead)
		}

		requests := api.Group("/requests")
		{
			requests.POST("/play", h.SendPlayRequest)
			requests.POST("/shop", h.SendShopRequest)
		}

		api.GET("/notifications/stream", h.StreamNotifications)
	}
}

// SendMessage handles POST /api/v1/messages.
func (h *Handler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid send message request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.SendMessage(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "failed to send message")
		return
	}

	response.Created(c, result)
}

// ListConversations handles GET /api/v1/conversations.
func (h *Handler) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.messageService.ListConversations(ctx, middleware.GetUserID(c))
	if err != nil {
		h.writeError(c, err, "failed to list conversations")
		return
	}

	response.Success(c, result)
}

// GetThread handles GET /api/v1/threads/:peer_id.
func (h *Handler) GetThread(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.messageService.GetThread(ctx, middleware.GetUserID(c), c.Param("peer_id"))
	if err != nil {
		h.writeError(c, err, "failed to load thread")
		return
	}

	response.Success(c, result)
}

// MarkThreadRead handles POST /api/v1/threads/:peer_id/read.
func (h *Handler) MarkThreadRead(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.messageService.MarkThreadRead(ctx, middleware.GetUserID(c), c.Param("peer_id"))
	if err != nil {
		h.writeError(c, err, "failed to mark thread read")
		return
	}

	response.Success(c, result)
}

// DeleteMessage handles DELETE /api/v1/messages/:id.
func (h *Handler) DeleteMessage(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.messageService.DeleteMessage(ctx, middleware.GetUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err, "failed to delete message")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// SendPlayRequest handles POST /api/v1/requests/play.
func (h *Handler) SendPlayRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.PlayRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid play request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.SendPlayRequest(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "failed to send play request")
		return
	}

	response.Created(c, result)
}

// SendShopRequest handles POST /api/v1/requests/shop.
func (h *Handler) SendShopRequest(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.ShopRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid shop request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.messageService.SendShopRequest(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		h.writeError(c, err, "failed to send shop request")
		return
	}

	response.Created(c, result)
}

// StreamNotifications handles GET /api/v1/notifications/stream. It
// holds the connection open and relays the caller's notification events
// from the bus as server-sent events until the client disconnects.
func (h *Handler) StreamNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	channel := pubsub.UserEventsChannel(userID)

	events, err := h.bus.Subscribe(ctx, channel)
	if err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to subscribe to notification channel")
		response.InternalError(c, "failed to open notification stream")
		return
	}
	defer func() {
		if err := h.bus.Unsubscribe(context.Background(), channel); err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("failed to close notification stream")
		}
	}()

	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldUsername, middleware.GetUsername(c)).
		Msg("notification stream opened")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// writeError maps service errors onto the response envelope.
func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrEmptyUserID),
		errors.Is(err, service.ErrEmptyMessageID),
		errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrEmptyContent):
		response.BadRequest(c, err.Error())
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrMessageNotFound):
		response.NotFound(c, err.Error())
	default:
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Msg(fallback)
		response.InternalError(c, fallback)
	}
}
