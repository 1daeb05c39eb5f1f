package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/conversation"
	"github.com/paintquote/backend/internal/models"
)

// MessageRequest is one customer message in a conversation.
type MessageRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// ReplyResponse wraps a conversation turn in the API response.
type ReplyResponse struct {
	Data conversation.Reply `json:"data"`
}

// ConversationResponse wraps a conversation in the API response.
type ConversationResponse struct {
	Data conversation.Session `json:"data"`
}

// StartConversation opens a new quote conversation.
// @Summary Start conversation
// @Tags conversations
// @Produce json
// @Success 201 {object} ReplyResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	reply, err := h.conversations.Start(c.Request.Context())
	if err != nil {
		h.conversationError(c, "", err)
		return
	}
	c.JSON(http.StatusCreated, ReplyResponse{Data: *reply})
}

// GetConversation returns a conversation with its transcript.
func (h *Handler) GetConversation(c *gin.Context) {
	id := c.Param("id")
	session, err := h.conversations.Get(c.Request.Context(), id)
	if err != nil {
		h.conversationError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, ConversationResponse{Data: *session})
}

// SendMessage handles one customer message. The turn that completes the
// conversation stores the collected draft as a chat quote.
// @Summary Send message
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param message body MessageRequest true "Customer message"
// @Success 200 {object} ReplyResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/conversations/{id}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	id := c.Param("id")

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid message request", zap.Error(err))
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	reply, err := h.conversations.HandleMessage(ctx, id, req.Message)
	if err != nil {
		h.conversationError(c, id, err)
		return
	}

	if reply.Completed && reply.Session.QuoteID == "" {
		session, err := h.persistConversation(ctx, reply.Session)
		if err != nil {
			h.logger.Error("Failed to save conversation quote", zap.String("id", id), zap.Error(err))
			internalError(c, "failed to save quote")
			return
		}
		reply.Session = session
	}

	c.JSON(http.StatusOK, ReplyResponse{Data: *reply})
}

// SaveConversationQuote stores the quote of a completed conversation. It
// retries a save that failed on the completing turn and returns the linked
// conversation unchanged when a quote already exists.
// @Summary Save conversation quote
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} ConversationResponse
// @Success 201 {object} ConversationResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/conversations/{id}/quote [post]
func (h *Handler) SaveConversationQuote(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	session, err := h.conversations.Get(ctx, id)
	if err != nil {
		h.conversationError(c, id, err)
		return
	}
	if session.Stage != conversation.StageComplete {
		h.conversationError(c, id, fmt.Errorf("%w: conversation is at %s", conversation.ErrStageIncomplete, session.Stage))
		return
	}
	if session.QuoteID != "" {
		c.JSON(http.StatusOK, ConversationResponse{Data: *session})
		return
	}

	session, err = h.persistConversation(ctx, session)
	if err != nil {
		h.logger.Error("Failed to save conversation quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to save quote")
		return
	}
	c.JSON(http.StatusCreated, ConversationResponse{Data: *session})
}

// persistConversation stores a completed conversation as a quote and links
// the two.
func (h *Handler) persistConversation(ctx context.Context, session *conversation.Session) (*conversation.Session, error) {
	inputs := session.QuoteRequest(h.conversations.Defaults())
	pricing := h.calc.CalculateQuote(inputs)

	quote, err := h.repo.Create(ctx, &models.Quote{
		Status:         models.StatusDraft,
		CreationMethod: models.MethodChat,
		Customer:       session.Draft.Customer,
		ProjectType:    session.Draft.ProjectType,
		Inputs:         inputs,
		Pricing:        pricing,
	})
	if err != nil {
		return nil, err
	}

	_ = h.cache.Set(ctx, quote)

	h.logger.Info("Created quote from conversation",
		zap.String("conversation_id", session.ID),
		zap.String("quote_id", quote.ID),
	)
	return h.conversations.AttachQuote(ctx, session.ID, quote.ID)
}

// RestartConversation discards collected answers and starts over.
func (h *Handler) RestartConversation(c *gin.Context) {
	id := c.Param("id")
	reply, err := h.conversations.Restart(c.Request.Context(), id)
	if err != nil {
		h.conversationError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, ReplyResponse{Data: *reply})
}

// DeleteConversation removes a conversation.
func (h *Handler) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if err := h.conversations.Delete(c.Request.Context(), id); err != nil {
		h.conversationError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}
