// Package handler provides the HTTP handlers for quote and conversation operations.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/cache"
	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/conversation"
	"github.com/paintquote/backend/internal/database"
	"github.com/paintquote/backend/internal/models"
)

// Handler provides HTTP handlers for quote operations.
type Handler struct {
	repo          database.Repository
	cache         cache.Cache
	calc          *calculator.Calculator
	defaults      calculator.CompanyDefaults
	conversations *conversation.Manager
	logger        *zap.Logger
}

// NewHandler creates a new quote handler. defaults prices requests that
// do not carry their own company defaults.
func NewHandler(
	repo database.Repository,
	cache cache.Cache,
	calc *calculator.Calculator,
	defaults calculator.CompanyDefaults,
	conversations *conversation.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		repo:          repo,
		cache:         cache,
		calc:          calc,
		defaults:      defaults,
		conversations: conversations,
		logger:        logger,
	}
}

// RegisterRoutes registers the handler routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes/calculate", h.Calculate)
	rg.POST("/quotes/quick", h.QuickQuote)
	rg.POST("/quotes/estimate", h.Estimate)
	rg.POST("/quotes/validate", h.Validate)

	rg.POST("/quotes", h.Create)
	rg.GET("/quotes", h.GetAll)
	rg.GET("/quotes/:id", h.GetByID)
	rg.PUT("/quotes/:id", h.Update)
	rg.PATCH("/quotes/:id", h.Update)
	rg.POST("/quotes/:id/recalculate", h.Recalculate)
	rg.DELETE("/quotes/:id", h.Delete)
	rg.GET("/quotes/:id/export/pdf", h.ExportPDF)
	rg.GET("/quotes/:id/export/xlsx", h.ExportExcel)

	rg.POST("/conversations", h.StartConversation)
	rg.GET("/conversations/:id", h.GetConversation)
	rg.POST("/conversations/:id/messages", h.SendMessage)
	rg.POST("/conversations/:id/restart", h.RestartConversation)
	rg.POST("/conversations/:id/quote", h.SaveConversationQuote)
	rg.DELETE("/conversations/:id", h.DeleteConversation)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: message,
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

func internalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: message,
	})
}

// conversationError maps conversation errors onto API responses.
func (h *Handler) conversationError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, conversation.ErrSessionNotFound):
		notFound(c, "conversation not found")
	case errors.Is(err, conversation.ErrFlowComplete),
		errors.Is(err, conversation.ErrFieldNotWritable),
		errors.Is(err, conversation.ErrStageIncomplete):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "invalid_state",
			Message: err.Error(),
		})
	case errors.Is(err, conversation.ErrInvalidValue):
		badRequest(c, err.Error())
	default:
		h.logger.Error("Conversation operation failed", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to process conversation")
	}
}
