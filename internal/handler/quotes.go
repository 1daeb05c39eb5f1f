package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/database"
	"github.com/paintquote/backend/internal/models"
)

// Create handles pricing and persisting a new quote.
// @Summary Create quote
// @Description Price measurements (or a total square footage) and store the quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param quote body models.CreateQuoteRequest true "Quote data"
// @Success 201 {object} models.QuoteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *Handler) Create(c *gin.Context) {
	var req models.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid create request", zap.Error(err))
		badRequest(c, err.Error())
		return
	}

	if req.Measurements == nil && req.TotalSqft == nil {
		badRequest(c, "either measurements or totalSqft is required")
		return
	}

	quote := h.newQuote(&req)

	if v := h.calc.ValidateMeasurements(quote.Inputs.Measurements); len(v.Warnings) > 0 || len(v.Errors) > 0 {
		h.logger.Info("Quote measurements flagged",
			zap.Strings("warnings", v.Warnings),
			zap.Strings("errors", v.Errors),
		)
	}

	ctx := c.Request.Context()
	created, err := h.repo.Create(ctx, quote)
	if err != nil {
		h.logger.Error("Failed to create quote", zap.Error(err))
		internalError(c, "failed to create quote")
		return
	}

	_ = h.cache.Set(ctx, created)

	c.JSON(http.StatusCreated, models.QuoteResponse{Data: *created})
}

// newQuote prices a create request. A total square footage is expanded into
// estimated measurements and marks the quote as a quick quote.
func (h *Handler) newQuote(req *models.CreateQuoteRequest) *models.Quote {
	projectType := req.ProjectType
	if projectType == "" {
		projectType = calculator.ProjectInterior
	}

	method := models.MethodForm
	var measurements calculator.ProjectMeasurements
	if req.Measurements != nil {
		measurements = roomTotals(*req.Measurements)
	} else {
		measurements = h.calc.EstimateMeasurements(*req.TotalSqft, projectType)
		method = models.MethodQuick
	}

	inputs := calculator.QuoteRequest{
		Measurements:    measurements,
		Products:        req.Products,
		CompanyDefaults: h.companyDefaults(req.CompanyDefaults),
		Overrides:       req.Overrides,
	}

	return &models.Quote{
		Status:         models.StatusDraft,
		CreationMethod: method,
		Customer:       req.Customer,
		ProjectType:    projectType,
		Notes:          req.Notes,
		Inputs:         inputs,
		Pricing:        h.calc.CalculateQuote(inputs),
	}
}

// GetAll handles listing quotes, optionally filtered by ?status=.
// @Summary Get all quotes
// @Tags quotes
// @Produce json
// @Param status query string false "Quote status"
// @Success 200 {object} models.QuotesResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *Handler) GetAll(c *gin.Context) {
	status := models.QuoteStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		badRequest(c, "unknown status: "+string(status))
		return
	}

	ctx := c.Request.Context()

	// Only the unfiltered list is cached
	if status == "" {
		quotes, found, err := h.cache.GetAll(ctx)
		if err == nil && found {
			h.logger.Debug("Returning cached quotes")
			c.JSON(http.StatusOK, models.QuotesResponse{Data: quotes})
			return
		}
	}

	quotes, err := h.repo.GetAll(ctx, status)
	if err != nil {
		h.logger.Error("Failed to get quotes", zap.Error(err))
		internalError(c, "failed to retrieve quotes")
		return
	}

	if status == "" {
		_ = h.cache.SetAll(ctx, quotes)
	}

	c.JSON(http.StatusOK, models.QuotesResponse{Data: quotes})
}

// GetByID handles retrieving a single quote by ID.
// @Summary Get quote by ID
// @Tags quotes
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} models.QuoteResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.QuoteResponse{Data: *quote})
}

// loadQuote fetches the quote named by the :id parameter, cache first. It
// writes the error response itself and reports whether a quote was found.
func (h *Handler) loadQuote(c *gin.Context) (*models.Quote, bool) {
	id := c.Param("id")
	ctx := c.Request.Context()

	quote, err := h.cache.Get(ctx, id)
	if err == nil && quote != nil {
		h.logger.Debug("Returning cached quote", zap.String("id", id))
		return quote, true
	}

	quote, err = h.repo.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("Failed to get quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to retrieve quote")
		return nil, false
	}
	if quote == nil {
		notFound(c, "quote not found")
		return nil, false
	}

	_ = h.cache.Set(ctx, quote)
	return quote, true
}

// Update handles changing quote metadata and status.
// @Summary Update quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param quote body models.UpdateQuoteRequest true "Updated quote metadata"
// @Success 200 {object} models.QuoteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")

	var req models.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid update request", zap.Error(err))
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	quote, err := h.repo.Update(ctx, id, &req)
	if err != nil {
		h.logger.Error("Failed to update quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to update quote")
		return
	}
	if quote == nil {
		notFound(c, "quote not found")
		return
	}

	_ = h.cache.Set(ctx, quote)

	c.JSON(http.StatusOK, models.QuoteResponse{Data: *quote})
}

// Recalculate applies changed inputs to a stored quote and persists the
// new pricing. An empty body reprices the existing inputs.
// @Summary Recalculate quote
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID"
// @Param changes body calculator.QuoteChanges false "Changed inputs"
// @Success 200 {object} models.QuoteResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id}/recalculate [post]
func (h *Handler) Recalculate(c *gin.Context) {
	id := c.Param("id")

	var changes calculator.QuoteChanges
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&changes); err != nil {
			h.logger.Warn("Invalid recalculate request", zap.Error(err))
			badRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	existing, err := h.repo.GetByID(ctx, id)
	if err != nil {
		h.logger.Error("Failed to get quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to retrieve quote")
		return
	}
	if existing == nil {
		notFound(c, "quote not found")
		return
	}

	inputs := calculator.ApplyChanges(existing.Inputs, changes)
	inputs.Measurements = roomTotals(inputs.Measurements)
	pricing := h.calc.CalculateQuote(inputs)

	quote, err := h.repo.UpdatePricing(ctx, id, inputs, pricing)
	if err != nil {
		h.logger.Error("Failed to save recalculated quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to recalculate quote")
		return
	}
	if quote == nil {
		notFound(c, "quote not found")
		return
	}

	h.logger.Info("Recalculated quote",
		zap.String("id", id),
		zap.Float64("previous_price", existing.Pricing.FinalPrice),
		zap.Float64("final_price", quote.Pricing.FinalPrice),
	)

	_ = h.cache.Set(ctx, quote)

	c.JSON(http.StatusOK, models.QuoteResponse{Data: *quote})
}

// Delete handles deleting a quote.
// @Summary Delete quote
// @Tags quotes
// @Param id path string true "Quote ID"
// @Success 204 "No Content"
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			notFound(c, "quote not found")
			return
		}

		h.logger.Error("Failed to delete quote", zap.String("id", id), zap.Error(err))
		internalError(c, "failed to delete quote")
		return
	}

	_ = h.cache.Delete(ctx, id)

	c.Status(http.StatusNoContent)
}

func (h *Handler) companyDefaults(given *calculator.CompanyDefaults) calculator.CompanyDefaults {
	if given != nil {
		return *given
	}
	return h.defaults
}
