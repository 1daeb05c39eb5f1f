package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/models"
)

// Calculate prices measurements without storing a quote. Validation
// findings are returned alongside the pricing and never block it.
// @Summary Calculate quote
// @Tags pricing
// @Accept json
// @Produce json
// @Param request body models.CalculateRequest true "Calculation inputs"
// @Success 200 {object} models.CalculationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quotes/calculate [post]
func (h *Handler) Calculate(c *gin.Context) {
	var req models.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid calculate request", zap.Error(err))
		badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.CalculationResponse{Data: h.result(calculator.QuoteRequest{
		Measurements:    roomTotals(req.Measurements),
		Products:        req.Products,
		CompanyDefaults: h.companyDefaults(req.CompanyDefaults),
		Overrides:       req.Overrides,
	})})
}

// QuickQuote prices a job from its total square footage.
// @Summary Quick quote
// @Tags pricing
// @Accept json
// @Produce json
// @Param request body models.QuickQuoteRequest true "Total square footage and quality"
// @Success 200 {object} models.CalculationResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quotes/quick [post]
func (h *Handler) QuickQuote(c *gin.Context) {
	var req models.QuickQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid quick quote request", zap.Error(err))
		badRequest(c, err.Error())
		return
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = calculator.ProjectInterior
	}

	measurements := h.calc.EstimateMeasurements(req.TotalSqft, projectType)
	c.JSON(http.StatusOK, models.CalculationResponse{Data: models.CalculationResult{
		Measurements: measurements,
		Pricing:      h.calc.CalculateQuickQuote(req.TotalSqft, req.PaintQuality, h.companyDefaults(req.CompanyDefaults), projectType),
		Validation:   h.calc.ValidateMeasurements(measurements),
		CrewDays:     calculator.EstimateCrewDays(measurements, 0),
	}})
}

// Estimate derives surface areas from a total square footage.
func (h *Handler) Estimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	projectType := req.ProjectType
	if projectType == "" {
		projectType = calculator.ProjectInterior
	}

	c.JSON(http.StatusOK, models.MeasurementsResponse{
		Data: h.calc.EstimateMeasurements(req.TotalSqft, projectType),
	})
}

// Validate checks measurements for sanity.
func (h *Handler) Validate(c *gin.Context) {
	var m calculator.ProjectMeasurements
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, models.ValidationResponse{Data: h.calc.ValidateMeasurements(m)})
}

func (h *Handler) result(req calculator.QuoteRequest) models.CalculationResult {
	return models.CalculationResult{
		Measurements: req.Measurements,
		Pricing:      h.calc.CalculateQuote(req),
		Validation:   h.calc.ValidateMeasurements(req.Measurements),
		CrewDays:     calculator.EstimateCrewDays(req.Measurements, 0),
	}
}

// roomTotals fills in project totals from a room-by-room breakdown when
// only rooms were given.
func roomTotals(m calculator.ProjectMeasurements) calculator.ProjectMeasurements {
	if len(m.Rooms) == 0 || m.TotalWallsSqft != 0 || m.TotalCeilingsSqft != 0 || m.TotalTrimSqft != 0 {
		return m
	}
	return calculator.MeasurementsFromRooms(m.Rooms)
}
