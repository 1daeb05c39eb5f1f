package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/export"
	"github.com/paintquote/backend/internal/models"
)

const (
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportPDF streams a quote as a PDF download.
// @Summary Export quote as PDF
// @Tags quotes
// @Produce application/pdf
// @Param id path string true "Quote ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id}/export/pdf [get]
func (h *Handler) ExportPDF(c *gin.Context) {
	h.exportQuote(c, "pdf", pdfContentType, export.GeneratePDF)
}

// ExportExcel streams a quote as an .xlsx download.
// @Summary Export quote as Excel
// @Tags quotes
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Quote ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/v1/quotes/{id}/export/xlsx [get]
func (h *Handler) ExportExcel(c *gin.Context) {
	h.exportQuote(c, "xlsx", xlsxContentType, export.GenerateExcel)
}

func (h *Handler) exportQuote(c *gin.Context, ext, contentType string, render func(*models.Quote) ([]byte, error)) {
	quote, ok := h.loadQuote(c)
	if !ok {
		return
	}

	data, err := render(quote)
	if err != nil {
		h.logger.Error("Failed to export quote",
			zap.String("id", quote.ID),
			zap.String("format", ext),
			zap.Error(err),
		)
		internalError(c, "failed to export quote")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(quote, ext)))
	c.Data(http.StatusOK, contentType, data)
}
