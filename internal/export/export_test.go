package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/models"
)

func sampleQuote(primer bool) *models.Quote {
	req := calculator.QuoteRequest{
		Measurements: calculator.EstimateMeasurements(1000, calculator.ProjectInterior),
		Products: calculator.ProductSelections{
			PaintQuality:  calculator.QualityBetter,
			IncludePrimer: primer,
		},
		CompanyDefaults: calculator.CompanyDefaults{WallsRate: 3, CeilingsRate: 2, TrimRate: 5, MarkupPercentage: 20, TaxRate: 8},
	}
	return &models.Quote{
		ID:             "3f2b9c1e-7a4d-4e6f-9b1a-2c3d4e5f6a7b",
		Status:         models.StatusDraft,
		CreationMethod: models.MethodQuick,
		Customer: models.Customer{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Address: "42 Oak Street, Springfield",
		},
		ProjectType: calculator.ProjectInterior,
		Notes:       "Two coats on all walls.",
		Inputs:      req,
		Pricing:     calculator.New().CalculateQuote(req),
		CreatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{70.8, "$70.80"},
		{999.995, "$1,000.00"},
		{1234.56, "$1,234.56"},
		{16408.4, "$16,408.40"},
		{1234567.891, "$1,234,567.89"},
		{-12, "-$12.00"},
		{-0.001, "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(tt.in))
		})
	}
}

func TestFormatSqft(t *testing.T) {
	assert.Equal(t, "2,500 sq ft", FormatSqft(2500))
	assert.Equal(t, "834 sq ft", FormatSqft(833.5))
	assert.Equal(t, "0 sq ft", FormatSqft(0))
}

func TestReferenceAndFilename(t *testing.T) {
	q := sampleQuote(false)

	assert.Equal(t, "3F2B9C1E", Reference(q))
	assert.Equal(t, "quote-3f2b9c1e.pdf", Filename(q, "pdf"))
	assert.Equal(t, "quote-3f2b9c1e.xlsx", Filename(q, ".xlsx"))
}

func TestQuoteLines(t *testing.T) {
	lines := quoteLines(sampleQuote(false))
	require.Len(t, lines, 3)
	assert.Equal(t, "Walls", lines[0].Label)
	assert.Equal(t, 8, lines[0].Gallons)
	assert.Equal(t, 7500.0+360.0, lines[0].Total())

	withPrimer := quoteLines(sampleQuote(true))
	require.Len(t, withPrimer, 4)
	assert.Equal(t, "Primer", withPrimer[3].Label)
	assert.Equal(t, 3500.0, withPrimer[3].Sqft)
}

func TestGeneratePDF(t *testing.T) {
	data, err := GeneratePDF(sampleQuote(true))

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "output is a PDF document")
	assert.Greater(t, len(data), 1000)
}

func TestGenerateExcel(t *testing.T) {
	data, err := GenerateExcel(sampleQuote(false))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	title, _ := f.GetCellValue(sheetName, "A1")
	assert.Equal(t, "Painting Quote 3F2B9C1E", title)

	customer, _ := f.GetCellValue(sheetName, "B3")
	assert.Equal(t, "Jane Doe", customer)

	surface, _ := f.GetCellValue(sheetName, "A7")
	assert.Equal(t, "Walls", surface)

	gallons, _ := f.GetCellValue(sheetName, "C7")
	assert.Equal(t, "8", gallons)

	totalLabel, _ := f.GetCellValue(sheetName, "F15")
	assert.Equal(t, "Total:", totalLabel)
	total, _ := f.GetCellValue(sheetName, "G15")
	assert.Equal(t, "$16,408.40", total)
}

func TestGenerateExcel_SanitizesCustomerFields(t *testing.T) {
	q := sampleQuote(false)
	q.Customer.Name = "=HYPERLINK(\"http://evil\")"

	data, err := GenerateExcel(q)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name, _ := f.GetCellValue(sheetName, "B3")
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", name)
}
