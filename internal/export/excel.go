package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/paintquote/backend/internal/models"
)

const sheetName = "Quote"

// GenerateExcel renders a quote as an .xlsx workbook.
func GenerateExcel(q *models.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]
	widths := []float64{18, 14, 10, 12, 16, 16, 16}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	rowStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create row style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create label style: %w", err)
	}
	strongStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create value style: %w", err)
	}

	// Header block
	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", "Painting Quote "+Reference(q))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(sheetName, "A2", "Date: "+quoteDate(q))
	f.SetCellValue(sheetName, "A3", "Customer:")
	f.SetCellValue(sheetName, "B3", sanitizeExcelCell(q.Customer.Name))
	if q.Customer.Address != "" {
		f.SetCellValue(sheetName, "A4", "Address:")
		f.SetCellValue(sheetName, "B4", sanitizeExcelCell(q.Customer.Address))
	}

	headers := []string{"Surface", "Sq Ft", "Gallons", "Rate", "Labor", "Material", "Total"}
	for i, h := range headers {
		f.SetCellValue(sheetName, fmt.Sprintf("%s6", columns[i]), h)
	}
	f.SetCellStyle(sheetName, "A6", lastCol+"6", headerStyle)

	row := 7
	for _, l := range quoteLines(q) {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+r, l.Label)
		f.SetCellValue(sheetName, "B"+r, l.Sqft)
		f.SetCellValue(sheetName, "C"+r, l.Gallons)
		f.SetCellValue(sheetName, "D"+r, FormatUSD(l.Rate))
		f.SetCellValue(sheetName, "E"+r, FormatUSD(l.Labor))
		f.SetCellValue(sheetName, "F"+r, FormatUSD(l.Material))
		f.SetCellValue(sheetName, "G"+r, FormatUSD(l.Total()))
		f.SetCellStyle(sheetName, "A"+r, lastCol+r, rowStyle)
		row++
	}

	row++
	for _, s := range quoteSummary(q) {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "F"+r, s.Label+":")
		f.SetCellStyle(sheetName, "F"+r, "F"+r, labelStyle)
		f.SetCellValue(sheetName, "G"+r, FormatUSD(s.Amount))
		if s.Strong {
			f.SetCellStyle(sheetName, "G"+r, "G"+r, strongStyle)
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes values that Excel would evaluate as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
