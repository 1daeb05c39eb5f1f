package export

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/models"
)

var (
	mutedColor  = &props.Color{Red: 100, Green: 100, Blue: 100}
	headerColor = &props.Color{Red: 51, Green: 51, Blue: 51}
	white       = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// GeneratePDF renders a quote as a letter-size PDF.
func GeneratePDF(q *models.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.Letter).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   mutedColor,
		}).
		Build()

	m := maroto.New(cfg)

	addHeader(m, q)
	addCustomer(m, q)
	addLines(m, q)
	addTotals(m, q)
	if q.Notes != "" {
		addNotes(m, q.Notes)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, q *models.Quote) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(text.New("PAINTING QUOTE", props.Text{
				Size:  14,
				Style: fontstyle.Bold,
				Align: align.Left,
			})),
			col.New(6).Add(text.New("Quote #: "+Reference(q), props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Right,
			})),
		),
		row.New(6).Add(
			col.New(6).Add(text.New(projectLabel(q), props.Text{
				Size:  8,
				Align: align.Left,
				Color: mutedColor,
			})),
			col.New(6).Add(text.New(quoteDate(q), props.Text{
				Size:  8,
				Align: align.Right,
				Color: mutedColor,
			})),
		),
	)
	m.AddRows(row.New(4))
}

func addCustomer(m core.Maroto, q *models.Quote) {
	m.AddRows(row.New(6).Add(
		col.New(12).Add(text.New("PREPARED FOR", props.Text{
			Size:  7,
			Style: fontstyle.Bold,
			Color: mutedColor,
		})),
	))
	for i, l := range customerLines(q.Customer) {
		style := props.Text{Size: 9}
		if i == 0 {
			style.Style = fontstyle.Bold
		}
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(l, style))))
	}
	m.AddRows(row.New(4))
}

func addLines(m core.Maroto, q *models.Quote) {
	headers := []string{"Surface", "Sq Ft", "Gallons", "Rate", "Labor", "Material", "Total"}
	sizes := []int{3, 2, 1, 1, 2, 1, 2}

	headerCell := props.Cell{BackgroundColor: headerColor}
	headerCols := make([]core.Col, len(headers))
	for i, h := range headers {
		headerCols[i] = col.New(sizes[i]).Add(text.New(h, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Align: align.Center,
			Color: white,
			Top:   1.5,
		})).WithStyle(&headerCell)
	}
	m.AddRows(row.New(7).Add(headerCols...))

	cell := props.Text{Size: 8, Align: align.Right, Top: 1}
	for _, l := range quoteLines(q) {
		rate := ""
		if l.Rate != 0 {
			rate = FormatUSD(l.Rate)
		}
		m.AddRows(row.New(6).Add(
			col.New(sizes[0]).Add(text.New(l.Label, props.Text{Size: 8, Align: align.Left, Top: 1})),
			col.New(sizes[1]).Add(text.New(FormatSqft(l.Sqft), cell)),
			col.New(sizes[2]).Add(text.New(strconv.Itoa(l.Gallons), cell)),
			col.New(sizes[3]).Add(text.New(rate, cell)),
			col.New(sizes[4]).Add(text.New(FormatUSD(l.Labor), cell)),
			col.New(sizes[5]).Add(text.New(FormatUSD(l.Material), cell)),
			col.New(sizes[6]).Add(text.New(FormatUSD(l.Total()), cell)),
		))
	}
	m.AddRows(row.New(4))
}

func addTotals(m core.Maroto, q *models.Quote) {
	for _, s := range quoteSummary(q) {
		style := props.Text{Size: 9, Align: align.Right}
		if s.Strong {
			style.Style = fontstyle.Bold
		}
		m.AddRows(row.New(6).Add(
			col.New(7),
			col.New(3).Add(text.New(s.Label+":", style)),
			col.New(2).Add(text.New(FormatUSD(s.Amount), style)),
		))
	}
}

func addNotes(m core.Maroto, notes string) {
	m.AddRows(
		row.New(6),
		row.New(6).Add(col.New(12).Add(text.New("NOTES", props.Text{
			Size:  7,
			Style: fontstyle.Bold,
			Color: mutedColor,
		}))),
		row.New(12).Add(col.New(12).Add(text.New(notes, props.Text{Size: 8}))),
	)
}

func projectLabel(q *models.Quote) string {
	switch q.ProjectType {
	case calculator.ProjectInterior:
		return "Interior painting"
	case calculator.ProjectExterior:
		return "Exterior painting"
	case calculator.ProjectBoth:
		return "Interior and exterior painting"
	default:
		return "Painting project"
	}
}
