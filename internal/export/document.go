package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/paintquote/backend/internal/models"
)

// line is one surface row of an exported quote.
type line struct {
	Label    string
	Sqft     float64
	Gallons  int
	Rate     float64
	Labor    float64
	Material float64
}

func (l line) Total() float64 {
	return l.Labor + l.Material
}

// summary is one labelled amount below the surface rows.
type summary struct {
	Label  string
	Amount float64
	Strong bool
}

func quoteLines(q *models.Quote) []line {
	m := q.Inputs.Measurements
	p := q.Pricing
	lines := []line{
		{"Walls", m.TotalWallsSqft, p.Gallons.Walls, p.WallsRate, p.WallsLabor, p.WallsMaterial},
		{"Ceilings", m.TotalCeilingsSqft, p.Gallons.Ceilings, p.CeilingsRate, p.CeilingsLabor, p.CeilingsMaterial},
		{"Trim", m.TotalTrimSqft, p.Gallons.Trim, p.TrimRate, p.TrimLabor, p.TrimMaterial},
	}
	if p.Gallons.Primer > 0 {
		lines = append(lines, line{Label: "Primer", Sqft: m.TotalWallsSqft + m.TotalCeilingsSqft, Gallons: p.Gallons.Primer, Material: p.PrimerMaterial})
	}
	return lines
}

func quoteSummary(q *models.Quote) []summary {
	p := q.Pricing
	return []summary{
		{Label: "Sundries", Amount: p.Sundries},
		{Label: "Subtotal", Amount: p.Subtotal, Strong: true},
		{Label: fmt.Sprintf("Markup (%s%%)", percent(p.MarkupPercentage)), Amount: p.MarkupAmount},
		{Label: fmt.Sprintf("Tax (%s%%)", percent(p.TaxRate)), Amount: p.TaxAmount},
		{Label: "Total", Amount: p.FinalPrice, Strong: true},
	}
}

func percent(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// Reference is the short quote number shown on documents.
func Reference(q *models.Quote) string {
	id := strings.ReplaceAll(q.ID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Filename returns the download name for a quote document with the given extension.
func Filename(q *models.Quote, ext string) string {
	return fmt.Sprintf("quote-%s.%s", strings.ToLower(Reference(q)), strings.TrimPrefix(ext, "."))
}

func quoteDate(q *models.Quote) string {
	if q.CreatedAt.IsZero() {
		return time.Now().Format("January 2, 2006")
	}
	return q.CreatedAt.Format("January 2, 2006")
}

func customerLines(c models.Customer) []string {
	var out []string
	for _, s := range []string{c.Name, c.Address, c.Email, c.Phone} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
