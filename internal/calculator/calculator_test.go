package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func standardDefaults() CompanyDefaults {
	return CompanyDefaults{
		WallsRate:        3,
		CeilingsRate:     2,
		TrimRate:         5,
		MarkupPercentage: 20,
		TaxRate:          8,
	}
}

func TestCalculateQuickQuote_InteriorExample(t *testing.T) {
	c := New()

	got := c.CalculateQuickQuote(1000, QualityBetter, standardDefaults(), ProjectInterior)

	assert.Equal(t, Gallons{Walls: 8, Ceilings: 3, Trim: 2}, got.Gallons)
	assert.InDelta(t, 7500, got.WallsLabor, 0.001)
	assert.InDelta(t, 2000, got.CeilingsLabor, 0.001)
	assert.InDelta(t, 2500, got.TrimLabor, 0.001)
	assert.InDelta(t, 12000, got.TotalLabor, 0.001)

	assert.InDelta(t, 360, got.WallsMaterial, 0.001)
	assert.InDelta(t, 120, got.CeilingsMaterial, 0.001)
	assert.InDelta(t, 110, got.TrimMaterial, 0.001)
	assert.InDelta(t, 0, got.PrimerMaterial, 0.001)
	assert.InDelta(t, 590, got.PaintCost, 0.001)
	assert.InDelta(t, 70.8, got.Sundries, 0.001)
	assert.InDelta(t, 660.8, got.TotalMaterial, 0.001)

	assert.InDelta(t, 12660.8, got.Subtotal, 0.001)
	assert.InDelta(t, 2532.16, got.MarkupAmount, 0.001)
	assert.InDelta(t, 1215.44, got.TaxAmount, 0.001)
	assert.InDelta(t, 16408.4, got.FinalPrice, 0.001)

	assert.Equal(t, 3.0, got.WallsRate)
	assert.Equal(t, 20.0, got.MarkupPercentage)
	assert.Equal(t, 8.0, got.TaxRate)
}

func TestCalculateQuote_FinalPriceIdentity(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		req  QuoteRequest
	}{
		{
			name: "estimated interior",
			req: QuoteRequest{
				Measurements:    EstimateMeasurements(1234, ProjectInterior),
				Products:        ProductSelections{PaintQuality: QualityBest},
				CompanyDefaults: standardDefaults(),
			},
		},
		{
			name: "exterior with primer and odd rates",
			req: QuoteRequest{
				Measurements:    EstimateMeasurements(777, ProjectExterior),
				Products:        ProductSelections{PaintQuality: QualityGood, IncludePrimer: true},
				CompanyDefaults: CompanyDefaults{WallsRate: 1.37, TrimRate: 2.11, MarkupPercentage: 17.5, TaxRate: 6.625},
			},
		},
		{
			name: "zero markup and tax",
			req: QuoteRequest{
				Measurements:    ProjectMeasurements{TotalWallsSqft: 400},
				CompanyDefaults: CompanyDefaults{WallsRate: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.CalculateQuote(tt.req)
			assert.InDelta(t, got.Subtotal+got.MarkupAmount+got.TaxAmount, got.FinalPrice, 1e-6)
			assert.InDelta(t, got.TotalLabor+got.TotalMaterial, got.Subtotal, 0.011)
		})
	}
}

func TestCalculateQuote_Idempotent(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements: EstimateMeasurements(2150, ProjectBoth),
		Products: ProductSelections{
			PaintQuality: QualityPremium,
			Walls:        &PaintProduct{Supplier: "Sherwin-Williams", ProductName: "Duration", CostPerGallon: 68.99},
			Primer:       &PaintProduct{Supplier: "Zinsser", ProductName: "Bulls Eye 1-2-3", CostPerGallon: 27.49},
		},
		CompanyDefaults: standardDefaults(),
		Overrides:       &RateOverrides{TaxRate: ptr(7.25)},
	}

	first := c.CalculateQuote(req)
	second := c.CalculateQuote(req)

	assert.Equal(t, first, second)
}

func TestCalculateQuote_MarkupIsMonotonic(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements:    EstimateMeasurements(900, ProjectInterior),
		Products:        ProductSelections{PaintQuality: QualityBetter},
		CompanyDefaults: standardDefaults(),
	}

	previous := -1.0
	for _, markup := range []float64{0, 5, 10, 20, 35, 50, 100} {
		req.Overrides = &RateOverrides{MarkupPercentage: ptr(markup)}
		got := c.CalculateQuote(req)
		assert.Greater(t, got.FinalPrice, previous, "markup %v", markup)
		previous = got.FinalPrice
	}
}

func TestCalculateQuote_MarkupMonotonicAtFinePrecision(t *testing.T) {
	req := QuoteRequest{
		Measurements:    EstimateMeasurements(900, ProjectInterior),
		Products:        ProductSelections{PaintQuality: QualityBetter},
		CompanyDefaults: standardDefaults(),
	}
	steps := []float64{0, 0.00001, 0.0001, 0.001, 0.01, 5}

	// Unrounded prices are strictly increasing; cent rounding can only tie.
	exact := New(WithRoundingPlaces(-1))
	rounded := New()
	previousExact, previousRounded := -1.0, -1.0
	for _, markup := range steps {
		req.Overrides = &RateOverrides{MarkupPercentage: ptr(markup)}

		got := exact.CalculateQuote(req)
		assert.Greater(t, got.FinalPrice, previousExact, "markup %v", markup)
		previousExact = got.FinalPrice

		got = rounded.CalculateQuote(req)
		assert.GreaterOrEqual(t, got.FinalPrice, previousRounded, "markup %v", markup)
		previousRounded = got.FinalPrice
	}
}

func TestCalculateQuote_TierProductsPricedPerCategory(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements: ProjectMeasurements{TotalWallsSqft: 2500, TotalTrimSqft: 500},
		Products: ProductSelections{
			PaintQuality: QualityPremium,
			Walls:        &PaintProduct{ProductName: "premium grade", Quality: QualityPremium},
			Trim:         &PaintProduct{ProductName: "good grade", Quality: QualityGood},
		},
		CompanyDefaults: standardDefaults(),
	}

	got := c.CalculateQuote(req)

	// 8 gallons at the premium wall price, 2 at the good trim price
	assert.InDelta(t, 600, got.WallsMaterial, 0.001)
	assert.InDelta(t, 80, got.TrimMaterial, 0.001)
}

func TestCalculateQuote_SelectedProductsOverrideDefaults(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements: ProjectMeasurements{TotalWallsSqft: 700, TotalCeilingsSqft: 350, TotalTrimSqft: 100},
		Products: ProductSelections{
			PaintQuality: QualityGood,
			Walls:        &PaintProduct{ProductName: "Custom Wall", CostPerGallon: 50},
			Primer:       &PaintProduct{ProductName: "Custom Primer", CostPerGallon: 20},
		},
	}

	got := c.CalculateQuote(req)

	// 700/350 = 2 gallons at the selected price
	assert.InDelta(t, 100, got.WallsMaterial, 0.001)
	// ceilings fall back to the good tier (30)
	assert.InDelta(t, 30, got.CeilingsMaterial, 0.001)
	// trim falls back to the good tier (40)
	assert.InDelta(t, 40, got.TrimMaterial, 0.001)
	// primer covers walls + ceilings: ceil(1050/350) = 3 gallons
	assert.Equal(t, 3, got.Gallons.Primer)
	assert.InDelta(t, 60, got.PrimerMaterial, 0.001)
	assert.InDelta(t, 230, got.PaintCost, 0.001)
	assert.InDelta(t, 27.6, got.Sundries, 0.001)
}

func TestCalculateQuote_IncludePrimerUsesDefaultTier(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements: ProjectMeasurements{TotalWallsSqft: 350},
		Products:     ProductSelections{PaintQuality: QualityPremium, IncludePrimer: true},
	}

	got := c.CalculateQuote(req)

	assert.Equal(t, 1, got.Gallons.Primer)
	assert.InDelta(t, 40, got.PrimerMaterial, 0.001)
}

func TestCalculateQuote_UnknownQualityFallsBackToBetter(t *testing.T) {
	c := New()
	m := ProjectMeasurements{TotalWallsSqft: 350}

	unknown := c.CalculateQuote(QuoteRequest{Measurements: m, Products: ProductSelections{PaintQuality: "platinum"}})
	better := c.CalculateQuote(QuoteRequest{Measurements: m, Products: ProductSelections{PaintQuality: QualityBetter}})

	assert.Equal(t, better, unknown)
	assert.InDelta(t, 45, unknown.WallsMaterial, 0.001)
}

func TestCalculateQuote_OverridesWinOverDefaults(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements:    ProjectMeasurements{TotalWallsSqft: 100, TotalCeilingsSqft: 100, TotalTrimSqft: 100},
		CompanyDefaults: standardDefaults(),
		Overrides: &RateOverrides{
			WallsRate:        ptr(4),
			TrimRate:         ptr(1),
			MarkupPercentage: ptr(0),
		},
	}

	got := c.CalculateQuote(req)

	assert.Equal(t, 4.0, got.WallsRate)
	assert.Equal(t, 2.0, got.CeilingsRate)
	assert.Equal(t, 1.0, got.TrimRate)
	assert.InDelta(t, 700, got.TotalLabor, 0.001)
	assert.Equal(t, 0.0, got.MarkupAmount)
	assert.Equal(t, 8.0, got.TaxRate)
}

func TestCalculateQuote_NegativeInputsAreNotRejected(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements:    ProjectMeasurements{TotalWallsSqft: -500},
		CompanyDefaults: CompanyDefaults{WallsRate: 2},
	}

	got := c.CalculateQuote(req)

	assert.Equal(t, 0, got.Gallons.Walls)
	assert.InDelta(t, -1000, got.FinalPrice, 0.001)
}

func TestCalculateQuote_BreakdownSumsToPreTaxPrice(t *testing.T) {
	c := New()
	req := QuoteRequest{
		Measurements:    EstimateMeasurements(1800, ProjectInterior),
		Products:        ProductSelections{PaintQuality: QualityBest, IncludePrimer: true},
		CompanyDefaults: standardDefaults(),
	}

	got := c.CalculateQuote(req)
	b := got.Breakdown
	sum := b.Walls + b.Ceilings + b.Trim + b.Sundries + b.Profit

	assert.InDelta(t, got.Subtotal+got.MarkupAmount, sum, 0.05)
	assert.Equal(t, got.MarkupAmount, b.Profit)
	assert.Equal(t, got.Sundries, b.Sundries)
}

func TestCalculateQuote_CustomSettings(t *testing.T) {
	c := New(
		WithCoverage(400),
		WithSundriesPercentage(0),
		WithDefaultCosts(CostTable{CategoryWall: {QualityBetter: 10}}),
		WithRoundingPlaces(-1),
	)
	req := QuoteRequest{Measurements: ProjectMeasurements{TotalWallsSqft: 800}}

	got := c.CalculateQuote(req)

	assert.Equal(t, 2, got.Gallons.Walls)
	assert.Equal(t, 20.0, got.WallsMaterial)
	assert.Equal(t, 0.0, got.Sundries)

	// untouched entries keep their built-in price
	cost, ok := c.Settings().DefaultCosts.Cost(CategoryTrim, QualityBetter)
	require.True(t, ok)
	assert.Equal(t, 55.0, cost)
}

func TestNew_IgnoresInvalidCoverage(t *testing.T) {
	c := New(WithCoverage(0), WithCoverage(-10))
	assert.Equal(t, DefaultCoverageSqftPerGallon, c.Settings().CoverageSqftPerGallon)
}

func TestRecalculateQuote_EmptyChangesRoundTrip(t *testing.T) {
	c := New()
	existing := QuoteRequest{
		Measurements:    EstimateMeasurements(1500, ProjectInterior),
		Products:        ProductSelections{PaintQuality: QualityBest},
		CompanyDefaults: standardDefaults(),
		Overrides:       &RateOverrides{MarkupPercentage: ptr(25)},
	}

	assert.Equal(t, c.CalculateQuote(existing), c.RecalculateQuote(existing, QuoteChanges{}))
}

func TestRecalculateQuote_MergesOverrides(t *testing.T) {
	c := New()
	existing := QuoteRequest{
		Measurements:    ProjectMeasurements{TotalWallsSqft: 1000},
		CompanyDefaults: standardDefaults(),
		Overrides:       &RateOverrides{WallsRate: ptr(4)},
	}

	got := c.RecalculateQuote(existing, QuoteChanges{Overrides: &RateOverrides{TaxRate: ptr(0)}})

	assert.Equal(t, 4.0, got.WallsRate)
	assert.Equal(t, 0.0, got.TaxRate)
	assert.Equal(t, 0.0, got.TaxAmount)
	// the existing request is left untouched
	assert.Nil(t, existing.Overrides.TaxRate)
}

func TestRecalculateQuote_ReplacesMeasurementsAndProducts(t *testing.T) {
	c := New()
	existing := QuoteRequest{
		Measurements:    ProjectMeasurements{TotalWallsSqft: 1000},
		Products:        ProductSelections{PaintQuality: QualityGood},
		CompanyDefaults: standardDefaults(),
	}
	newMeasurements := ProjectMeasurements{TotalWallsSqft: 2000}
	newProducts := ProductSelections{PaintQuality: QualityPremium}

	got := c.RecalculateQuote(existing, QuoteChanges{Measurements: &newMeasurements, Products: &newProducts})
	want := c.CalculateQuote(QuoteRequest{
		Measurements:    newMeasurements,
		Products:        newProducts,
		CompanyDefaults: standardDefaults(),
	})

	assert.Equal(t, want, got)
}
