package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Calculator prices quotes using a fixed set of Settings.
type Calculator struct {
	settings Settings
}

// New creates a Calculator from the default settings with opts applied.
func New(opts ...Option) *Calculator {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Calculator{settings: s}
}

// Settings returns a copy of the calculator's settings.
func (c *Calculator) Settings() Settings {
	s := c.settings
	s.DefaultCosts = make(CostTable, len(c.settings.DefaultCosts))
	for category, byQuality := range c.settings.DefaultCosts {
		s.DefaultCosts[category] = make(map[PaintQuality]float64, len(byQuality))
		for quality, cost := range byQuality {
			s.DefaultCosts[category][quality] = cost
		}
	}
	return s
}

// EstimateMeasurements derives areas from a total square footage.
func (c *Calculator) EstimateMeasurements(totalSqft float64, projectType ProjectType) ProjectMeasurements {
	return EstimateMeasurements(totalSqft, projectType)
}

// ValidateMeasurements checks measurements against the configured thresholds.
func (c *Calculator) ValidateMeasurements(m ProjectMeasurements) ValidationResult {
	return ValidateMeasurements(m, c.settings.Thresholds)
}

// materialCosts is the unrounded output of the material step.
type materialCosts struct {
	gallons  Gallons
	walls    float64
	ceilings float64
	trim     float64
	primer   float64
	paint    float64
	sundries float64
	total    float64
}

// laborCosts is the unrounded output of the labor step.
type laborCosts struct {
	wallsRate, ceilingsRate, trimRate float64
	walls, ceilings, trim             float64
	total                             float64
}

// CalculateQuote prices a quote. It trusts its inputs: negative areas or
// rates produce negative totals rather than an error.
func (c *Calculator) CalculateQuote(req QuoteRequest) PricingDetails {
	materials := c.materialCosts(req.Measurements, req.Products)
	labor := laborCost(req.Measurements, req.CompanyDefaults, req.Overrides)

	markupPct := resolve(req.Overrides, func(o *RateOverrides) *float64 { return o.MarkupPercentage }, req.CompanyDefaults.MarkupPercentage)
	taxPct := resolve(req.Overrides, func(o *RateOverrides) *float64 { return o.TaxRate }, req.CompanyDefaults.TaxRate)

	subtotal := labor.total + materials.total
	markupAmount := subtotal * markupPct / 100
	afterMarkup := subtotal + markupAmount
	taxAmount := afterMarkup * taxPct / 100

	breakdown := c.breakdown(req.Measurements, labor, materials, markupAmount)

	roundedSubtotal := c.money(subtotal)
	roundedMarkup := c.money(markupAmount)
	roundedTax := c.money(taxAmount)

	return PricingDetails{
		WallsRate:    labor.wallsRate,
		CeilingsRate: labor.ceilingsRate,
		TrimRate:     labor.trimRate,

		WallsLabor:    c.money(labor.walls),
		CeilingsLabor: c.money(labor.ceilings),
		TrimLabor:     c.money(labor.trim),
		TotalLabor:    c.money(labor.total),

		WallsMaterial:    c.money(materials.walls),
		CeilingsMaterial: c.money(materials.ceilings),
		TrimMaterial:     c.money(materials.trim),
		PrimerMaterial:   c.money(materials.primer),
		PaintCost:        c.money(materials.paint),
		Sundries:         c.money(materials.sundries),
		TotalMaterial:    c.money(materials.total),
		Gallons:          materials.gallons,

		Subtotal:         roundedSubtotal,
		MarkupPercentage: markupPct,
		MarkupAmount:     roundedMarkup,
		TaxRate:          taxPct,
		TaxAmount:        roundedTax,
		FinalPrice:       c.sum(roundedSubtotal, roundedMarkup, roundedTax),
		Breakdown:        breakdown,
	}
}

// CalculateQuickQuote prices a quote from a single total square footage and
// a quality tier, with no specific products selected.
func (c *Calculator) CalculateQuickQuote(totalSqft float64, quality PaintQuality, defaults CompanyDefaults, projectType ProjectType) PricingDetails {
	return c.CalculateQuote(QuoteRequest{
		Measurements:    EstimateMeasurements(totalSqft, projectType),
		Products:        ProductSelections{PaintQuality: quality},
		CompanyDefaults: defaults,
	})
}

// RecalculateQuote applies changes to an existing quote's inputs and prices
// the result. Empty changes price the existing inputs unchanged.
func (c *Calculator) RecalculateQuote(existing QuoteRequest, changes QuoteChanges) PricingDetails {
	return c.CalculateQuote(ApplyChanges(existing, changes))
}

// ApplyChanges merges changes into a copy of existing.
func ApplyChanges(existing QuoteRequest, changes QuoteChanges) QuoteRequest {
	out := existing
	if changes.Measurements != nil {
		out.Measurements = *changes.Measurements
	}
	if changes.Products != nil {
		out.Products = *changes.Products
	}
	if changes.CompanyDefaults != nil {
		out.CompanyDefaults = *changes.CompanyDefaults
	}
	if changes.Overrides != nil {
		merged := RateOverrides{}
		if existing.Overrides != nil {
			merged = *existing.Overrides
		}
		o := changes.Overrides
		if o.WallsRate != nil {
			merged.WallsRate = o.WallsRate
		}
		if o.CeilingsRate != nil {
			merged.CeilingsRate = o.CeilingsRate
		}
		if o.TrimRate != nil {
			merged.TrimRate = o.TrimRate
		}
		if o.MarkupPercentage != nil {
			merged.MarkupPercentage = o.MarkupPercentage
		}
		if o.TaxRate != nil {
			merged.TaxRate = o.TaxRate
		}
		out.Overrides = &merged
	}
	return out
}

func (c *Calculator) materialCosts(m ProjectMeasurements, products ProductSelections) materialCosts {
	quality := products.PaintQuality
	if !quality.Valid() {
		quality = QualityBetter
	}

	var mc materialCosts
	mc.gallons.Walls = c.gallonsFor(m.TotalWallsSqft)
	mc.gallons.Ceilings = c.gallonsFor(m.TotalCeilingsSqft)
	mc.gallons.Trim = c.gallonsFor(m.TotalTrimSqft)

	mc.walls = float64(mc.gallons.Walls) * c.costPerGallon(products, CategoryWall, quality)
	mc.ceilings = float64(mc.gallons.Ceilings) * c.costPerGallon(products, CategoryCeiling, quality)
	mc.trim = float64(mc.gallons.Trim) * c.costPerGallon(products, CategoryTrim, quality)

	if products.Primer != nil || products.IncludePrimer {
		mc.gallons.Primer = c.gallonsFor(m.TotalWallsSqft + m.TotalCeilingsSqft)
		mc.primer = float64(mc.gallons.Primer) * c.costPerGallon(products, CategoryPrimer, quality)
	}

	mc.paint = mc.walls + mc.ceilings + mc.trim + mc.primer
	mc.sundries = mc.paint * c.settings.SundriesPercentage / 100
	mc.total = mc.paint + mc.sundries
	return mc
}

func (c *Calculator) gallonsFor(sqft float64) int {
	if sqft <= 0 {
		return 0
	}
	return int(math.Ceil(sqft / c.settings.CoverageSqftPerGallon))
}

func (c *Calculator) costPerGallon(products ProductSelections, category PaintCategory, quality PaintQuality) float64 {
	if p := products.Product(category); p != nil {
		if p.CostPerGallon != 0 || !p.Quality.Valid() {
			return p.CostPerGallon
		}
		quality = p.Quality
	}
	cost, _ := c.settings.DefaultCosts.Cost(category, quality)
	return cost
}

func laborCost(m ProjectMeasurements, defaults CompanyDefaults, overrides *RateOverrides) laborCosts {
	var lc laborCosts
	lc.wallsRate = resolve(overrides, func(o *RateOverrides) *float64 { return o.WallsRate }, defaults.WallsRate)
	lc.ceilingsRate = resolve(overrides, func(o *RateOverrides) *float64 { return o.CeilingsRate }, defaults.CeilingsRate)
	lc.trimRate = resolve(overrides, func(o *RateOverrides) *float64 { return o.TrimRate }, defaults.TrimRate)

	lc.walls = m.TotalWallsSqft * lc.wallsRate
	lc.ceilings = m.TotalCeilingsSqft * lc.ceilingsRate
	lc.trim = m.TotalTrimSqft * lc.trimRate
	lc.total = lc.walls + lc.ceilings + lc.trim
	return lc
}

// resolve returns the override if present, else the company default.
func resolve(overrides *RateOverrides, field func(*RateOverrides) *float64, fallback float64) float64 {
	if overrides == nil {
		return fallback
	}
	if v := field(overrides); v != nil {
		return *v
	}
	return fallback
}

func (c *Calculator) breakdown(m ProjectMeasurements, labor laborCosts, materials materialCosts, markup float64) Breakdown {
	primerWalls, primerCeilings := 0.0, 0.0
	if primed := m.TotalWallsSqft + m.TotalCeilingsSqft; primed != 0 && materials.primer != 0 {
		primerWalls = materials.primer * m.TotalWallsSqft / primed
		primerCeilings = materials.primer - primerWalls
	}

	return Breakdown{
		Walls:    c.money(labor.walls + materials.walls + primerWalls),
		Ceilings: c.money(labor.ceilings + materials.ceilings + primerCeilings),
		Trim:     c.money(labor.trim + materials.trim),
		Sundries: c.money(materials.sundries),
		Profit:   c.money(markup),
	}
}

// money rounds a currency amount half away from zero.
func (c *Calculator) money(v float64) float64 {
	if c.settings.RoundingPlaces < 0 {
		return v
	}
	return decimal.NewFromFloat(v).Round(c.settings.RoundingPlaces).InexactFloat64()
}

// sum adds already rounded amounts without float drift.
func (c *Calculator) sum(values ...float64) float64 {
	if c.settings.RoundingPlaces < 0 {
		var total float64
		for _, v := range values {
			total += v
		}
		return total
	}
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
