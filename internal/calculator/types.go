// Package calculator turns measurements, product selections and company
// rates into a priced painting quote.
//
// Every function in this package is pure: no I/O, no shared state. The same
// inputs always produce the same PricingDetails.
package calculator

// ProjectType selects the ratios used when estimating areas from a single
// total square footage.
type ProjectType string

const (
	ProjectInterior ProjectType = "interior"
	ProjectExterior ProjectType = "exterior"
	ProjectBoth     ProjectType = "both"
)

// Valid reports whether t is one of the known project types.
func (t ProjectType) Valid() bool {
	switch t {
	case ProjectInterior, ProjectExterior, ProjectBoth:
		return true
	}
	return false
}

// PaintQuality is the fallback tier used when no specific product is chosen.
type PaintQuality string

const (
	QualityGood    PaintQuality = "good"
	QualityBetter  PaintQuality = "better"
	QualityBest    PaintQuality = "best"
	QualityPremium PaintQuality = "premium"
)

// Qualities lists the tiers from cheapest to most expensive.
var Qualities = []PaintQuality{QualityGood, QualityBetter, QualityBest, QualityPremium}

// Valid reports whether q is a known tier.
func (q PaintQuality) Valid() bool {
	for _, known := range Qualities {
		if q == known {
			return true
		}
	}
	return false
}

// PaintCategory identifies which surface a paint product is for.
type PaintCategory string

const (
	CategoryPrimer  PaintCategory = "primer"
	CategoryWall    PaintCategory = "wall"
	CategoryCeiling PaintCategory = "ceiling"
	CategoryTrim    PaintCategory = "trim"
)

// RoomMeasurements holds the dimensions and derived areas of one room.
type RoomMeasurements struct {
	Name                  string  `json:"name"`
	Length                float64 `json:"length,omitempty"`
	Width                 float64 `json:"width,omitempty"`
	Height                float64 `json:"height,omitempty"`
	WallsSquareFootage    float64 `json:"wallsSquareFootage"`
	CeilingsSquareFootage float64 `json:"ceilingsSquareFootage"`
	TrimSquareFootage     float64 `json:"trimSquareFootage"`
}

// ProjectMeasurements is the area input of a calculation. The totals are
// expected to roughly match the sum of the rooms.
type ProjectMeasurements struct {
	TotalWallsSqft    float64            `json:"totalWallsSqft"`
	TotalCeilingsSqft float64            `json:"totalCeilingsSqft"`
	TotalTrimSqft     float64            `json:"totalTrimSqft"`
	Rooms             []RoomMeasurements `json:"rooms"`
}

// TotalSqft returns walls + ceilings + trim.
func (m ProjectMeasurements) TotalSqft() float64 {
	return m.TotalWallsSqft + m.TotalCeilingsSqft + m.TotalTrimSqft
}

// PaintProduct is catalog reference data for a single paint.
type PaintProduct struct {
	Supplier      string       `json:"supplier" yaml:"supplier" toml:"supplier"`
	ProductName   string       `json:"productName" yaml:"product_name" toml:"product_name"`
	CostPerGallon float64      `json:"costPerGallon" yaml:"cost_per_gallon" toml:"cost_per_gallon"`
	Coverage      float64      `json:"coverage,omitempty" yaml:"coverage" toml:"coverage"`
	Quality       PaintQuality `json:"quality,omitempty" yaml:"quality" toml:"quality"`
}

// ProductSelections holds the chosen product per category. Categories
// without a product are priced from the default cost table at PaintQuality.
// A product with no price but a valid Quality is priced from the table at
// its own tier.
type ProductSelections struct {
	Primer        *PaintProduct `json:"primer,omitempty"`
	Walls         *PaintProduct `json:"walls,omitempty"`
	Ceilings      *PaintProduct `json:"ceilings,omitempty"`
	Trim          *PaintProduct `json:"trim,omitempty"`
	PaintQuality  PaintQuality  `json:"paintQuality"`
	IncludePrimer bool          `json:"includePrimer,omitempty"`
}

// Product returns the selected product for a category, or nil.
func (p ProductSelections) Product(c PaintCategory) *PaintProduct {
	switch c {
	case CategoryPrimer:
		return p.Primer
	case CategoryWall:
		return p.Walls
	case CategoryCeiling:
		return p.Ceilings
	case CategoryTrim:
		return p.Trim
	}
	return nil
}

// WithProduct returns a copy of p with the product for c replaced.
func (p ProductSelections) WithProduct(c PaintCategory, product *PaintProduct) ProductSelections {
	switch c {
	case CategoryPrimer:
		p.Primer = product
	case CategoryWall:
		p.Walls = product
	case CategoryCeiling:
		p.Ceilings = product
	case CategoryTrim:
		p.Trim = product
	}
	return p
}

// CompanyDefaults are the contractor's standing rates. Rates are USD per
// square foot; MarkupPercentage and TaxRate are percentages.
type CompanyDefaults struct {
	WallsRate        float64 `json:"wallsRate" yaml:"walls_rate" toml:"walls_rate"`
	CeilingsRate     float64 `json:"ceilingsRate" yaml:"ceilings_rate" toml:"ceilings_rate"`
	TrimRate         float64 `json:"trimRate" yaml:"trim_rate" toml:"trim_rate"`
	MarkupPercentage float64 `json:"markupPercentage" yaml:"markup_percentage" toml:"markup_percentage"`
	TaxRate          float64 `json:"taxRate" yaml:"tax_rate" toml:"tax_rate"`
}

// RateOverrides replace individual company defaults for one quote.
type RateOverrides struct {
	WallsRate        *float64 `json:"wallsRate,omitempty"`
	CeilingsRate     *float64 `json:"ceilingsRate,omitempty"`
	TrimRate         *float64 `json:"trimRate,omitempty"`
	MarkupPercentage *float64 `json:"markupPercentage,omitempty"`
	TaxRate          *float64 `json:"taxRate,omitempty"`
}

// QuoteRequest is everything needed to price a quote.
type QuoteRequest struct {
	Measurements    ProjectMeasurements `json:"measurements"`
	Products        ProductSelections   `json:"products"`
	CompanyDefaults CompanyDefaults     `json:"companyDefaults"`
	Overrides       *RateOverrides      `json:"overrides,omitempty"`
}

// QuoteChanges is a partial edit of a QuoteRequest. Nil fields keep the
// existing value; override fields are merged one by one.
type QuoteChanges struct {
	Measurements    *ProjectMeasurements `json:"measurements,omitempty"`
	Products        *ProductSelections   `json:"products,omitempty"`
	CompanyDefaults *CompanyDefaults     `json:"companyDefaults,omitempty"`
	Overrides       *RateOverrides       `json:"overrides,omitempty"`
}

// Gallons is the paint volume needed per surface.
type Gallons struct {
	Walls    int `json:"walls"`
	Ceilings int `json:"ceilings"`
	Trim     int `json:"trim"`
	Primer   int `json:"primer"`
}

// Total returns the number of gallons over all surfaces.
func (g Gallons) Total() int {
	return g.Walls + g.Ceilings + g.Trim + g.Primer
}

// Breakdown apportions the pre-tax price onto display categories.
type Breakdown struct {
	Walls    float64 `json:"walls"`
	Ceilings float64 `json:"ceilings"`
	Trim     float64 `json:"trim"`
	Sundries float64 `json:"sundries"`
	Profit   float64 `json:"profit"`
}

// PricingDetails is the immutable result of a calculation.
type PricingDetails struct {
	WallsRate    float64 `json:"wallsRate"`
	CeilingsRate float64 `json:"ceilingsRate"`
	TrimRate     float64 `json:"trimRate"`

	WallsLabor    float64 `json:"wallsLabor"`
	CeilingsLabor float64 `json:"ceilingsLabor"`
	TrimLabor     float64 `json:"trimLabor"`
	TotalLabor    float64 `json:"totalLabor"`

	WallsMaterial    float64 `json:"wallsMaterial"`
	CeilingsMaterial float64 `json:"ceilingsMaterial"`
	TrimMaterial     float64 `json:"trimMaterial"`
	PrimerMaterial   float64 `json:"primerMaterial"`
	PaintCost        float64 `json:"paintCost"`
	Sundries         float64 `json:"sundries"`
	TotalMaterial    float64 `json:"totalMaterial"`
	Gallons          Gallons `json:"gallons"`

	Subtotal         float64   `json:"subtotal"`
	MarkupPercentage float64   `json:"markupPercentage"`
	MarkupAmount     float64   `json:"markupAmount"`
	TaxRate          float64   `json:"taxRate"`
	TaxAmount        float64   `json:"taxAmount"`
	FinalPrice       float64   `json:"finalPrice"`
	Breakdown        Breakdown `json:"breakdown"`
}

// ValidationResult is the advisory outcome of ValidateMeasurements.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}
