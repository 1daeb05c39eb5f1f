package calculator

const (
	// DefaultCoverageSqftPerGallon is the area one gallon is assumed to cover.
	DefaultCoverageSqftPerGallon = 350.0

	// DefaultSundriesPercentage covers brushes, rollers, tape and drop cloths
	// as a share of paint cost.
	DefaultSundriesPercentage = 12.0

	// DefaultRoundingPlaces rounds money outputs to cents.
	DefaultRoundingPlaces int32 = 2
)

// Warning thresholds carried over from the original product. They are not
// derived from a documented business rule.
const (
	DefaultMaxWallsSqft     = 10000.0
	DefaultMaxCeilingsSqft  = 5000.0
	DefaultMaxTrimSqft      = 2000.0
	DefaultMinWallsSqft     = 50.0
	DefaultRoomSumTolerance = 0.10
)

// CostTable maps category and quality tier to a price per gallon in USD.
type CostTable map[PaintCategory]map[PaintQuality]float64

// DefaultCostTable returns the built-in price points.
func DefaultCostTable() CostTable {
	return CostTable{
		CategoryPrimer:  {QualityGood: 25, QualityBetter: 30, QualityBest: 35, QualityPremium: 40},
		CategoryWall:    {QualityGood: 35, QualityBetter: 45, QualityBest: 60, QualityPremium: 75},
		CategoryCeiling: {QualityGood: 30, QualityBetter: 40, QualityBest: 55, QualityPremium: 70},
		CategoryTrim:    {QualityGood: 40, QualityBetter: 55, QualityBest: 70, QualityPremium: 85},
	}
}

// Cost looks up a price, reporting false when the table has no entry.
func (t CostTable) Cost(c PaintCategory, q PaintQuality) (float64, bool) {
	byQuality, ok := t[c]
	if !ok {
		return 0, false
	}
	cost, ok := byQuality[q]
	return cost, ok
}

// Thresholds controls the soft warnings raised by the validator.
type Thresholds struct {
	MaxWallsSqft     float64 `json:"maxWallsSqft" yaml:"max_walls_sqft" toml:"max_walls_sqft"`
	MaxCeilingsSqft  float64 `json:"maxCeilingsSqft" yaml:"max_ceilings_sqft" toml:"max_ceilings_sqft"`
	MaxTrimSqft      float64 `json:"maxTrimSqft" yaml:"max_trim_sqft" toml:"max_trim_sqft"`
	MinWallsSqft     float64 `json:"minWallsSqft" yaml:"min_walls_sqft" toml:"min_walls_sqft"`
	RoomSumTolerance float64 `json:"roomSumTolerance" yaml:"room_sum_tolerance" toml:"room_sum_tolerance"`
}

// DefaultThresholds returns the built-in warning thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxWallsSqft:     DefaultMaxWallsSqft,
		MaxCeilingsSqft:  DefaultMaxCeilingsSqft,
		MaxTrimSqft:      DefaultMaxTrimSqft,
		MinWallsSqft:     DefaultMinWallsSqft,
		RoomSumTolerance: DefaultRoomSumTolerance,
	}
}

// Settings holds the business constants used by a Calculator.
type Settings struct {
	CoverageSqftPerGallon float64
	SundriesPercentage    float64
	DefaultCosts          CostTable
	Thresholds            Thresholds

	// RoundingPlaces is the number of decimals money outputs are rounded to.
	// A negative value disables rounding.
	RoundingPlaces int32
}

// DefaultSettings returns the constants the product ships with.
func DefaultSettings() Settings {
	return Settings{
		CoverageSqftPerGallon: DefaultCoverageSqftPerGallon,
		SundriesPercentage:    DefaultSundriesPercentage,
		DefaultCosts:          DefaultCostTable(),
		Thresholds:            DefaultThresholds(),
		RoundingPlaces:        DefaultRoundingPlaces,
	}
}

// Option customizes the Settings of a Calculator.
type Option func(*Settings)

// WithCoverage sets the square feet covered by one gallon. Non-positive
// values are ignored.
func WithCoverage(sqftPerGallon float64) Option {
	return func(s *Settings) {
		if sqftPerGallon > 0 {
			s.CoverageSqftPerGallon = sqftPerGallon
		}
	}
}

// WithSundriesPercentage sets the sundries surcharge on paint cost.
func WithSundriesPercentage(pct float64) Option {
	return func(s *Settings) {
		if pct >= 0 {
			s.SundriesPercentage = pct
		}
	}
}

// WithDefaultCosts overlays entries onto the default cost table. Missing
// entries keep their built-in price.
func WithDefaultCosts(costs CostTable) Option {
	return func(s *Settings) {
		for category, byQuality := range costs {
			if s.DefaultCosts[category] == nil {
				s.DefaultCosts[category] = map[PaintQuality]float64{}
			}
			for quality, cost := range byQuality {
				s.DefaultCosts[category][quality] = cost
			}
		}
	}
}

// WithThresholds replaces the non-zero validator thresholds.
func WithThresholds(th Thresholds) Option {
	return func(s *Settings) {
		if th.MaxWallsSqft > 0 {
			s.Thresholds.MaxWallsSqft = th.MaxWallsSqft
		}
		if th.MaxCeilingsSqft > 0 {
			s.Thresholds.MaxCeilingsSqft = th.MaxCeilingsSqft
		}
		if th.MaxTrimSqft > 0 {
			s.Thresholds.MaxTrimSqft = th.MaxTrimSqft
		}
		if th.MinWallsSqft > 0 {
			s.Thresholds.MinWallsSqft = th.MinWallsSqft
		}
		if th.RoomSumTolerance > 0 {
			s.Thresholds.RoomSumTolerance = th.RoomSumTolerance
		}
	}
}

// WithRoundingPlaces sets how many decimals money outputs keep.
func WithRoundingPlaces(places int32) Option {
	return func(s *Settings) {
		s.RoundingPlaces = places
	}
}
