package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/paintquote/backend/internal/calculator"
)

// ErrUnsupportedFormat is returned for rate card files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported rate card format")

// RateCard is the per-tenant pricing configuration: business constants for
// the calculator, the company's default rates and the paint catalog.
type RateCard struct {
	CoverageSqftPerGallon float64                       `yaml:"coverage_sqft_per_gallon" toml:"coverage_sqft_per_gallon"`
	SundriesPercentage    *float64                      `yaml:"sundries_percentage" toml:"sundries_percentage"`
	RoundingPlaces        *int32                        `yaml:"rounding_places" toml:"rounding_places"`
	DefaultCosts          map[string]map[string]float64 `yaml:"default_costs" toml:"default_costs"`
	Company               calculator.CompanyDefaults    `yaml:"company" toml:"company"`
	Thresholds            calculator.Thresholds         `yaml:"thresholds" toml:"thresholds"`
	Products              []CatalogProduct              `yaml:"products" toml:"products"`
}

// CatalogProduct is a paint product offered for one category.
type CatalogProduct struct {
	Category      string  `yaml:"category" toml:"category"`
	Supplier      string  `yaml:"supplier" toml:"supplier"`
	ProductName   string  `yaml:"product_name" toml:"product_name"`
	CostPerGallon float64 `yaml:"cost_per_gallon" toml:"cost_per_gallon"`
	Coverage      float64 `yaml:"coverage" toml:"coverage"`
	Quality       string  `yaml:"quality" toml:"quality"`
}

// Product converts the catalog entry into calculator reference data.
func (p CatalogProduct) Product() calculator.PaintProduct {
	return calculator.PaintProduct{
		Supplier:      p.Supplier,
		ProductName:   p.ProductName,
		CostPerGallon: p.CostPerGallon,
		Coverage:      p.Coverage,
		Quality:       calculator.PaintQuality(p.Quality),
	}
}

// DefaultCompany are the rates used when neither the request nor the rate
// card provide any.
func DefaultCompany() calculator.CompanyDefaults {
	return calculator.CompanyDefaults{
		WallsRate:        3,
		CeilingsRate:     2,
		TrimRate:         5,
		MarkupPercentage: 20,
		TaxRate:          8,
	}
}

// DefaultRateCard returns the built-in rate card.
func DefaultRateCard() *RateCard {
	return &RateCard{
		Company: DefaultCompany(),
		Products: []CatalogProduct{
			{Category: "wall", Supplier: "Sherwin-Williams", ProductName: "ProMar 200", CostPerGallon: 42, Coverage: 350, Quality: "better"},
			{Category: "wall", Supplier: "Sherwin-Williams", ProductName: "Duration", CostPerGallon: 68, Coverage: 350, Quality: "best"},
			{Category: "wall", Supplier: "Benjamin Moore", ProductName: "Regal Select", CostPerGallon: 74, Coverage: 400, Quality: "premium"},
			{Category: "ceiling", Supplier: "Benjamin Moore", ProductName: "Waterborne Ceiling Paint", CostPerGallon: 52, Coverage: 400, Quality: "best"},
			{Category: "trim", Supplier: "Benjamin Moore", ProductName: "Advance", CostPerGallon: 78, Coverage: 350, Quality: "premium"},
			{Category: "primer", Supplier: "Zinsser", ProductName: "Bulls Eye 1-2-3", CostPerGallon: 28, Coverage: 350, Quality: "better"},
		},
	}
}

// LoadRateCard reads a rate card from a .yaml/.yml or .toml file. An empty
// path returns the built-in rate card.
func LoadRateCard(path string) (*RateCard, error) {
	if path == "" {
		return DefaultRateCard(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rate card: %w", err)
	}

	// Company fields absent from the file keep their defaults; explicit
	// zeros such as tax_rate: 0 are kept.
	card := &RateCard{Company: DefaultCompany()}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, card); err != nil {
			return nil, fmt.Errorf("parsing rate card %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), card); err != nil {
			return nil, fmt.Errorf("parsing rate card %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	card.applyDefaults()
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate card %s: %w", path, err)
	}
	return card, nil
}

func (r *RateCard) applyDefaults() {
	if len(r.Products) == 0 {
		r.Products = DefaultRateCard().Products
	}
}

// ApplyEnvOverrides lets DEFAULT_MARKUP_PERCENTAGE and DEFAULT_TAX_RATE
// replace the company markup and tax without editing the file.
func (r *RateCard) ApplyEnvOverrides() {
	r.Company.MarkupPercentage = getEnvFloat("DEFAULT_MARKUP_PERCENTAGE", r.Company.MarkupPercentage)
	r.Company.TaxRate = getEnvFloat("DEFAULT_TAX_RATE", r.Company.TaxRate)
}

// Validate checks the rate card for values the calculator cannot use.
func (r *RateCard) Validate() error {
	if r.CoverageSqftPerGallon < 0 {
		return errors.New("coverage_sqft_per_gallon must not be negative")
	}
	if r.SundriesPercentage != nil && *r.SundriesPercentage < 0 {
		return errors.New("sundries_percentage must not be negative")
	}
	for category, byQuality := range r.DefaultCosts {
		if !knownCategory(category) {
			return fmt.Errorf("default_costs: unknown category %q", category)
		}
		for quality, cost := range byQuality {
			if !calculator.PaintQuality(quality).Valid() {
				return fmt.Errorf("default_costs.%s: unknown quality %q", category, quality)
			}
			if cost < 0 {
				return fmt.Errorf("default_costs.%s.%s must not be negative", category, quality)
			}
		}
	}
	for i, p := range r.Products {
		if !knownCategory(p.Category) {
			return fmt.Errorf("products[%d]: unknown category %q", i, p.Category)
		}
		if p.ProductName == "" {
			return fmt.Errorf("products[%d]: product_name is required", i)
		}
		if p.CostPerGallon <= 0 {
			return fmt.Errorf("products[%d]: cost_per_gallon must be positive", i)
		}
	}
	return nil
}

// CalculatorOptions converts the rate card into calculator options.
func (r *RateCard) CalculatorOptions() []calculator.Option {
	opts := []calculator.Option{
		calculator.WithCoverage(r.CoverageSqftPerGallon),
		calculator.WithThresholds(r.Thresholds),
	}
	if r.SundriesPercentage != nil {
		opts = append(opts, calculator.WithSundriesPercentage(*r.SundriesPercentage))
	}
	if r.RoundingPlaces != nil {
		opts = append(opts, calculator.WithRoundingPlaces(*r.RoundingPlaces))
	}
	if len(r.DefaultCosts) > 0 {
		costs := calculator.CostTable{}
		for category, byQuality := range r.DefaultCosts {
			costs[calculator.PaintCategory(category)] = map[calculator.PaintQuality]float64{}
			for quality, cost := range byQuality {
				costs[calculator.PaintCategory(category)][calculator.PaintQuality(quality)] = cost
			}
		}
		opts = append(opts, calculator.WithDefaultCosts(costs))
	}
	return opts
}

// Catalog groups the products by category.
func (r *RateCard) Catalog() map[calculator.PaintCategory][]calculator.PaintProduct {
	out := map[calculator.PaintCategory][]calculator.PaintProduct{}
	for _, p := range r.Products {
		category := calculator.PaintCategory(p.Category)
		out[category] = append(out[category], p.Product())
	}
	return out
}

func knownCategory(c string) bool {
	switch calculator.PaintCategory(c) {
	case calculator.CategoryPrimer, calculator.CategoryWall, calculator.CategoryCeiling, calculator.CategoryTrim:
		return true
	}
	return false
}
