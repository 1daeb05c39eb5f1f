// Package models contains the data models for the application.
package models

import (
	"time"

	"github.com/paintquote/backend/internal/calculator"
)

// QuoteStatus is the lifecycle state of a persisted quote.
type QuoteStatus string

const (
	StatusDraft    QuoteStatus = "draft"
	StatusSent     QuoteStatus = "sent"
	StatusAccepted QuoteStatus = "accepted"
	StatusRejected QuoteStatus = "rejected"
	StatusExpired  QuoteStatus = "expired"
)

// Valid reports whether s is a known status.
func (s QuoteStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// CreationMethod records how a quote was built.
type CreationMethod string

const (
	MethodChat  CreationMethod = "chat"
	MethodForm  CreationMethod = "form"
	MethodQuick CreationMethod = "quick"
)

// Customer identifies who the quote is for.
type Customer struct {
	Name    string `json:"name" binding:"required,max=256"`
	Email   string `json:"email,omitempty" binding:"omitempty,email,max=256"`
	Phone   string `json:"phone,omitempty" binding:"max=64"`
	Address string `json:"address,omitempty" binding:"max=512"`
}

// Quote is a priced proposal: metadata, customer, calculation inputs and
// the pricing snapshot computed from them.
type Quote struct {
	ID             string                    `json:"id"`
	Status         QuoteStatus               `json:"status"`
	CreationMethod CreationMethod            `json:"creationMethod"`
	Customer       Customer                  `json:"customer"`
	ProjectType    calculator.ProjectType    `json:"projectType"`
	Notes          string                    `json:"notes,omitempty"`
	Inputs         calculator.QuoteRequest   `json:"inputs"`
	Pricing        calculator.PricingDetails `json:"pricing"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// CreateQuoteRequest represents the request body for creating a quote.
// Either Measurements or TotalSqft must be given.
type CreateQuoteRequest struct {
	Customer        Customer                        `json:"customer" binding:"required"`
	ProjectType     calculator.ProjectType          `json:"projectType" binding:"omitempty,oneof=interior exterior both"`
	Notes           string                          `json:"notes" binding:"max=2000"`
	Measurements    *calculator.ProjectMeasurements `json:"measurements,omitempty"`
	TotalSqft       *float64                        `json:"totalSqft,omitempty" binding:"omitempty,gt=0"`
	Products        calculator.ProductSelections    `json:"products"`
	CompanyDefaults *calculator.CompanyDefaults     `json:"companyDefaults,omitempty"`
	Overrides       *calculator.RateOverrides       `json:"overrides,omitempty"`
}

// UpdateQuoteRequest represents the request body for updating quote metadata.
type UpdateQuoteRequest struct {
	Status   *QuoteStatus `json:"status,omitempty" binding:"omitempty,oneof=draft sent accepted rejected expired"`
	Customer *Customer    `json:"customer,omitempty"`
	Notes    *string      `json:"notes,omitempty" binding:"omitempty,max=2000"`
}

// CalculateRequest prices measurements without persisting anything.
type CalculateRequest struct {
	Measurements    calculator.ProjectMeasurements `json:"measurements"`
	Products        calculator.ProductSelections   `json:"products"`
	CompanyDefaults *calculator.CompanyDefaults    `json:"companyDefaults,omitempty"`
	Overrides       *calculator.RateOverrides      `json:"overrides,omitempty"`
}

// QuickQuoteRequest prices a job from a single total square footage.
type QuickQuoteRequest struct {
	TotalSqft       float64                     `json:"totalSqft" binding:"required,gt=0"`
	PaintQuality    calculator.PaintQuality     `json:"paintQuality" binding:"omitempty,oneof=good better best premium"`
	ProjectType     calculator.ProjectType      `json:"projectType" binding:"omitempty,oneof=interior exterior both"`
	CompanyDefaults *calculator.CompanyDefaults `json:"companyDefaults,omitempty"`
}

// EstimateRequest asks for measurements derived from a total square footage.
type EstimateRequest struct {
	TotalSqft   float64                `json:"totalSqft" binding:"required"`
	ProjectType calculator.ProjectType `json:"projectType" binding:"omitempty,oneof=interior exterior both"`
}

// CalculationResult is returned by the stateless pricing endpoints.
type CalculationResult struct {
	Measurements calculator.ProjectMeasurements `json:"measurements"`
	Pricing      calculator.PricingDetails      `json:"pricing"`
	Validation   calculator.ValidationResult    `json:"validation"`
	CrewDays     int                            `json:"crewDays"`
}

// QuoteResponse wraps a single quote in the API response.
type QuoteResponse struct {
	Data Quote `json:"data"`
}

// QuotesResponse wraps multiple quotes in the API response.
type QuotesResponse struct {
	Data []Quote `json:"data"`
}

// CalculationResponse wraps a CalculationResult.
type CalculationResponse struct {
	Data CalculationResult `json:"data"`
}

// MeasurementsResponse wraps estimated measurements.
type MeasurementsResponse struct {
	Data calculator.ProjectMeasurements `json:"data"`
}

// ValidationResponse wraps a validation result.
type ValidationResponse struct {
	Data calculator.ValidationResult `json:"data"`
}

// ErrorResponse represents an error response from the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
