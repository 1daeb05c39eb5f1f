// Package conversation drives the chat-based quote wizard: a fixed sequence
// of stages, each gating which draft fields may be written, plus a
// keyword parser and a session manager backed by a pluggable store.
package conversation

import "github.com/paintquote/backend/internal/calculator"

// Stage is a step of the quote conversation.
type Stage string

const (
	StageCustomerInfo     Stage = "customer_info"
	StageProjectType      Stage = "project_type"
	StageSurfaceSelection Stage = "surface_selection"
	StageDimensions       Stage = "dimensions"
	StagePaintSelection   Stage = "paint_selection"
	StageMarkupSelection  Stage = "markup_selection"
	StageReview           Stage = "review"
	StageComplete         Stage = "complete"
)

var stageOrder = []Stage{
	StageCustomerInfo,
	StageProjectType,
	StageSurfaceSelection,
	StageDimensions,
	StagePaintSelection,
	StageMarkupSelection,
	StageReview,
	StageComplete,
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, st := range stageOrder {
		if st == s {
			return true
		}
	}
	return false
}

// Next returns the stage after s. Complete is terminal and returns itself.
func (s Stage) Next() Stage {
	for i, st := range stageOrder {
		if st == s && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return StageComplete
}

// Field names a writable draft field.
type Field string

const (
	FieldName             Field = "name"
	FieldEmail            Field = "email"
	FieldPhone            Field = "phone"
	FieldAddress          Field = "address"
	FieldProjectType      Field = "projectType"
	FieldSurfaces         Field = "surfaces"
	FieldIncludePrimer    Field = "includePrimer"
	FieldTotalSqft        Field = "totalSqft"
	FieldWallsSqft        Field = "wallsSqft"
	FieldCeilingsSqft     Field = "ceilingsSqft"
	FieldTrimSqft         Field = "trimSqft"
	FieldPaintQuality     Field = "paintQuality"
	FieldProduct          Field = "product"
	FieldMarkupPercentage Field = "markupPercentage"
)

var writable = map[Stage][]Field{
	StageCustomerInfo:     {FieldName, FieldEmail, FieldPhone, FieldAddress},
	StageProjectType:      {FieldProjectType},
	StageSurfaceSelection: {FieldSurfaces, FieldIncludePrimer},
	StageDimensions:       {FieldTotalSqft, FieldWallsSqft, FieldCeilingsSqft, FieldTrimSqft},
	StagePaintSelection:   {FieldPaintQuality, FieldProduct},
	StageMarkupSelection:  {FieldMarkupPercentage},
}

// Writable reports whether f may be written while the conversation is at s.
func (s Stage) Writable(f Field) bool {
	for _, w := range writable[s] {
		if w == f {
			return true
		}
	}
	return false
}

// Surface is a paintable surface the customer can select.
type Surface string

const (
	SurfaceWalls    Surface = "walls"
	SurfaceCeilings Surface = "ceilings"
	SurfaceTrim     Surface = "trim"
)

var surfaceOrder = []Surface{SurfaceWalls, SurfaceCeilings, SurfaceTrim}

// Category returns the paint category used for s.
func (s Surface) Category() calculator.PaintCategory {
	switch s {
	case SurfaceCeilings:
		return calculator.CategoryCeiling
	case SurfaceTrim:
		return calculator.CategoryTrim
	default:
		return calculator.CategoryWall
	}
}

// Valid reports whether s is a known surface.
func (s Surface) Valid() bool {
	return s == SurfaceWalls || s == SurfaceCeilings || s == SurfaceTrim
}

func (s Surface) sqftField() Field {
	switch s {
	case SurfaceCeilings:
		return FieldCeilingsSqft
	case SurfaceTrim:
		return FieldTrimSqft
	default:
		return FieldWallsSqft
	}
}
