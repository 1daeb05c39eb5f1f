package conversation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/models"
)

var (
	// ErrFieldNotWritable is returned when an update touches a field that
	// belongs to a different stage.
	ErrFieldNotWritable = errors.New("field not writable at current stage")

	// ErrInvalidValue is returned for values outside their domain.
	ErrInvalidValue = errors.New("invalid value")

	// ErrStageIncomplete is returned by Advance while required fields are missing.
	ErrStageIncomplete = errors.New("stage incomplete")

	// ErrFlowComplete is returned when a completed conversation is advanced.
	ErrFlowComplete = errors.New("conversation already complete")
)

// Message is one turn of the conversation transcript.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Draft is the partially collected quote.
type Draft struct {
	Customer         models.Customer                `json:"customer"`
	ProjectType      calculator.ProjectType         `json:"projectType,omitempty"`
	Surfaces         []Surface                      `json:"surfaces,omitempty"`
	Measurements     calculator.ProjectMeasurements `json:"measurements"`
	Products         calculator.ProductSelections   `json:"products"`
	PaintChosen      []calculator.PaintCategory     `json:"paintChosen,omitempty"`
	MarkupPercentage *float64                       `json:"markupPercentage,omitempty"`
}

// HasSurface reports whether s was selected.
func (d Draft) HasSurface(s Surface) bool {
	for _, sel := range d.Surfaces {
		if sel == s {
			return true
		}
	}
	return false
}

func (d Draft) chosen(c calculator.PaintCategory) bool {
	for _, ch := range d.PaintChosen {
		if ch == c {
			return true
		}
	}
	return false
}

func (d Draft) sqft(s Surface) float64 {
	switch s {
	case SurfaceCeilings:
		return d.Measurements.TotalCeilingsSqft
	case SurfaceTrim:
		return d.Measurements.TotalTrimSqft
	default:
		return d.Measurements.TotalWallsSqft
	}
}

// Update carries field values extracted from one message. Nil fields are
// left untouched.
type Update struct {
	Name             *string                  `json:"name,omitempty"`
	Email            *string                  `json:"email,omitempty"`
	Phone            *string                  `json:"phone,omitempty"`
	Address          *string                  `json:"address,omitempty"`
	ProjectType      *calculator.ProjectType  `json:"projectType,omitempty"`
	Surfaces         []Surface                `json:"surfaces,omitempty"`
	IncludePrimer    *bool                    `json:"includePrimer,omitempty"`
	TotalSqft        *float64                 `json:"totalSqft,omitempty"`
	WallsSqft        *float64                 `json:"wallsSqft,omitempty"`
	CeilingsSqft     *float64                 `json:"ceilingsSqft,omitempty"`
	TrimSqft         *float64                 `json:"trimSqft,omitempty"`
	PaintQuality     *calculator.PaintQuality `json:"paintQuality,omitempty"`
	Product          *calculator.PaintProduct `json:"product,omitempty"`
	MarkupPercentage *float64                 `json:"markupPercentage,omitempty"`
}

// Fields lists the fields u sets.
func (u Update) Fields() []Field {
	var fields []Field
	add := func(set bool, f Field) {
		if set {
			fields = append(fields, f)
		}
	}
	add(u.Name != nil, FieldName)
	add(u.Email != nil, FieldEmail)
	add(u.Phone != nil, FieldPhone)
	add(u.Address != nil, FieldAddress)
	add(u.ProjectType != nil, FieldProjectType)
	add(len(u.Surfaces) > 0, FieldSurfaces)
	add(u.IncludePrimer != nil, FieldIncludePrimer)
	add(u.TotalSqft != nil, FieldTotalSqft)
	add(u.WallsSqft != nil, FieldWallsSqft)
	add(u.CeilingsSqft != nil, FieldCeilingsSqft)
	add(u.TrimSqft != nil, FieldTrimSqft)
	add(u.PaintQuality != nil, FieldPaintQuality)
	add(u.Product != nil, FieldProduct)
	add(u.MarkupPercentage != nil, FieldMarkupPercentage)
	return fields
}

// IsEmpty reports whether u sets nothing.
func (u Update) IsEmpty() bool {
	return len(u.Fields()) == 0
}

// restrict drops every field not writable at stage.
func (u Update) restrict(stage Stage) Update {
	var out Update
	for _, f := range u.Fields() {
		if !stage.Writable(f) {
			continue
		}
		switch f {
		case FieldName:
			out.Name = u.Name
		case FieldEmail:
			out.Email = u.Email
		case FieldPhone:
			out.Phone = u.Phone
		case FieldAddress:
			out.Address = u.Address
		case FieldProjectType:
			out.ProjectType = u.ProjectType
		case FieldSurfaces:
			out.Surfaces = u.Surfaces
		case FieldIncludePrimer:
			out.IncludePrimer = u.IncludePrimer
		case FieldTotalSqft:
			out.TotalSqft = u.TotalSqft
		case FieldWallsSqft:
			out.WallsSqft = u.WallsSqft
		case FieldCeilingsSqft:
			out.CeilingsSqft = u.CeilingsSqft
		case FieldTrimSqft:
			out.TrimSqft = u.TrimSqft
		case FieldPaintQuality:
			out.PaintQuality = u.PaintQuality
		case FieldProduct:
			out.Product = u.Product
		case FieldMarkupPercentage:
			out.MarkupPercentage = u.MarkupPercentage
		}
	}
	return out
}

// Session is the state of one quote conversation.
type Session struct {
	ID        string                     `json:"id"`
	Stage     Stage                      `json:"stage"`
	Draft     Draft                      `json:"draft"`
	PaintStep int                        `json:"paintStep"`
	Messages  []Message                  `json:"messages"`
	Pricing   *calculator.PricingDetails `json:"pricing,omitempty"`
	QuoteID   string                     `json:"quoteId,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// NewSession creates a session at the first stage.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Stage:     StageCustomerInfo,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PaintSteps lists the paint categories to choose, in order: primer when
// requested, then one per selected surface.
func (s *Session) PaintSteps() []calculator.PaintCategory {
	var steps []calculator.PaintCategory
	if s.Draft.Products.IncludePrimer {
		steps = append(steps, calculator.CategoryPrimer)
	}
	for _, surface := range surfaceOrder {
		if s.Draft.HasSurface(surface) {
			steps = append(steps, surface.Category())
		}
	}
	return steps
}

// CurrentCategory returns the paint category being chosen. It is only
// meaningful during paint selection.
func (s *Session) CurrentCategory() (calculator.PaintCategory, bool) {
	if s.Stage != StagePaintSelection {
		return "", false
	}
	steps := s.PaintSteps()
	if s.PaintStep < 0 || s.PaintStep >= len(steps) {
		return "", false
	}
	return steps[s.PaintStep], true
}

// Apply writes u into the draft. It fails without writing anything if any
// field belongs to another stage or holds an invalid value.
func (s *Session) Apply(u Update) error {
	for _, f := range u.Fields() {
		if !s.Stage.Writable(f) {
			return fmt.Errorf("%w: %s at %s", ErrFieldNotWritable, f, s.Stage)
		}
	}
	if err := s.check(u); err != nil {
		return err
	}

	d := &s.Draft
	if u.Name != nil {
		d.Customer.Name = strings.TrimSpace(*u.Name)
	}
	if u.Email != nil {
		d.Customer.Email = strings.TrimSpace(*u.Email)
	}
	if u.Phone != nil {
		d.Customer.Phone = strings.TrimSpace(*u.Phone)
	}
	if u.Address != nil {
		d.Customer.Address = strings.TrimSpace(*u.Address)
	}
	if u.ProjectType != nil {
		d.ProjectType = *u.ProjectType
	}
	if len(u.Surfaces) > 0 {
		d.Surfaces = dedupe(u.Surfaces)
	}
	if u.IncludePrimer != nil {
		d.Products.IncludePrimer = *u.IncludePrimer
	}
	if u.TotalSqft != nil {
		s.estimate(*u.TotalSqft)
	}
	if u.WallsSqft != nil {
		d.Measurements.TotalWallsSqft = *u.WallsSqft
		d.Measurements.Rooms = nil
	}
	if u.CeilingsSqft != nil {
		d.Measurements.TotalCeilingsSqft = *u.CeilingsSqft
		d.Measurements.Rooms = nil
	}
	if u.TrimSqft != nil {
		d.Measurements.TotalTrimSqft = *u.TrimSqft
		d.Measurements.Rooms = nil
	}
	if u.PaintQuality != nil || u.Product != nil {
		category, _ := s.CurrentCategory()
		if u.PaintQuality != nil && d.Products.PaintQuality == "" {
			d.Products.PaintQuality = *u.PaintQuality
		}
		switch {
		case u.Product != nil:
			product := *u.Product
			d.Products = d.Products.WithProduct(category, &product)
		case u.PaintQuality != nil:
			// A bare tier is kept per surface; the calculator prices it
			// from the default cost table.
			d.Products = d.Products.WithProduct(category, tierProduct(*u.PaintQuality))
		}
		if !d.chosen(category) {
			d.PaintChosen = append(d.PaintChosen, category)
		}
	}
	if u.MarkupPercentage != nil {
		markup := *u.MarkupPercentage
		d.MarkupPercentage = &markup
	}
	return nil
}

func (s *Session) check(u Update) error {
	if u.ProjectType != nil && !u.ProjectType.Valid() {
		return fmt.Errorf("%w: project type %q", ErrInvalidValue, *u.ProjectType)
	}
	for _, surface := range u.Surfaces {
		if !surface.Valid() {
			return fmt.Errorf("%w: surface %q", ErrInvalidValue, surface)
		}
	}
	for _, v := range []*float64{u.TotalSqft, u.WallsSqft, u.CeilingsSqft, u.TrimSqft} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: square footage cannot be negative", ErrInvalidValue)
		}
	}
	if u.PaintQuality != nil || u.Product != nil {
		if _, ok := s.CurrentCategory(); !ok {
			return fmt.Errorf("%w: no paint category to choose", ErrInvalidValue)
		}
	}
	if u.PaintQuality != nil && !u.PaintQuality.Valid() {
		return fmt.Errorf("%w: paint quality %q", ErrInvalidValue, *u.PaintQuality)
	}
	if u.Product != nil && u.Product.CostPerGallon <= 0 {
		return fmt.Errorf("%w: cost per gallon must be positive", ErrInvalidValue)
	}
	if u.MarkupPercentage != nil && *u.MarkupPercentage < 0 {
		return fmt.Errorf("%w: markup cannot be negative", ErrInvalidValue)
	}
	return nil
}

// estimate derives per-surface areas from a total and keeps only the
// selected surfaces.
func (s *Session) estimate(total float64) {
	projectType := s.Draft.ProjectType
	if !projectType.Valid() {
		projectType = calculator.ProjectInterior
	}
	m := calculator.EstimateMeasurements(total, projectType)
	if !s.Draft.HasSurface(SurfaceWalls) {
		m.TotalWallsSqft = 0
	}
	if !s.Draft.HasSurface(SurfaceCeilings) {
		m.TotalCeilingsSqft = 0
	}
	if !s.Draft.HasSurface(SurfaceTrim) {
		m.TotalTrimSqft = 0
	}
	if len(m.Rooms) == 1 {
		m.Rooms[0].WallsSquareFootage = m.TotalWallsSqft
		m.Rooms[0].CeilingsSquareFootage = m.TotalCeilingsSqft
		m.Rooms[0].TrimSquareFootage = m.TotalTrimSqft
	}
	s.Draft.Measurements = m
}

// Missing lists the required fields of the current stage that are not yet set.
func (s *Session) Missing() []string {
	missing := []string{}
	d := s.Draft
	switch s.Stage {
	case StageCustomerInfo:
		if d.Customer.Name == "" {
			missing = append(missing, string(FieldName))
		}
	case StageProjectType:
		if !d.ProjectType.Valid() {
			missing = append(missing, string(FieldProjectType))
		}
	case StageSurfaceSelection:
		if len(d.Surfaces) == 0 {
			missing = append(missing, string(FieldSurfaces))
		}
	case StageDimensions:
		for _, surface := range surfaceOrder {
			if d.HasSurface(surface) && d.sqft(surface) <= 0 {
				missing = append(missing, string(surface.sqftField()))
			}
		}
	case StagePaintSelection:
		if category, ok := s.CurrentCategory(); ok && !d.chosen(category) {
			missing = append(missing, string(category)+"Paint")
		}
	case StageMarkupSelection:
		if d.MarkupPercentage == nil {
			missing = append(missing, string(FieldMarkupPercentage))
		}
	}
	return missing
}

// Advance moves to the next stage, or to the next paint category while
// paint selection has categories left.
func (s *Session) Advance() error {
	if s.Stage == StageComplete {
		return ErrFlowComplete
	}
	if missing := s.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrStageIncomplete, strings.Join(missing, ", "))
	}
	if s.Stage == StagePaintSelection && s.PaintStep+1 < len(s.PaintSteps()) {
		s.PaintStep++
		return nil
	}
	s.Stage = s.Stage.Next()
	s.PaintStep = 0
	return nil
}

// Restart returns the conversation to its first stage with an empty draft.
// The transcript is kept.
func (s *Session) Restart() {
	s.Stage = StageCustomerInfo
	s.Draft = Draft{}
	s.PaintStep = 0
	s.Pricing = nil
	s.QuoteID = ""
}

// QuoteRequest builds the calculator input from the draft. A markup chosen
// in the conversation is recorded as an override of the company default.
func (s *Session) QuoteRequest(defaults calculator.CompanyDefaults) calculator.QuoteRequest {
	req := calculator.QuoteRequest{
		Measurements:    s.Draft.Measurements,
		Products:        s.Draft.Products,
		CompanyDefaults: defaults,
	}
	if s.Draft.MarkupPercentage != nil {
		markup := *s.Draft.MarkupPercentage
		req.Overrides = &calculator.RateOverrides{MarkupPercentage: &markup}
	}
	return req
}

func tierProduct(q calculator.PaintQuality) *calculator.PaintProduct {
	return &calculator.PaintProduct{ProductName: string(q) + " grade", Quality: q}
}

func dedupe(surfaces []Surface) []Surface {
	out := make([]Surface, 0, len(surfaces))
	for _, candidate := range surfaceOrder {
		for _, s := range surfaces {
			if s == candidate {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
