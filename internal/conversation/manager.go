package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/ai"
	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/export"
)

// ErrSessionNotFound is returned for unknown or expired conversations.
var ErrSessionNotFound = errors.New("conversation not found")

const assistTimeout = 15 * time.Second

// Reply is the outcome of one conversation turn.
type Reply struct {
	Session   *Session `json:"session"`
	Message   string   `json:"message"`
	Missing   []string `json:"missing"`
	Completed bool     `json:"completed"`
}

// Manager runs quote conversations on top of a SessionStore.
type Manager struct {
	calc      *calculator.Calculator
	store     SessionStore
	defaults  calculator.CompanyDefaults
	catalog   map[calculator.PaintCategory][]calculator.PaintProduct
	assistant ai.Completer
	logger    *zap.Logger
	now       func() time.Time
}

// NewManager creates a conversation manager. Sessions are priced with calc
// using defaults; catalog supplies products the customer can name.
func NewManager(
	calc *calculator.Calculator,
	store SessionStore,
	defaults calculator.CompanyDefaults,
	catalog map[calculator.PaintCategory][]calculator.PaintProduct,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		calc:     calc,
		store:    store,
		defaults: defaults,
		catalog:  catalog,
		logger:   logger,
		now:      time.Now,
	}
}

// WithAssistant enables AI extraction for messages the parser cannot read.
func (m *Manager) WithAssistant(assistant ai.Completer) *Manager {
	m.assistant = assistant
	return m
}

// Defaults returns the company defaults conversations are priced with.
func (m *Manager) Defaults() calculator.CompanyDefaults {
	return m.defaults
}

// Start opens a new conversation.
func (m *Manager) Start(ctx context.Context) (*Reply, error) {
	session := NewSession(uuid.New().String(), m.now())
	text := m.prompt(session)
	m.say(session, "assistant", text)

	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	m.logger.Info("Started conversation", zap.String("id", session.ID))
	return m.reply(session, text), nil
}

// Get returns a conversation by ID.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// HandleMessage processes one customer message and returns the next prompt.
func (m *Manager) HandleMessage(ctx context.Context, id, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", ErrInvalidValue)
	}

	session, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Stage == StageComplete {
		return nil, ErrFlowComplete
	}

	m.say(session, "user", text)
	parsed := Parse(text, session.Stage)

	var response string
	switch {
	case parsed.Restart:
		session.Restart()
		response = "No problem, let's start over. " + m.prompt(session)
	case session.Stage == StageReview:
		response = m.review(session, parsed)
	default:
		response = m.collect(ctx, session, parsed)
	}

	m.say(session, "assistant", response)
	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	m.logger.Debug("Handled conversation message",
		zap.String("id", session.ID),
		zap.String("stage", string(session.Stage)),
	)
	return m.reply(session, response), nil
}

// Restart resets a conversation to its first stage.
func (m *Manager) Restart(ctx context.Context, id string) (*Reply, error) {
	session, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.Restart()
	text := m.prompt(session)
	m.say(session, "assistant", text)

	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	m.logger.Info("Restarted conversation", zap.String("id", id))
	return m.reply(session, text), nil
}

// Delete removes a conversation.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// AttachQuote links a completed conversation to the quote persisted from it.
func (m *Manager) AttachQuote(ctx context.Context, id, quoteID string) (*Session, error) {
	session, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session.QuoteID = quoteID
	session.UpdatedAt = m.now()
	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}
	return session, nil
}

// collect applies what the message says for the current stage and moves on
// once the stage is complete.
func (m *Manager) collect(ctx context.Context, session *Session, parsed Parsed) string {
	update := parsed.Update
	if session.Stage == StagePaintSelection && update.Product == nil {
		if product := m.matchProduct(session, parsed.Text); product != nil {
			update.Product = product
		}
	}
	if update.IsEmpty() {
		update = m.assist(ctx, session, parsed.Text)
	}

	var problem string
	if !update.IsEmpty() {
		if err := session.Apply(update); err != nil {
			m.logger.Debug("Rejected conversation update",
				zap.String("id", session.ID),
				zap.Error(err),
			)
			problem = "Sorry, I couldn't use that: " + err.Error() + ". "
		}
	}

	if missing := session.Missing(); len(missing) > 0 {
		switch {
		case problem != "":
		case update.IsEmpty():
			problem = "Sorry, I didn't catch that. "
		default:
			problem = "Got it. I still need the " + missingLabels(missing) + ". "
		}
		return problem + m.prompt(session)
	}

	if err := session.Advance(); err != nil {
		m.logger.Error("Failed to advance conversation", zap.String("id", session.ID), zap.Error(err))
		return m.prompt(session)
	}
	if session.Stage == StageReview {
		pricing := m.calc.CalculateQuote(session.QuoteRequest(m.defaults))
		session.Pricing = &pricing
	}
	return m.prompt(session)
}

func (m *Manager) review(session *Session, parsed Parsed) string {
	switch {
	case parsed.Confirm:
		if session.Pricing == nil {
			pricing := m.calc.CalculateQuote(session.QuoteRequest(m.defaults))
			session.Pricing = &pricing
		}
		if err := session.Advance(); err != nil {
			m.logger.Error("Failed to complete conversation", zap.String("id", session.ID), zap.Error(err))
			return m.prompt(session)
		}
		m.logger.Info("Completed conversation",
			zap.String("id", session.ID),
			zap.Float64("final_price", session.Pricing.FinalPrice),
		)
		return m.prompt(session)
	case parsed.Deny:
		return `No problem. Say "start over" to rebuild the quote, or "yes" when it looks right.`
	default:
		return m.prompt(session)
	}
}

// matchProduct finds a catalog product for the current paint category whose
// name appears in text. Longer names win.
func (m *Manager) matchProduct(session *Session, text string) *calculator.PaintProduct {
	category, ok := session.CurrentCategory()
	if !ok {
		return nil
	}
	lower := strings.ToLower(text)
	var best *calculator.PaintProduct
	for _, p := range m.catalog[category] {
		name := strings.ToLower(p.ProductName)
		if name == "" || !strings.Contains(lower, name) {
			continue
		}
		if best == nil || len(p.ProductName) > len(best.ProductName) {
			product := p
			best = &product
		}
	}
	return best
}

// assist asks the completion service for the current stage's fields. Any
// failure yields an empty update.
func (m *Manager) assist(ctx context.Context, session *Session, text string) Update {
	if m.assistant == nil || len(writable[session.Stage]) == 0 {
		return Update{}
	}

	fields := make([]string, 0, len(writable[session.Stage]))
	for _, f := range writable[session.Stage] {
		fields = append(fields, string(f))
	}
	system := fmt.Sprintf(
		"You extract fields for a painting quote. The conversation is at the %q step. "+
			"Reply with one JSON object using only these keys: %s. "+
			"Surfaces are any of walls, ceilings, trim. Project types are interior, exterior, both. "+
			"Paint quality is good, better, best or premium. Square footage and percentages are numbers. "+
			"Omit anything the customer did not say.",
		session.Stage, strings.Join(fields, ", "),
	)

	ctx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()

	content, err := m.assistant.Complete(ctx, []ai.Message{ai.SystemMessage(system), ai.UserMessage(text)})
	if err != nil {
		m.logger.Warn("Assistant extraction failed", zap.String("id", session.ID), zap.Error(err))
		return Update{}
	}

	update, err := decodeUpdate(content)
	if err != nil {
		m.logger.Warn("Assistant returned unusable fields", zap.String("id", session.ID), zap.Error(err))
		return Update{}
	}
	return update.restrict(session.Stage)
}

// decodeUpdate reads the first JSON object in content.
func decodeUpdate(content string) (Update, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return Update{}, errors.New("no JSON object in response")
	}
	var u Update
	if err := json.Unmarshal([]byte(content[start:end+1]), &u); err != nil {
		return Update{}, fmt.Errorf("failed to decode fields: %w", err)
	}
	return u, nil
}

func (m *Manager) say(session *Session, role, text string) {
	now := m.now()
	session.Messages = append(session.Messages, Message{Role: role, Content: text, At: now})
	session.UpdatedAt = now
}

func (m *Manager) reply(session *Session, text string) *Reply {
	return &Reply{
		Session:   session,
		Message:   text,
		Missing:   session.Missing(),
		Completed: session.Stage == StageComplete,
	}
}

func (m *Manager) prompt(session *Session) string {
	d := session.Draft
	switch session.Stage {
	case StageCustomerInfo:
		return "Let's put together a painting quote. Who is the customer? " +
			"A name is enough to start; an email, phone number and address help too."
	case StageProjectType:
		return fmt.Sprintf("Thanks, %s. Is this an interior job, exterior, or both?", d.Customer.Name)
	case StageSurfaceSelection:
		return "Which surfaces are we painting: walls, ceilings, trim, or everything? " +
			"Mention primer if the job needs it."
	case StageDimensions:
		names := make([]string, 0, len(d.Surfaces))
		for _, s := range d.Surfaces {
			names = append(names, string(s))
		}
		return fmt.Sprintf("How big is the job? Give me a total square footage, "+
			"or square feet for each surface (%s).", strings.Join(names, ", "))
	case StagePaintSelection:
		category, _ := session.CurrentCategory()
		text := fmt.Sprintf("What paint should we use for the %s? "+
			"Pick a quality (good, better, best, premium) or a price per gallon", categoryLabel(category))
		if names := m.productNames(category); len(names) > 0 {
			text += ", or choose one of: " + strings.Join(names, ", ")
		}
		return text + "."
	case StageMarkupSelection:
		return fmt.Sprintf("What markup should I apply? Your usual is %s%%.",
			trimFloat(m.defaults.MarkupPercentage))
	case StageReview:
		return m.summary(session) + " Does this look right?"
	default:
		if session.Pricing != nil {
			return fmt.Sprintf("The quote is finalized at %s.", export.FormatUSD(session.Pricing.FinalPrice))
		}
		return "The quote is finalized."
	}
}

func (m *Manager) summary(session *Session) string {
	d := session.Draft
	var b strings.Builder
	fmt.Fprintf(&b, "Here's the %s quote for %s:", d.ProjectType, d.Customer.Name)
	for _, s := range d.Surfaces {
		fmt.Fprintf(&b, " %s %s;", s, export.FormatSqft(d.sqft(s)))
	}
	if p := session.Pricing; p != nil {
		fmt.Fprintf(&b, " labor %s, materials %s, subtotal %s, markup (%s%%) %s, tax (%s%%) %s. Total %s.",
			export.FormatUSD(p.TotalLabor),
			export.FormatUSD(p.TotalMaterial),
			export.FormatUSD(p.Subtotal),
			trimFloat(p.MarkupPercentage), export.FormatUSD(p.MarkupAmount),
			trimFloat(p.TaxRate), export.FormatUSD(p.TaxAmount),
			export.FormatUSD(p.FinalPrice),
		)
	}
	return b.String()
}

func (m *Manager) productNames(category calculator.PaintCategory) []string {
	names := make([]string, 0, len(m.catalog[category]))
	for _, p := range m.catalog[category] {
		names = append(names, p.ProductName)
	}
	sort.Strings(names)
	return names
}

func missingLabels(missing []string) string {
	labels := make([]string, 0, len(missing))
	for _, f := range missing {
		switch Field(f) {
		case FieldWallsSqft:
			labels = append(labels, "walls square footage")
		case FieldCeilingsSqft:
			labels = append(labels, "ceilings square footage")
		case FieldTrimSqft:
			labels = append(labels, "trim square footage")
		case FieldMarkupPercentage:
			labels = append(labels, "markup percentage")
		case FieldProjectType:
			labels = append(labels, "project type")
		default:
			labels = append(labels, f)
		}
	}
	return strings.Join(labels, " and ")
}

func categoryLabel(c calculator.PaintCategory) string {
	switch c {
	case calculator.CategoryWall:
		return "walls"
	case calculator.CategoryCeiling:
		return "ceilings"
	default:
		return string(c)
	}
}

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
