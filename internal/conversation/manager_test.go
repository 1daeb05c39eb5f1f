package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/ai"
	"github.com/paintquote/backend/internal/calculator"
)

// MockCompleter is a mock implementation of ai.Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

var testDefaults = calculator.CompanyDefaults{
	WallsRate:        3,
	CeilingsRate:     2,
	TrimRate:         5,
	MarkupPercentage: 20,
	TaxRate:          8,
}

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore(0)
	catalog := map[calculator.PaintCategory][]calculator.PaintProduct{
		calculator.CategoryWall: {
			{Supplier: "Sherwin-Williams", ProductName: "ProMar 200", CostPerGallon: 42},
			{Supplier: "Sherwin-Williams", ProductName: "ProMar 200 Zero VOC", CostPerGallon: 48},
		},
	}
	return NewManager(calculator.New(), store, testDefaults, catalog, zap.NewNop()), store
}

func send(t *testing.T, m *Manager, id, text string) *Reply {
	t.Helper()
	reply, err := m.HandleMessage(context.Background(), id, text)
	require.NoError(t, err, "message %q", text)
	return reply
}

func TestManager_FullConversation(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.Session.ID
	assert.NotEmpty(t, id)
	assert.Equal(t, StageCustomerInfo, start.Session.Stage)
	assert.Equal(t, []string{"name"}, start.Missing)
	assert.NotEmpty(t, start.Message)

	reply := send(t, m, id, "I'm Jane Doe, jane@example.com")
	assert.Equal(t, StageProjectType, reply.Session.Stage)
	assert.Contains(t, reply.Message, "Jane Doe")

	reply = send(t, m, id, "interior")
	assert.Equal(t, StageSurfaceSelection, reply.Session.Stage)

	reply = send(t, m, id, "walls and ceilings")
	assert.Equal(t, StageDimensions, reply.Session.Stage)

	reply = send(t, m, id, "about 1000 square feet")
	assert.Equal(t, StagePaintSelection, reply.Session.Stage)
	assert.Equal(t, 2500.0, reply.Session.Draft.Measurements.TotalWallsSqft)
	assert.Contains(t, reply.Message, "ProMar 200")

	reply = send(t, m, id, "ProMar 200 please")
	assert.Equal(t, StagePaintSelection, reply.Session.Stage)
	category, _ := reply.Session.CurrentCategory()
	assert.Equal(t, calculator.CategoryCeiling, category)
	require.NotNil(t, reply.Session.Draft.Products.Walls)
	assert.Equal(t, 42.0, reply.Session.Draft.Products.Walls.CostPerGallon)

	reply = send(t, m, id, "better")
	assert.Equal(t, StageMarkupSelection, reply.Session.Stage)
	assert.Contains(t, reply.Message, "20%")

	reply = send(t, m, id, "20%")
	assert.Equal(t, StageReview, reply.Session.Stage)
	require.NotNil(t, reply.Session.Pricing)
	assert.InDelta(t, 12973.89, reply.Session.Pricing.FinalPrice, 0.001)
	assert.Contains(t, reply.Message, "$12,973.89")

	reply = send(t, m, id, "yes")
	assert.True(t, reply.Completed)
	assert.Equal(t, StageComplete, reply.Session.Stage)

	_, err = m.HandleMessage(ctx, id, "one more thing")
	assert.ErrorIs(t, err, ErrFlowComplete)

	stored, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, StageComplete, stored.Stage)
	assert.Len(t, stored.Messages, 17, "greeting plus eight exchanges")
}

func TestManager_QualityPerSurface(t *testing.T) {
	m, _ := newTestManager()
	start, err := m.Start(context.Background())
	require.NoError(t, err)
	id := start.Session.ID

	for _, text := range []string{"Jane Doe", "interior", "walls and trim", "1000 sq ft", "premium", "good"} {
		send(t, m, id, text)
	}
	reply := send(t, m, id, "20%")

	require.Equal(t, StageReview, reply.Session.Stage)
	require.NotNil(t, reply.Session.Pricing)
	// 2500 walls sqft is 8 gallons at premium, 500 trim sqft is 2 gallons at good.
	assert.Equal(t, 600.0, reply.Session.Pricing.WallsMaterial)
	assert.Equal(t, 80.0, reply.Session.Pricing.TrimMaterial)

	want := calculator.New().CalculateQuote(reply.Session.QuoteRequest(testDefaults))
	assert.Equal(t, want, *reply.Session.Pricing)
}

func TestManager_ReviewPricingMatchesCalculator(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	s := sessionAt(t, StageMarkupSelection)
	require.NoError(t, store.Save(ctx, s))

	reply := send(t, m, s.ID, "25 percent")

	require.NotNil(t, reply.Session.Pricing)
	want := calculator.New().CalculateQuote(reply.Session.QuoteRequest(testDefaults))
	assert.Equal(t, want, *reply.Session.Pricing)
	assert.Equal(t, 25.0, reply.Session.Pricing.MarkupPercentage)
}

func TestManager_PartialAnswerKeepsStage(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	s := sessionAt(t, StageDimensions)
	require.NoError(t, store.Save(ctx, s))

	reply := send(t, m, s.ID, "walls are 1200")

	assert.Equal(t, StageDimensions, reply.Session.Stage)
	assert.Equal(t, []string{"ceilingsSqft"}, reply.Missing)
	assert.Contains(t, reply.Message, "ceilings square footage")
}

func TestManager_UnparseableMessageReprompts(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	start, err := m.Start(ctx)
	require.NoError(t, err)
	send(t, m, start.Session.ID, "Jane")

	reply := send(t, m, start.Session.ID, "hmm, let me think")

	assert.Equal(t, StageProjectType, reply.Session.Stage)
	assert.Contains(t, reply.Message, "didn't catch")
}

func TestManager_RestartByMessage(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	s := sessionAt(t, StageReview)
	require.NoError(t, store.Save(ctx, s))

	reply := send(t, m, s.ID, "actually, start over")

	assert.Equal(t, StageCustomerInfo, reply.Session.Stage)
	assert.Empty(t, reply.Session.Draft.Customer.Name)
	assert.Contains(t, reply.Message, "start over")
}

func TestManager_ReviewDeny(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	s := sessionAt(t, StageReview)
	require.NoError(t, store.Save(ctx, s))

	reply := send(t, m, s.ID, "no")

	assert.Equal(t, StageReview, reply.Session.Stage)
	assert.False(t, reply.Completed)
}

func TestManager_Restart(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()
	s := sessionAt(t, StagePaintSelection)
	require.NoError(t, store.Save(ctx, s))

	reply, err := m.Restart(ctx, s.ID)

	require.NoError(t, err)
	assert.Equal(t, StageCustomerInfo, reply.Session.Stage)

	_, err = m.Restart(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Errors(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.HandleMessage(ctx, "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	start, err := m.Start(ctx)
	require.NoError(t, err)
	_, err = m.HandleMessage(ctx, start.Session.ID, "   ")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestManager_DeleteAndAttachQuote(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	start, err := m.Start(ctx)
	require.NoError(t, err)
	id := start.Session.ID

	session, err := m.AttachQuote(ctx, id, "quote-1")
	require.NoError(t, err)
	assert.Equal(t, "quote-1", session.QuoteID)

	got, err := m.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "quote-1", got.QuoteID)

	require.NoError(t, m.Delete(ctx, id))
	assert.ErrorIs(t, m.Delete(ctx, id), ErrSessionNotFound)
	_, err = m.AttachQuote(ctx, id, "quote-2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_AssistantFillsUnparsedFields(t *testing.T) {
	m, store := newTestManager()
	completer := new(MockCompleter)
	m.WithAssistant(completer)
	ctx := context.Background()
	s := sessionAt(t, StageProjectType)
	require.NoError(t, store.Save(ctx, s))

	completer.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []ai.Message) bool {
		return len(msgs) == 2 && msgs[1].Content == "we're redoing the kitchen"
	})).Return("Sure:\n```json\n{\"projectType\": \"interior\", \"name\": \"Ignored\"}\n```", nil)

	reply := send(t, m, s.ID, "we're redoing the kitchen")

	assert.Equal(t, StageSurfaceSelection, reply.Session.Stage)
	assert.Equal(t, calculator.ProjectInterior, reply.Session.Draft.ProjectType)
	assert.Equal(t, "Jane Doe", reply.Session.Draft.Customer.Name)
	completer.AssertExpectations(t)
}

func TestManager_AssistantFailureFallsBack(t *testing.T) {
	m, store := newTestManager()
	completer := new(MockCompleter)
	m.WithAssistant(completer)
	ctx := context.Background()
	s := sessionAt(t, StageProjectType)
	require.NoError(t, store.Save(ctx, s))

	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("upstream down"))

	reply := send(t, m, s.ID, "we're redoing the kitchen")

	assert.Equal(t, StageProjectType, reply.Session.Stage)
	assert.Contains(t, reply.Message, "didn't catch")
	completer.AssertExpectations(t)
}

func TestManager_AssistantNotCalledWhenParserSucceeds(t *testing.T) {
	m, store := newTestManager()
	completer := new(MockCompleter)
	m.WithAssistant(completer)
	ctx := context.Background()
	s := sessionAt(t, StageProjectType)
	require.NoError(t, store.Save(ctx, s))

	send(t, m, s.ID, "exterior")

	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestDecodeUpdate(t *testing.T) {
	u, err := decodeUpdate(`{"wallsSqft": 1200, "surfaces": ["walls"]}`)
	require.NoError(t, err)
	require.NotNil(t, u.WallsSqft)
	assert.Equal(t, 1200.0, *u.WallsSqft)
	assert.Equal(t, []Surface{SurfaceWalls}, u.Surfaces)

	_, err = decodeUpdate("no idea")
	assert.Error(t, err)
}
