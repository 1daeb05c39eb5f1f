package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/conversation"
	"github.com/paintquote/backend/internal/models"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func testQuote(id string) *models.Quote {
	return &models.Quote{
		ID:             id,
		Status:         models.StatusDraft,
		CreationMethod: models.MethodQuick,
		Customer:       models.Customer{Name: "Jane Doe"},
		ProjectType:    calculator.ProjectInterior,
		Pricing:        calculator.PricingDetails{FinalPrice: 16408.4},
		CreatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, zap.NewNop())
	ctx := context.Background()

	got, err := c.Get(ctx, "q-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, testQuote("q-1")))

	got, err = c.Get(ctx, "q-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testQuote("q-1"), got)
	assert.Equal(t, defaultTTL, mr.TTL(quoteKeyPrefix+"q-1"))
}

func TestRedisCache_ListInvalidation(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, zap.NewNop())
	ctx := context.Background()

	_, found, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetAll(ctx, []models.Quote{*testQuote("q-1"), *testQuote("q-2")}))
	quotes, found, err := c.GetAll(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, quotes, 2)

	require.NoError(t, c.Set(ctx, testQuote("q-3")))
	assert.False(t, mr.Exists(allQuotesKey), "writing a quote drops the list")

	require.NoError(t, c.SetAll(ctx, []models.Quote{*testQuote("q-1")}))
	require.NoError(t, c.Delete(ctx, "q-3"))
	assert.False(t, mr.Exists(allQuotesKey))
	assert.False(t, mr.Exists(quoteKeyPrefix+"q-3"))
}

func TestRedisCache_SharesClientWithSessionStore(t *testing.T) {
	_, client := newTestRedis(t)
	var quotes Cache = NewRedisCache(client, zap.NewNop())
	sessions := NewSessionStore(client, time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, quotes.Set(ctx, testQuote("q-1")))
	require.NoError(t, quotes.Delete(ctx, "q-1"))
	require.NoError(t, sessions.Save(ctx, conversation.NewSession("s-1", time.Now())))

	got, err := sessions.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.NoError(t, client.Ping(ctx).Err(), "client stays open for its owner to close")
}

func TestRedisCache_CorruptEntryIsMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, zap.NewNop())
	require.NoError(t, mr.Set(quoteKeyPrefix+"bad", "{not json"))
	require.NoError(t, mr.Set(allQuotesKey, "[oops"))

	got, err := c.Get(context.Background(), "bad")
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, found, err := c.GetAll(context.Background())
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_ConnectionErrorIsMiss(t *testing.T) {
	mr, client := newTestRedis(t)
	c := NewRedisCache(client, zap.NewNop())
	mr.Close()

	got, err := c.Get(context.Background(), "q-1")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_RoundTripAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client, 30*time.Minute, zap.NewNop())
	ctx := context.Background()

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := conversation.NewSession("s-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	session.Draft.Customer.Name = "Jane Doe"
	session.Stage = conversation.StageProjectType
	require.NoError(t, store.Save(ctx, session))
	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKeyPrefix+"s-1"))

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conversation.StageProjectType, got.Stage)
	assert.Equal(t, "Jane Doe", got.Draft.Customer.Name)

	mr.FastForward(31 * time.Minute)
	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got, "idle sessions expire")
}

func TestSessionStore_Delete(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewSessionStore(client, time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conversation.NewSession("s-1", time.Now())))
	require.NoError(t, store.Delete(ctx, "s-1"))

	got, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_BacksConversationManager(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewSessionStore(client, time.Hour, zap.NewNop())
	m := conversation.NewManager(calculator.New(), store, calculator.CompanyDefaults{MarkupPercentage: 20}, nil, zap.NewNop())
	ctx := context.Background()

	start, err := m.Start(ctx)
	require.NoError(t, err)

	reply, err := m.HandleMessage(ctx, start.Session.ID, "My name is Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, conversation.StageProjectType, reply.Session.Stage)

	loaded, err := m.Get(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", loaded.Draft.Customer.Name)
	assert.Len(t, loaded.Messages, 3)
}
