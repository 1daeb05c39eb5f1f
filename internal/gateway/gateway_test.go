package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/config"
	"github.com/paintquote/backend/internal/models"
)

func setupGateway(handlerURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Role: "gateway", HandlerURL: handlerURL}
	gw := NewGateway(cfg, zap.NewNop())

	engine := gin.New()
	engine.GET("/health", gw.HealthCheck)
	gw.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func TestProxy_ForwardsRequest(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody, gotType string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "abc123")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"q1"}}`))
	}))
	defer backend.Close()

	engine := setupGateway(backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes?status=draft", strings.NewReader(`{"totalSqft":1000}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, `{"data":{"id":"q1"}}`, w.Body.String())
	assert.Equal(t, "abc123", w.Header().Get("X-Request-Id"))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/quotes", gotPath)
	assert.Equal(t, "status=draft", gotQuery)
	assert.Equal(t, `{"totalSqft":1000}`, gotBody)
	assert.Equal(t, "application/json", gotType)
}

func TestProxy_NestedPaths(t *testing.T) {
	var paths []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3"))
	}))
	defer backend.Close()

	engine := setupGateway(backend.URL)

	for _, path := range []string{
		"/api/v1/quotes/q1/export/pdf",
		"/api/v1/conversations",
		"/api/v1/conversations/c1/messages",
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	assert.Equal(t, []string{
		"/api/v1/quotes/q1/export/pdf",
		"/api/v1/conversations",
		"/api/v1/conversations/c1/messages",
	}, paths)
}

func TestProxy_PassesThroughErrors(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"quote not found"}`))
	}))
	defer backend.Close()

	engine := setupGateway(backend.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "not_found", response.Error)
}

func TestProxy_HandlerUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := backend.URL
	backend.Close()

	engine := setupGateway(url)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "service_unavailable", response.Error)
}

func TestProxy_InvalidHandlerURL(t *testing.T) {
	engine := setupGateway("::not a url")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestProxy_UnknownRouteNotForwarded(t *testing.T) {
	called := false
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer backend.Close()

	engine := setupGateway(backend.URL)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, called)
}

func TestHealthCheck(t *testing.T) {
	engine := setupGateway("http://localhost:1")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "gateway", body["role"])
	assert.Equal(t, ServiceName, body["service"])
}
