// Package database provides quote persistence on PostgreSQL or SQLite.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/config"
	"github.com/paintquote/backend/internal/models"
)

// ErrNotFound is returned when deleting a quote that does not exist.
var ErrNotFound = errors.New("quote not found")

// Repository defines the interface for quote data operations.
type Repository interface {
	// Create stores a new quote. ID, status and timestamps are filled in
	// when empty.
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)

	// GetByID retrieves a quote by its ID. Missing quotes return nil, nil.
	GetByID(ctx context.Context, id string) (*models.Quote, error)

	// GetAll retrieves quotes, newest first. A non-empty status filters by it.
	GetAll(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error)

	// Update applies metadata changes. Missing quotes return nil, nil.
	Update(ctx context.Context, id string, req *models.UpdateQuoteRequest) (*models.Quote, error)

	// UpdatePricing replaces the calculation inputs and pricing snapshot.
	// Missing quotes return nil, nil.
	UpdatePricing(ctx context.Context, id string, inputs calculator.QuoteRequest, pricing calculator.PricingDetails) (*models.Quote, error)

	// Delete removes a quote by its ID.
	Delete(ctx context.Context, id string) error

	// Close closes the database connection.
	Close()
}

// NewRepository opens the store named by the configured DATABASE_URL:
// postgres:// and postgresql:// use PostgreSQL, sqlite:// and file: use SQLite.
func NewRepository(cfg *config.Config, logger *zap.Logger) (Repository, error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "postgres://"), strings.HasPrefix(cfg.DatabaseURL, "postgresql://"):
		return NewPostgresRepository(cfg, logger)
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite:"), strings.HasPrefix(cfg.DatabaseURL, "file:"):
		repo, err := NewSQLiteRepository(sqlitePath(cfg.DatabaseURL), logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported database URL scheme: %q", scheme(cfg.DatabaseURL))
	}
}

// sqlitePath turns sqlite:///var/data/quotes.db or sqlite:quotes.db into a
// driver path. file: URIs are passed through.
func sqlitePath(url string) string {
	if strings.HasPrefix(url, "file:") {
		return url
	}
	path := strings.TrimPrefix(url, "sqlite:")
	return strings.TrimPrefix(path, "//")
}

func scheme(url string) string {
	if i := strings.Index(url, ":"); i >= 0 {
		return url[:i]
	}
	return url
}

// isQuoteID reports whether id can name a stored quote. Postgres rejects
// malformed values for a uuid column instead of matching nothing.
func isQuoteID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// prepare fills in identity and audit fields for a new quote.
func prepare(quote *models.Quote, now time.Time) *models.Quote {
	q := *quote
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.Status == "" {
		q.Status = models.StatusDraft
	}
	if q.CreationMethod == "" {
		q.CreationMethod = models.MethodForm
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	return &q
}

// applyUpdate merges metadata changes into existing.
func applyUpdate(existing *models.Quote, req *models.UpdateQuoteRequest, now time.Time) {
	if req.Status != nil {
		existing.Status = *req.Status
	}
	if req.Customer != nil {
		existing.Customer = *req.Customer
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}
	existing.UpdatedAt = now
}
