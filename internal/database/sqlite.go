package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/models"
)

// SQLiteRepository implements Repository on an embedded SQLite file.
// JSON columns are stored as TEXT and timestamps as fixed-width RFC 3339 strings.
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository opens (or creates) the database at path.
func NewSQLiteRepository(path string, logger *zap.Logger) (*SQLiteRepository, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	repo := &SQLiteRepository{db: db, logger: logger}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Opened SQLite database", zap.String("path", path))
	return repo, nil
}

func (r *SQLiteRepository) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL DEFAULT 'draft',
			creation_method TEXT NOT NULL DEFAULT 'form',
			customer TEXT NOT NULL,
			project_type TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			inputs TEXT NOT NULL,
			pricing TEXT NOT NULL,
			final_price REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_quotes_created_at ON quotes(created_at);
		CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes(status);
	`)
	return err
}

const sqliteQuoteColumns = `id, status, creation_method, customer, project_type, notes, inputs, pricing, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteQuote(row rowScanner) (*models.Quote, error) {
	var (
		quote                     models.Quote
		customer, inputs, pricing string
		createdAt, updatedAt      string
	)
	err := row.Scan(
		&quote.ID,
		&quote.Status,
		&quote.CreationMethod,
		&customer,
		&quote.ProjectType,
		&quote.Notes,
		&inputs,
		&pricing,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(customer), &quote.Customer); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	if err := json.Unmarshal([]byte(inputs), &quote.Inputs); err != nil {
		return nil, fmt.Errorf("failed to decode inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(pricing), &quote.Pricing); err != nil {
		return nil, fmt.Errorf("failed to decode pricing: %w", err)
	}
	if quote.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if quote.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &quote, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// Create stores a new quote.
func (r *SQLiteRepository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	q := prepare(quote, time.Now().UTC())

	customer, err := encodeJSON(q.Customer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode customer: %w", err)
	}
	inputs, err := encodeJSON(q.Inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}
	pricing, err := encodeJSON(q.Pricing)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pricing: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO quotes (`+sqliteQuoteColumns+`, final_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID,
		string(q.Status),
		string(q.CreationMethod),
		customer,
		string(q.ProjectType),
		q.Notes,
		inputs,
		pricing,
		formatTime(q.CreatedAt),
		formatTime(q.UpdatedAt),
		q.Pricing.FinalPrice,
	)
	if err != nil {
		r.logger.Error("Failed to create quote", zap.Error(err))
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	r.logger.Info("Created quote", zap.String("id", q.ID), zap.Float64("final_price", q.Pricing.FinalPrice))
	return q, nil
}

// GetByID retrieves a quote by its ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sqliteQuoteColumns+` FROM quotes WHERE id = ?`, id)

	quote, err := scanSQLiteQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// GetAll retrieves quotes, optionally filtered by status.
func (r *SQLiteRepository) GetAll(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sqliteQuoteColumns+`
		FROM quotes
		WHERE (? = '' OR status = ?)
		ORDER BY created_at DESC, id`,
		string(status), string(status),
	)
	if err != nil {
		r.logger.Error("Failed to get quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		quote, err := scanSQLiteQuote(rows)
		if err != nil {
			r.logger.Error("Failed to scan quote row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}
	return quotes, nil
}

// Update applies metadata changes to an existing quote.
func (r *SQLiteRepository) Update(ctx context.Context, id string, req *models.UpdateQuoteRequest) (*models.Quote, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	applyUpdate(existing, req, time.Now().UTC())

	customer, err := encodeJSON(existing.Customer)
	if err != nil {
		return nil, fmt.Errorf("failed to encode customer: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE quotes
		SET status = ?, customer = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		string(existing.Status),
		customer,
		existing.Notes,
		formatTime(existing.UpdatedAt),
		existing.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update quote", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	r.logger.Info("Updated quote", zap.String("id", id))
	return existing, nil
}

// UpdatePricing stores recalculated inputs and pricing.
func (r *SQLiteRepository) UpdatePricing(ctx context.Context, id string, inputs calculator.QuoteRequest, pricing calculator.PricingDetails) (*models.Quote, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	existing.Inputs = inputs
	existing.Pricing = pricing
	existing.UpdatedAt = time.Now().UTC()

	inputsJSON, err := encodeJSON(inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inputs: %w", err)
	}
	pricingJSON, err := encodeJSON(pricing)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pricing: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE quotes
		SET inputs = ?, pricing = ?, final_price = ?, updated_at = ?
		WHERE id = ?`,
		inputsJSON,
		pricingJSON,
		pricing.FinalPrice,
		formatTime(existing.UpdatedAt),
		existing.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update quote pricing", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update quote pricing: %w", err)
	}

	r.logger.Info("Recalculated quote", zap.String("id", id), zap.Float64("final_price", pricing.FinalPrice))
	return existing, nil
}

// Delete removes a quote by its ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete quote", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	r.logger.Info("Deleted quote", zap.String("id", id))
	return nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() {
	if err := r.db.Close(); err != nil {
		r.logger.Warn("Failed to close database", zap.Error(err))
		return
	}
	r.logger.Info("Closed database connection")
}
