package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/paintquote/backend/internal/calculator"
	"github.com/paintquote/backend/internal/config"
	"github.com/paintquote/backend/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository creates a new PostgreSQL repository.
func NewPostgresRepository(cfg *config.Config, logger *zap.Logger) (Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &PostgresRepository{
		pool:   pool,
		logger: logger,
	}

	if err := repo.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Connected to PostgreSQL database")
	return repo, nil
}

// migrate creates the necessary database tables if they don't exist.
func (r *PostgresRepository) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS quotes (
			id UUID PRIMARY KEY,
			status VARCHAR(16) NOT NULL DEFAULT 'draft',
			creation_method VARCHAR(16) NOT NULL DEFAULT 'form',
			customer JSONB NOT NULL,
			project_type VARCHAR(16) NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			inputs JSONB NOT NULL,
			pricing JSONB NOT NULL,
			final_price NUMERIC(12, 2) NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_quotes_created_at ON quotes(created_at);
		CREATE INDEX IF NOT EXISTS idx_quotes_status ON quotes(status);
	`

	_, err := r.pool.Exec(ctx, query)
	return err
}

const pgQuoteColumns = `id, status, creation_method, customer, project_type, notes, inputs, pricing, created_at, updated_at`

func scanPgQuote(row pgx.Row) (*models.Quote, error) {
	var quote models.Quote
	err := row.Scan(
		&quote.ID,
		&quote.Status,
		&quote.CreationMethod,
		&quote.Customer,
		&quote.ProjectType,
		&quote.Notes,
		&quote.Inputs,
		&quote.Pricing,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create stores a new quote.
func (r *PostgresRepository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	q := prepare(quote, time.Now().UTC())

	query := `
		INSERT INTO quotes (` + pgQuoteColumns + `, final_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		q.ID,
		q.Status,
		q.CreationMethod,
		q.Customer,
		q.ProjectType,
		q.Notes,
		q.Inputs,
		q.Pricing,
		q.CreatedAt,
		q.UpdatedAt,
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
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Quote, error) {
	if !isQuoteID(id) {
		return nil, nil
	}

	query := `SELECT ` + pgQuoteColumns + ` FROM quotes WHERE id = $1`

	quote, err := scanPgQuote(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return quote, nil
}

// GetAll retrieves quotes, optionally filtered by status.
func (r *PostgresRepository) GetAll(ctx context.Context, status models.QuoteStatus) ([]models.Quote, error) {
	query := `
		SELECT ` + pgQuoteColumns + `
		FROM quotes
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		r.logger.Error("Failed to get quotes", zap.Error(err))
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		quote, err := scanPgQuote(rows)
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
func (r *PostgresRepository) Update(ctx context.Context, id string, req *models.UpdateQuoteRequest) (*models.Quote, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	applyUpdate(existing, req, time.Now().UTC())

	query := `
		UPDATE quotes
		SET status = $2, customer = $3, notes = $4, updated_at = $5
		WHERE id = $1
	`

	_, err = r.pool.Exec(ctx, query,
		existing.ID,
		existing.Status,
		existing.Customer,
		existing.Notes,
		existing.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update quote", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	r.logger.Info("Updated quote", zap.String("id", id))
	return existing, nil
}

// UpdatePricing stores recalculated inputs and pricing.
func (r *PostgresRepository) UpdatePricing(ctx context.Context, id string, inputs calculator.QuoteRequest, pricing calculator.PricingDetails) (*models.Quote, error) {
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

	query := `
		UPDATE quotes
		SET inputs = $2, pricing = $3, final_price = $4, updated_at = $5
		WHERE id = $1
	`

	_, err = r.pool.Exec(ctx, query,
		existing.ID,
		existing.Inputs,
		existing.Pricing,
		existing.Pricing.FinalPrice,
		existing.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update quote pricing", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update quote pricing: %w", err)
	}

	r.logger.Info("Recalculated quote", zap.String("id", id), zap.Float64("final_price", pricing.FinalPrice))
	return existing, nil
}

// Delete removes a quote by its ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !isQuoteID(id) {
		return ErrNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete quote", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.logger.Info("Deleted quote", zap.String("id", id))
	return nil
}

// Close closes the database connection pool.
func (r *PostgresRepository) Close() {
	r.pool.Close()
	r.logger.Info("Closed database connection")
}
