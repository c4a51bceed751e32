package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	"github.com/SscSPs/currency_converter/internal/models"
	"github.com/SscSPs/currency_converter/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

const selectCurrencyFields = `code, name, symbol, is_active, created_at`

// SaveCurrency inserts or updates a currency (primarily for initial setup).
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)
	m.Code = domain.NormalizeCode(m.Code)

	query := `
		INSERT INTO currencies (code, name, symbol, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			is_active = EXCLUDED.is_active;
	`
	if _, err := r.Pool.Exec(ctx, query, m.Code, m.Name, m.Symbol, m.IsActive); err != nil {
		return fmt.Errorf("failed to save currency %s: %w", m.Code, err)
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + selectCurrencyFields + ` FROM currencies WHERE code = $1;`

	var m models.Currency
	err := r.Pool.QueryRow(ctx, query, domain.NormalizeCode(currencyCode)).Scan(
		&m.Code, &m.Name, &m.Symbol, &m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find currency by code %s: %w", currencyCode, err)
	}

	d := mapping.ToDomainCurrency(m)
	return &d, nil
}

// CurrencyExists reports whether an active currency with the code exists.
func (r *PgxCurrencyRepository) CurrencyExists(ctx context.Context, currencyCode string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM currencies WHERE code = $1 AND is_active);`,
		domain.NormalizeCode(currencyCode),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check currency %s: %w", currencyCode, err)
	}
	return exists, nil
}

// ListCurrencies retrieves currencies ordered by code.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	query := `
		SELECT ` + selectCurrencyFields + `
		FROM currencies
		WHERE ($1 = FALSE OR is_active)
		ORDER BY code;
	`
	rows, err := r.Pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		var c models.Currency
		err := row.Scan(&c.Code, &c.Name, &c.Symbol, &c.IsActive, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(ms), nil
}
