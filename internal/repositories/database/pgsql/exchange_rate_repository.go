package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	"github.com/SscSPs/currency_converter/internal/models"
	"github.com/SscSPs/currency_converter/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository is the Rate Store backed by PostgreSQL.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryWithTx {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryWithTx = (*PgxExchangeRateRepository)(nil)

const (
	selectRateFields = `
		id, base_currency_code, target_currency_code, rate, date,
		is_historical, created_at, updated_at
	`

	findCurrentRateQuery = `
		SELECT ` + selectRateFields + `
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND is_historical = FALSE
		ORDER BY date DESC
		LIMIT 1;
	`

	findDatedRateQuery = `
		SELECT ` + selectRateFields + `
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date = $3;
	`

	findRateRangeQuery = `
		SELECT ` + selectRateFields + `
		FROM exchange_rates
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date BETWEEN $3 AND $4
		ORDER BY date;
	`

	findLatestPerTargetQuery = `
		SELECT DISTINCT ON (target_currency_code) ` + selectRateFields + `
		FROM exchange_rates
		WHERE base_currency_code = $1
		ORDER BY target_currency_code, date DESC, created_at DESC;
	`

	insertRateQuery = `
		INSERT INTO exchange_rates (base_currency_code, target_currency_code, rate, date, is_historical, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (base_currency_code, target_currency_code, date) DO NOTHING
		RETURNING ` + selectRateFields

	updateRateQuery = `
		UPDATE exchange_rates
		SET rate = $4, is_historical = $5, updated_at = $6
		WHERE base_currency_code = $1 AND target_currency_code = $2 AND date = $3;
	`
)

func scanRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ID, &m.BaseCurrencyCode, &m.TargetCurrencyCode, &m.Rate, &m.Date,
		&m.IsHistorical, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// GetRate returns the current rate when date is nil, otherwise the row for that day.
func (r *PgxExchangeRateRepository) GetRate(ctx context.Context, base, target string, date *time.Time) (*domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)

	var row pgx.Row
	if date == nil {
		row = r.Pool.QueryRow(ctx, findCurrentRateQuery, base, target)
	} else {
		row = r.Pool.QueryRow(ctx, findDatedRateQuery, base, target, domain.DateOnly(*date))
	}

	m, err := scanRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	d := mapping.ToDomainExchangeRate(m)
	return &d, nil
}

// GetRange returns the rows for the pair between start and end inclusive, ordered by date.
func (r *PgxExchangeRateRepository) GetRange(ctx context.Context, base, target string, start, end time.Time) ([]domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx, findRateRangeQuery,
		domain.NormalizeCode(base), domain.NormalizeCode(target), domain.DateOnly(start), domain.DateOnly(end))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rate range", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanRate(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan exchange rates", err)
	}
	return mapping.ToDomainExchangeRateSlice(ms), nil
}

// GetLatestPerTarget returns the newest row of every target quoted against base.
func (r *PgxExchangeRateRepository) GetLatestPerTarget(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx, findLatestPerTargetQuery, domain.NormalizeCode(base))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query latest exchange rates", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanRate(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan exchange rates", err)
	}
	return mapping.ToDomainExchangeRateSlice(ms), nil
}

// InsertMany inserts the batch in one transaction. Rows whose (base, target, date)
// already exists are skipped and not returned.
func (r *PgxExchangeRateRepository) InsertMany(ctx context.Context, rates []domain.ExchangeRate) ([]domain.ExchangeRate, error) {
	if len(rates) == 0 {
		return nil, nil
	}
	for _, rate := range rates {
		if err := rate.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	inserted := make([]domain.ExchangeRate, 0, len(rates))
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		now := time.Now().UTC()
		for _, rate := range rates {
			m := mapping.ToModelExchangeRate(rate)
			createdAt := m.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			batch.Queue(insertRateQuery, m.BaseCurrencyCode, m.TargetCurrencyCode, m.Rate, m.Date, m.IsHistorical, createdAt)
		}

		results := tx.SendBatch(ctx, batch)
		for range rates {
			m, err := scanRate(results.QueryRow())
			if errors.Is(err, pgx.ErrNoRows) {
				// conflict on (base, target, date), row already stored
				continue
			}
			if err != nil {
				_ = results.Close()
				return apperrors.NewAppError(500, "failed to insert exchange rate", err)
			}
			inserted = append(inserted, mapping.ToDomainExchangeRate(m))
		}
		if err := results.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert exchange rates", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// Update changes the rate of the row identified by (base, target, date).
func (r *PgxExchangeRateRepository) Update(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	if err := rate.Validate(); err != nil {
		return false, apperrors.NewValidationError(err.Error())
	}
	m := mapping.ToModelExchangeRate(rate)

	tag, err := r.Pool.Exec(ctx, updateRateQuery, updateRateArgs(m, time.Now())...)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to update exchange rate", err)
	}
	return tag.RowsAffected() > 0, nil
}

// updateRateArgs binds updateRateQuery. updated_at is always the write time;
// a stamp carried on the model from an earlier read is ignored.
func updateRateArgs(m models.ExchangeRate, now time.Time) []any {
	return []any{m.BaseCurrencyCode, m.TargetCurrencyCode, m.Date, m.Rate, m.IsHistorical, now.UTC()}
}
