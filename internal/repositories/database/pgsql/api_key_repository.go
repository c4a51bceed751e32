package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	"github.com/SscSPs/currency_converter/internal/models"
	"github.com/SscSPs/currency_converter/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAPIKeyRepository struct {
	BaseRepository
}

// newPgxAPIKeyRepository creates a new instance of PgxAPIKeyRepository
func newPgxAPIKeyRepository(pool *pgxpool.Pool) portsrepo.APIKeyRepository {
	return &PgxAPIKeyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.APIKeyRepository = (*PgxAPIKeyRepository)(nil)

const (
	selectAPIKeyFields = `id, key_hash, name, requests_per_hour, is_active, expires_at, created_at`

	findAPIKeyByHashQuery = `
		SELECT ` + selectAPIKeyFields + `
		FROM api_keys
		WHERE key_hash = $1
	`

	// Served by idx_api_key_usage_key_time.
	countUsageSinceQuery = `
		SELECT COUNT(*)
		FROM api_key_usage
		WHERE api_key_id = $1 AND request_time >= $2
	`

	insertUsageQuery = `
		INSERT INTO api_key_usage (api_key_id, request_time, ip_address, endpoint, status_code)
		VALUES ($1, $2, $3, $4, $5)
	`

	upsertAPIKeyQuery = `
		INSERT INTO api_keys (key_hash, name, requests_per_hour, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key_hash) DO UPDATE SET
			name = EXCLUDED.name,
			requests_per_hour = EXCLUDED.requests_per_hour,
			is_active = EXCLUDED.is_active,
			expires_at = EXCLUDED.expires_at
	`
)

// FindByHash finds a key by the digest of its plaintext.
func (r *PgxAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	var m models.APIKey
	err := r.Pool.QueryRow(ctx, findAPIKeyByHashQuery, keyHash).Scan(
		&m.ID, &m.KeyHash, &m.Name, &m.RequestsPerHour, &m.IsActive, &m.ExpiresAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find api key: %w", err)
	}
	d := mapping.ToDomainAPIKey(m)
	return &d, nil
}

// CountUsageSince counts usage rows of the key at or after since.
func (r *PgxAPIKeyRepository) CountUsageSince(ctx context.Context, apiKeyID int64, since time.Time) (int, error) {
	var count int
	if err := r.Pool.QueryRow(ctx, countUsageSinceQuery, apiKeyID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count api key usage: %w", err)
	}
	return count, nil
}

// InsertUsage appends a usage record.
func (r *PgxAPIKeyRepository) InsertUsage(ctx context.Context, usage domain.APIKeyUsage) error {
	m := mapping.ToModelAPIKeyUsage(usage)
	if _, err := r.Pool.Exec(ctx, insertUsageQuery, m.APIKeyID, m.RequestTime, m.IPAddress, m.Endpoint, m.StatusCode); err != nil {
		return fmt.Errorf("failed to insert api key usage: %w", err)
	}
	return nil
}

// SaveAPIKey inserts or updates a key by its hash.
func (r *PgxAPIKeyRepository) SaveAPIKey(ctx context.Context, key domain.APIKey) error {
	m := mapping.ToModelAPIKey(key)
	if _, err := r.Pool.Exec(ctx, upsertAPIKeyQuery, m.KeyHash, m.Name, m.RequestsPerHour, m.IsActive, m.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save api key %s: %w", m.Name, err)
	}
	return nil
}
