package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
)

// APIKeyRepository defines data access for API keys and their usage log
type APIKeyRepository interface {
	// FindByHash finds a key by the sha256 digest of its plaintext.
	// Returns apperrors.ErrNotFound when unknown.
	FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error)

	// CountUsageSince counts usage records for the key with request_time >= since.
	CountUsageSince(ctx context.Context, apiKeyID int64, since time.Time) (int, error)

	// InsertUsage appends a usage record.
	InsertUsage(ctx context.Context, usage domain.APIKeyUsage) error

	// SaveAPIKey inserts or updates a key (bootstrap only).
	SaveAPIKey(ctx context.Context, key domain.APIKey) error
}
