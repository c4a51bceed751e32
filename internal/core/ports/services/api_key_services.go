package services

import (
	"context"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
)

// APIKeySvc gates inbound requests on API keys and their hourly quota
type APIKeySvc interface {
	// IsValid reports whether the key exists, is active and has not expired.
	IsValid(ctx context.Context, key string) (bool, error)

	// CheckQuota reports whether the key has made fewer requests than its
	// hourly quota over the trailing hour.
	CheckQuota(ctx context.Context, key, ip string) (bool, error)

	// RecordUsage appends a usage record. Failures are logged, never returned.
	RecordUsage(ctx context.Context, key, ip, endpoint string, statusCode int)

	// Admit resolves the key once and, when it is usable and under quota,
	// reserves a slot until RecordKeyUsage is called with the returned key.
	// The key is nil unless the key exists.
	Admit(ctx context.Context, key, ip string) (*domain.APIKey, domain.Admission, error)

	// RecordKeyUsage is RecordUsage for a key already resolved by Admit.
	// It also releases the slot Admit reserved.
	RecordKeyUsage(ctx context.Context, apiKey *domain.APIKey, ip, endpoint string, statusCode int)
}

// APIKeyIssuerSvc creates new API keys
type APIKeyIssuerSvc interface {
	// IssueAPIKey returns the plaintext of a newly stored key.
	IssueAPIKey(ctx context.Context, name string, requestsPerHour int, expiresAt *time.Time) (string, error)
}
