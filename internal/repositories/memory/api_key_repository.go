package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
)

// APIKeyRepository keeps API keys and their usage log in process memory.
// Usage records are never dropped and are kept per key ordered by request time.
type APIKeyRepository struct {
	mu     sync.RWMutex
	byHash map[string]domain.APIKey
	usage  map[int64][]domain.APIKeyUsage
	nextID int64
}

var _ portsrepo.APIKeyRepository = (*APIKeyRepository)(nil)

func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{
		byHash: make(map[string]domain.APIKey),
		usage:  make(map[int64][]domain.APIKeyUsage),
	}
}

func (r *APIKeyRepository) FindByHash(_ context.Context, keyHash string) (*domain.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byHash[keyHash]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &k, nil
}

func (r *APIKeyRepository) CountUsageSince(_ context.Context, apiKeyID int64, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.usage[apiKeyID]
	return len(records) - firstAtOrAfter(records, since), nil
}

// InsertUsage appends the record. Late records are placed by request time.
func (r *APIKeyRepository) InsertUsage(_ context.Context, usage domain.APIKeyUsage) error {
	if usage.RequestTime.IsZero() {
		usage.RequestTime = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	usage.ID = r.nextID

	records := r.usage[usage.APIKeyID]
	at := firstAtOrAfter(records, usage.RequestTime.Add(time.Nanosecond))
	r.usage[usage.APIKeyID] = slices.Insert(records, at, usage)
	return nil
}

// UsageCount returns every usage record held for the key.
func (r *APIKeyRepository) UsageCount(apiKeyID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.usage[apiKeyID])
}

func firstAtOrAfter(records []domain.APIKeyUsage, t time.Time) int {
	return sort.Search(len(records), func(i int) bool {
		return !records[i].RequestTime.Before(t)
	})
}

func (r *APIKeyRepository) SaveAPIKey(_ context.Context, key domain.APIKey) error {
	if key.KeyHash == "" {
		return apperrors.NewValidationError("api key hash is required")
	}
	if key.RequestsPerHour <= 0 {
		return apperrors.NewValidationError("requests per hour must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byHash[key.KeyHash]; ok {
		key.ID = existing.ID
		key.CreatedAt = existing.CreatedAt
	} else {
		r.nextID++
		key.ID = r.nextID
		if key.CreatedAt.IsZero() {
			key.CreatedAt = time.Now().UTC()
		}
	}
	r.byHash[key.KeyHash] = key
	return nil
}
