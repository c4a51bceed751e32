package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/utils"
)

// APIKeyService implements admission control on static API keys.
//
// Admit and RecordKeyUsage count requests that were admitted but not yet
// recorded, so a burst on one instance cannot overshoot a key's quota.
type APIKeyService struct {
	BaseService
	repo portsrepo.APIKeyRepository
	now  func() time.Time

	keyLocks sync.Map // key ID -> *sync.Mutex

	mu       sync.Mutex
	inFlight map[int64]int
}

var _ portssvc.APIKeySvc = (*APIKeyService)(nil)
var _ portssvc.APIKeyIssuerSvc = (*APIKeyService)(nil)

// apiKeyPrefix marks issued keys so they are recognisable in logs and configs.
const apiKeyPrefix = "cc_"

// NewAPIKeyService creates a new APIKeyService. A nil now defaults to time.Now.
func NewAPIKeyService(repo portsrepo.APIKeyRepository, now func() time.Time) *APIKeyService {
	if now == nil {
		now = time.Now
	}
	return &APIKeyService{repo: repo, now: now, inFlight: make(map[int64]int)}
}

// lookup returns nil, nil for an unknown key.
func (s *APIKeyService) lookup(ctx context.Context, key string) (*domain.APIKey, error) {
	if key == "" {
		return nil, nil
	}
	apiKey, err := s.repo.FindByHash(ctx, utils.HashAPIKey(key))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}
	return apiKey, nil
}

func (s *APIKeyService) IsValid(ctx context.Context, key string) (bool, error) {
	apiKey, err := s.lookup(ctx, key)
	if err != nil || apiKey == nil {
		return false, err
	}
	return apiKey.Usable(s.now()), nil
}

// CheckQuota counts the key's requests over the trailing QuotaWindow.
func (s *APIKeyService) CheckQuota(ctx context.Context, key, ip string) (bool, error) {
	apiKey, err := s.lookup(ctx, key)
	if err != nil || apiKey == nil {
		return false, err
	}
	return s.underQuota(ctx, apiKey, ip)
}

func (s *APIKeyService) underQuota(ctx context.Context, apiKey *domain.APIKey, ip string) (bool, error) {
	used, err := s.repo.CountUsageSince(ctx, apiKey.ID, s.now().Add(-domain.QuotaWindow))
	if err != nil {
		return false, fmt.Errorf("failed to count api key usage: %w", err)
	}
	used += s.pending(apiKey.ID)
	if used >= apiKey.RequestsPerHour {
		s.LogInfo(ctx, "API key quota exceeded",
			slog.String("key_name", apiKey.Name),
			slog.String("ip", ip),
			slog.Int("used", used),
			slog.Int("limit", apiKey.RequestsPerHour))
		return false, nil
	}
	return true, nil
}

func (s *APIKeyService) RecordUsage(ctx context.Context, key, ip, endpoint string, statusCode int) {
	apiKey, err := s.lookup(ctx, key)
	if err != nil {
		s.LogWarn(ctx, err, "Failed to record api key usage", slog.String("endpoint", endpoint))
		return
	}
	if apiKey == nil {
		return
	}
	s.insertUsage(ctx, apiKey, ip, endpoint, statusCode)
}

// Admit checks validity and quota on a single lookup. The count and the
// reservation happen under a per-key lock.
func (s *APIKeyService) Admit(ctx context.Context, key, ip string) (*domain.APIKey, domain.Admission, error) {
	apiKey, err := s.lookup(ctx, key)
	if err != nil {
		return nil, domain.AdmissionInvalidKey, err
	}
	if apiKey == nil || !apiKey.Usable(s.now()) {
		return apiKey, domain.AdmissionInvalidKey, nil
	}

	lock := s.keyLock(apiKey.ID)
	lock.Lock()
	defer lock.Unlock()

	ok, err := s.underQuota(ctx, apiKey, ip)
	if err != nil {
		return apiKey, domain.AdmissionQuotaExceeded, err
	}
	if !ok {
		return apiKey, domain.AdmissionQuotaExceeded, nil
	}
	s.reserve(apiKey.ID, 1)
	return apiKey, domain.AdmissionAllowed, nil
}

func (s *APIKeyService) RecordKeyUsage(ctx context.Context, apiKey *domain.APIKey, ip, endpoint string, statusCode int) {
	if apiKey == nil {
		return
	}
	// Released after the insert so the request is never uncounted.
	defer s.reserve(apiKey.ID, -1)
	s.insertUsage(ctx, apiKey, ip, endpoint, statusCode)
}

func (s *APIKeyService) insertUsage(ctx context.Context, apiKey *domain.APIKey, ip, endpoint string, statusCode int) {
	err := s.repo.InsertUsage(ctx, domain.APIKeyUsage{
		APIKeyID:    apiKey.ID,
		RequestTime: s.now().UTC(),
		IPAddress:   ip,
		Endpoint:    endpoint,
		StatusCode:  statusCode,
	})
	if err != nil {
		s.LogWarn(ctx, err, "Failed to record api key usage",
			slog.String("endpoint", endpoint),
			slog.Int("status", statusCode))
	}
}

func (s *APIKeyService) keyLock(id int64) *sync.Mutex {
	l, _ := s.keyLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *APIKeyService) pending(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[id]
}

func (s *APIKeyService) reserve(id int64, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.inFlight[id] + delta
	if n <= 0 {
		delete(s.inFlight, id)
		return
	}
	s.inFlight[id] = n
}

// IssueAPIKey generates a random key, stores its hash and returns the plaintext.
// The plaintext is never persisted and cannot be recovered later.
func (s *APIKeyService) IssueAPIKey(ctx context.Context, name string, requestsPerHour int, expiresAt *time.Time) (string, error) {
	if name == "" {
		return "", apperrors.NewValidationError("api key name is required")
	}
	if requestsPerHour <= 0 {
		return "", apperrors.NewValidationError("requests per hour must be positive")
	}

	plain, err := utils.NewAPIKey(apiKeyPrefix, 24)
	if err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}

	err = s.repo.SaveAPIKey(ctx, domain.APIKey{
		KeyHash:         utils.HashAPIKey(plain),
		Name:            name,
		RequestsPerHour: requestsPerHour,
		IsActive:        true,
		ExpiresAt:       expiresAt,
		CreatedAt:       s.now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save api key: %w", err)
	}

	s.LogInfo(ctx, "API key issued", slog.String("key_name", name), slog.Int("requests_per_hour", requestsPerHour))
	return plain, nil
}
