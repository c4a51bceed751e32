package domain

import "time"

// APIKey is a static credential with an hourly request quota.
type APIKey struct {
	ID              int64      `json:"id"`
	KeyHash         string     `json:"-"` // Never expose the hash in JSON responses
	Name            string     `json:"name"`
	RequestsPerHour int        `json:"requestsPerHour"`
	IsActive        bool       `json:"isActive"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// IsExpired checks if the key has expired as of now.
func (k *APIKey) IsExpired(now time.Time) bool {
	if k.ExpiresAt == nil {
		return false
	}
	return !k.ExpiresAt.After(now)
}

// Usable reports whether the key may be used to make requests.
func (k *APIKey) Usable(now time.Time) bool {
	return k.IsActive && !k.IsExpired(now)
}

// APIKeyUsage is one append-only audit record of a request made with a key.
type APIKeyUsage struct {
	ID          int64     `json:"id"`
	APIKeyID    int64     `json:"apiKeyId"`
	RequestTime time.Time `json:"requestTime"`
	IPAddress   string    `json:"ipAddress"`
	Endpoint    string    `json:"endpoint"`
	StatusCode  int       `json:"statusCode"`
}

// QuotaWindow is the trailing period usage is counted over.
const QuotaWindow = time.Hour

// Admission is the outcome of gating one request on an API key.
type Admission int

const (
	AdmissionAllowed Admission = iota
	AdmissionInvalidKey
	AdmissionQuotaExceeded
)
