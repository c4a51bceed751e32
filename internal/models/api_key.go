package models

import "time"

// APIKey represents a row of the api_keys table.
type APIKey struct {
	ID              int64      `db:"id"`
	KeyHash         string     `db:"key_hash"`
	Name            string     `db:"name"`
	RequestsPerHour int        `db:"requests_per_hour"`
	IsActive        bool       `db:"is_active"`
	ExpiresAt       *time.Time `db:"expires_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// APIKeyUsage represents a row of the append-only api_key_usage table.
type APIKeyUsage struct {
	ID          int64     `db:"id"`
	APIKeyID    int64     `db:"api_key_id"`
	RequestTime time.Time `db:"request_time"`
	IPAddress   string    `db:"ip_address"`
	Endpoint    string    `db:"endpoint"`
	StatusCode  int       `db:"status_code"`
}
