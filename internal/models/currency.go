package models

import "time"

// Currency represents a row of the currencies table.
type Currency struct {
	Code      string    `db:"code"`   // Primary Key (e.g., "USD")
	Name      string    `db:"name"`   // e.g., "US Dollar"
	Symbol    string    `db:"symbol"` // e.g., "$"
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}
