package domain

import "time"

// Product is the stock ledger entry: Stock is the authoritative count
// of units still sellable. It never goes negative; every decrement is
// guarded by a capacity check inside the same transaction.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Stock       int
	Image       string
	Category    string
	Rating      float64
	CreatedAt   time.Time
}
