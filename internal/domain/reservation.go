package domain

import "time"

// Reservation is a temporary hold on product stock tied to a PENDING
// order. The stock it accounts for has already left the ledger; the
// hold is reconciled exactly once, by payment (consumed), cancellation
// (returned) or expiry (returned by the sweeper).
type Reservation struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	ExpiresAt time.Time
	IsExpired bool
	CreatedAt time.Time
}

// Live reports whether the reservation still holds stock: not yet
// resolved by the sweeper and not past its expiry at the given instant.
func (r Reservation) Live(now time.Time) bool {
	return !r.IsExpired && r.ExpiresAt.After(now)
}
