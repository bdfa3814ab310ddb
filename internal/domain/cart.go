package domain

import "time"

type Cart struct {
	ID        string
	UserID    string
	IsGuest   bool
	CreatedAt time.Time
}

type CartItem struct {
	ID        string
	CartID    string
	ProductID string
	Quantity  int
}

// CartLine is a cart item joined with its product snapshot, the shape
// the checkout coordinator reads before reserving stock.
type CartLine struct {
	ItemID      string
	ProductID   string
	ProductName string
	Price       float64
	Quantity    int
	Stock       int
}
