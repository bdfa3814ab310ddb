package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

func TestCheckoutService_InitiateCheckout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	hold := 15 * time.Minute

	t.Run("creates pending order with reservations", func(t *testing.T) {
		repo := newFakeCheckoutRepo(
			map[string]int{"prod-1": 10, "prod-2": 5},
			&domain.Cart{ID: "cart-1", UserID: "user-1"},
			[]domain.CartLine{
				{ItemID: "item-1", ProductID: "prod-1", ProductName: "Smartwatch", Quantity: 2, Stock: 10},
				{ItemID: "item-2", ProductID: "prod-2", ProductName: "Yoga Mat", Quantity: 5, Stock: 5},
			},
		)
		svc := NewCheckoutService(repo, clock.NewFixed(now), WithHoldDuration(hold))

		result, err := svc.InitiateCheckout(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Order.ID == "" {
			t.Fatalf("expected order ID to be set")
		}
		if result.Order.Status != domain.OrderStatusPending {
			t.Fatalf("expected status %s, got %s", domain.OrderStatusPending, result.Order.Status)
		}
		if result.ReservedUntil != now.Add(hold) {
			t.Fatalf("expected reserved_until %v, got %v", now.Add(hold), result.ReservedUntil)
		}
		if len(result.Order.Items) != 2 {
			t.Fatalf("expected 2 order items, got %d", len(result.Order.Items))
		}

		if got := repo.stock["prod-1"]; got != 8 {
			t.Fatalf("expected prod-1 stock 8, got %d", got)
		}
		if got := repo.stock["prod-2"]; got != 0 {
			t.Fatalf("expected prod-2 stock 0, got %d", got)
		}
		if len(repo.reservations) != 2 {
			t.Fatalf("expected 2 reservations, got %d", len(repo.reservations))
		}
		for _, res := range repo.reservations {
			if res.OrderID != result.Order.ID {
				t.Fatalf("reservation points at order %s, want %s", res.OrderID, result.Order.ID)
			}
			if res.ExpiresAt != now.Add(hold) {
				t.Fatalf("reservation expires at %v, want %v", res.ExpiresAt, now.Add(hold))
			}
		}
		if !repo.cartCleared {
			t.Fatalf("expected cart to be cleared")
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		repo := newFakeCheckoutRepo(map[string]int{}, nil, nil)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		_, err := svc.InitiateCheckout(context.Background(), "user-1")
		if err != domain.ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("cart with no lines is rejected", func(t *testing.T) {
		repo := newFakeCheckoutRepo(map[string]int{}, &domain.Cart{ID: "cart-1", UserID: "user-1"}, nil)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		_, err := svc.InitiateCheckout(context.Background(), "user-1")
		if err != domain.ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("insufficient stock rolls back", func(t *testing.T) {
		repo := newFakeCheckoutRepo(
			map[string]int{"prod-1": 10, "prod-2": 3},
			&domain.Cart{ID: "cart-1", UserID: "user-1"},
			[]domain.CartLine{
				{ItemID: "item-1", ProductID: "prod-1", Quantity: 2, Stock: 10},
				{ItemID: "item-2", ProductID: "prod-2", Quantity: 5, Stock: 3},
			},
		)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		_, err := svc.InitiateCheckout(context.Background(), "user-1")
		var stockErr *domain.InsufficientStockError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if stockErr.ProductID != "prod-2" {
			t.Fatalf("expected failing product prod-2, got %s", stockErr.ProductID)
		}
		if len(repo.orders) != 0 {
			t.Fatalf("expected no order created, got %d", len(repo.orders))
		}
		if repo.cartCleared {
			t.Fatalf("expected cart untouched on failure")
		}
	})

	t.Run("missing user id is rejected", func(t *testing.T) {
		repo := newFakeCheckoutRepo(map[string]int{}, nil, nil)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		_, err := svc.InitiateCheckout(context.Background(), "")
		if err != domain.ErrUserIDRequired {
			t.Fatalf("expected ErrUserIDRequired, got %v", err)
		}
	})
}

func TestCheckoutService_BuyNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("creates paid order without reservations", func(t *testing.T) {
		repo := newFakeCheckoutRepo(
			map[string]int{"prod-1": 10},
			&domain.Cart{ID: "cart-1", UserID: "user-1"},
			[]domain.CartLine{
				{ItemID: "item-1", ProductID: "prod-1", ProductName: "Smartwatch", Quantity: 3, Stock: 10},
			},
		)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		order, err := svc.BuyNow(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if order.Status != domain.OrderStatusPaid {
			t.Fatalf("expected status %s, got %s", domain.OrderStatusPaid, order.Status)
		}
		if got := repo.stock["prod-1"]; got != 7 {
			t.Fatalf("expected stock 7, got %d", got)
		}
		if len(repo.reservations) != 0 {
			t.Fatalf("expected no reservations, got %d", len(repo.reservations))
		}
		if !repo.cartCleared {
			t.Fatalf("expected cart to be cleared")
		}
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		repo := newFakeCheckoutRepo(map[string]int{}, nil, nil)
		svc := NewCheckoutService(repo, clock.NewFixed(now))

		_, err := svc.BuyNow(context.Background(), "user-1")
		if err != domain.ErrEmptyCart {
			t.Fatalf("expected ErrEmptyCart, got %v", err)
		}
	})
}

type fakeCheckoutRepo struct {
	stock        map[string]int
	cart         *domain.Cart
	lines        []domain.CartLine
	orders       []domain.Order
	orderItems   []domain.OrderItem
	reservations []domain.Reservation
	cartCleared  bool
}

func newFakeCheckoutRepo(stock map[string]int, cart *domain.Cart, lines []domain.CartLine) *fakeCheckoutRepo {
	return &fakeCheckoutRepo{
		stock: stock,
		cart:  cart,
		lines: append([]domain.CartLine{}, lines...),
	}
}

func (f *fakeCheckoutRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeCheckoutRepo) GetActiveCart(_ context.Context, userID string) (*domain.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID {
		return nil, nil
	}
	c := *f.cart
	return &c, nil
}

func (f *fakeCheckoutRepo) GetCartLinesForUpdate(_ context.Context, cartID string) ([]domain.CartLine, error) {
	if f.cart == nil || f.cart.ID != cartID {
		return nil, nil
	}
	return append([]domain.CartLine{}, f.lines...), nil
}

func (f *fakeCheckoutRepo) DecrementStock(_ context.Context, productID string, qty int) error {
	if f.stock[productID] < qty {
		return &domain.InsufficientStockError{ProductID: productID}
	}
	f.stock[productID] -= qty
	return nil
}

func (f *fakeCheckoutRepo) CreateOrder(_ context.Context, order domain.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeCheckoutRepo) CreateOrderItems(_ context.Context, items []domain.OrderItem) error {
	f.orderItems = append(f.orderItems, items...)
	return nil
}

func (f *fakeCheckoutRepo) CreateReservations(_ context.Context, reservations []domain.Reservation) error {
	f.reservations = append(f.reservations, reservations...)
	return nil
}

func (f *fakeCheckoutRepo) ClearCart(_ context.Context, cartID string) error {
	if f.cart != nil && f.cart.ID == cartID {
		f.cartCleared = true
	}
	return nil
}
