package app

import (
	"context"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/google/uuid"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetActiveCart(ctx context.Context, userID string) (*domain.Cart, error)
	GetCartLinesForUpdate(ctx context.Context, cartID string) ([]domain.CartLine, error)
	DecrementStock(ctx context.Context, productID string, qty int) error
	CreateOrder(ctx context.Context, order domain.Order) error
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	CreateReservations(ctx context.Context, reservations []domain.Reservation) error
	ClearCart(ctx context.Context, cartID string) error
}

// CheckoutService turns a cart into an order. InitiateCheckout creates
// a PENDING order holding stock behind reservations; BuyNow skips the
// hold and creates the order directly PAID.
type CheckoutService struct {
	repo         CheckoutRepository
	clock        clock.Clock
	holdDuration time.Duration
}

const defaultHoldDuration = 15 * time.Minute

func NewCheckoutService(repo CheckoutRepository, clk clock.Clock, opts ...CheckoutServiceOption) *CheckoutService {
	svc := &CheckoutService{
		repo:         repo,
		clock:        clk,
		holdDuration: defaultHoldDuration,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type CheckoutServiceOption func(*CheckoutService)

// WithHoldDuration overrides how long reservations hold stock.
func WithHoldDuration(d time.Duration) CheckoutServiceOption {
	return func(s *CheckoutService) {
		if d > 0 {
			s.holdDuration = d
		}
	}
}

// CheckoutResult is a freshly created PENDING order plus the instant
// its reservations lapse.
type CheckoutResult struct {
	Order         domain.Order
	ReservedUntil time.Time
}

// InitiateCheckout reserves stock for the user's cart inside one
// transaction: the cart lines are read with product rows locked, so the
// capacity check and the decrement cannot race another checkout.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, userID string) (CheckoutResult, error) {
	if userID == "" {
		return CheckoutResult{}, domain.ErrUserIDRequired
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.holdDuration)
	var result CheckoutResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, lines, err := s.placeOrder(txCtx, userID, now, domain.OrderStatusPending)
		if err != nil {
			return err
		}

		reservations := make([]domain.Reservation, 0, len(lines))
		for _, line := range lines {
			reservations = append(reservations, domain.Reservation{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				ExpiresAt: expiresAt,
				CreatedAt: now,
			})
		}
		if err := s.repo.CreateReservations(txCtx, reservations); err != nil {
			return err
		}

		result = CheckoutResult{Order: order, ReservedUntil: expiresAt}
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}
	return result, nil
}

// BuyNow is the immediate flow: stock is decremented and the order is
// created already PAID, with no reservation to reconcile later.
func (s *CheckoutService) BuyNow(ctx context.Context, userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}

	now := s.clock.Now()
	var result domain.Order

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, _, err := s.placeOrder(txCtx, userID, now, domain.OrderStatusPaid)
		if err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

// placeOrder runs the shared checkout body: load cart, lock products,
// check and decrement stock per line, create the order and its items,
// clear the cart. Must be called inside a transaction.
func (s *CheckoutService) placeOrder(ctx context.Context, userID string, now time.Time, status domain.OrderStatus) (domain.Order, []domain.CartLine, error) {
	cart, err := s.repo.GetActiveCart(ctx, userID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	if cart == nil {
		return domain.Order{}, nil, domain.ErrEmptyCart
	}

	lines, err := s.repo.GetCartLinesForUpdate(ctx, cart.ID)
	if err != nil {
		return domain.Order{}, nil, err
	}
	if len(lines) == 0 {
		return domain.Order{}, nil, domain.ErrEmptyCart
	}

	for _, line := range lines {
		if line.Quantity > line.Stock {
			return domain.Order{}, nil, &domain.InsufficientStockError{ProductID: line.ProductID}
		}
		if err := s.repo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return domain.Order{}, nil, err
		}
	}

	order := domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, nil, err
	}

	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, domain.OrderItem{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		})
	}
	if err := s.repo.CreateOrderItems(ctx, items); err != nil {
		return domain.Order{}, nil, err
	}
	order.Items = items

	if err := s.repo.ClearCart(ctx, cart.ID); err != nil {
		return domain.Order{}, nil, err
	}
	return order, lines, nil
}
