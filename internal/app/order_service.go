package app

import (
	"context"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID, userID string) (domain.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	DeleteReservations(ctx context.Context, orderID string) error
	IncrementStock(ctx context.Context, productID string, qty int) error
	GetOrderWithItems(ctx context.Context, orderID, userID string) (domain.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// OrderService resolves pending orders: pay consumes the held stock,
// cancel returns it. Each order leaves PENDING exactly once; the order
// row lock plus the status predicate decide the winner of any race
// with the sweeper or a concurrent call.
type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{
		repo:  repo,
		clock: clk,
	}
}

// PayOrder flips a PENDING order to PAID and deletes its reservations.
// Stock is not returned: the hold converts into a permanent sale.
func (s *OrderService) PayOrder(ctx context.Context, orderID, userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}

	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID, userID)
		if err != nil {
			return err
		}
		if _, err := order.Status.Transition(domain.OrderStatusPaid); err != nil {
			return err
		}

		if err := s.repo.DeleteReservations(txCtx, order.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusPending, domain.OrderStatusPaid); err != nil {
			return err
		}

		order.Status = domain.OrderStatusPaid
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

// CancelOrder flips a PENDING order to CANCELLED, returning every
// order-item quantity to the stock ledger and deleting the
// reservations that accounted for the hold.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}

	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID, userID)
		if err != nil {
			return err
		}
		if _, err := order.Status.Transition(domain.OrderStatusCancelled); err != nil {
			return err
		}

		items, err := s.repo.GetOrderItems(txCtx, order.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.repo.IncrementStock(txCtx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteReservations(txCtx, order.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateOrderStatus(txCtx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled); err != nil {
			return err
		}

		order.Status = domain.OrderStatusCancelled
		order.Items = items
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}

// GetOrderDetails returns the order with its items, scoped to the
// requesting user. Missing and not-owned orders are indistinguishable.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID, userID string) (domain.Order, error) {
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}
	return s.repo.GetOrderWithItems(ctx, orderID, userID)
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}
	return s.repo.ListOrdersByUser(ctx, userID)
}
