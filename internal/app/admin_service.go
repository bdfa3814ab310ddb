package app

import (
	"context"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

type AdminRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	SetProductStock(ctx context.Context, productID string, stock int) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	ListActiveReservations(ctx context.Context) ([]domain.Reservation, error)
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	GetAnyOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	IncrementStock(ctx context.Context, productID string, qty int) error
	DeleteReservations(ctx context.Context, orderID string) error
}

// AdminService is the back-office surface: restocking, reservation and
// order listings, and status overrides that still respect the order
// state machine and its stock accounting.
type AdminService struct {
	repo  AdminRepository
	clock clock.Clock
}

func NewAdminService(repo AdminRepository, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:  repo,
		clock: clk,
	}
}

// AdjustStock sets a product's stock to an absolute value.
func (s *AdminService) AdjustStock(ctx context.Context, productID string, stock int) (domain.Product, error) {
	if stock < 0 {
		return domain.Product{}, domain.ErrInvalidStock
	}
	if err := s.repo.SetProductStock(ctx, productID, stock); err != nil {
		return domain.Product{}, err
	}
	return s.repo.GetProduct(ctx, productID)
}

func (s *AdminService) ListActiveReservations(ctx context.Context) ([]domain.Reservation, error) {
	return s.repo.ListActiveReservations(ctx)
}

func (s *AdminService) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAllOrders(ctx)
}

// UpdateOrderStatus moves an order to a new status on behalf of an
// operator. Transitions run through the same paths the customer flows
// use: cancelling a PENDING order returns its stock, marking it PAID
// consumes the reservations, and SHIPPED requires PAID.
func (s *AdminService) UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error) {
	if !next.Valid() {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	var result domain.Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetAnyOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if _, err := order.Status.Transition(next); err != nil {
			return err
		}

		switch next {
		case domain.OrderStatusCancelled:
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
		case domain.OrderStatusPaid:
			if err := s.repo.DeleteReservations(txCtx, order.ID); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateOrderStatus(txCtx, order.ID, order.Status, next); err != nil {
			return err
		}

		order.Status = next
		result = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return result, nil
}
