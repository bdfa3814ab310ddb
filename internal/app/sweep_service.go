package app

import (
	"context"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

type SweepRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	FindExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	IncrementStock(ctx context.Context, productID string, qty int) error
	CancelPendingOrder(ctx context.Context, orderID string) error
	MarkReservationExpired(ctx context.Context, reservationID string) error
}

// SweepService reconciles reservations that expired while their order
// stayed PENDING: stock goes back to the ledger, the order is
// cancelled, the reservation is flagged resolved.
type SweepService struct {
	repo  SweepRepository
	clock clock.Clock
}

func NewSweepService(repo SweepRepository, clk clock.Clock) *SweepService {
	return &SweepService{
		repo:  repo,
		clock: clk,
	}
}

// SweepResult reports what one sweep pass resolved.
type SweepResult struct {
	ReservationsExpired int
	OrdersCancelled     int
}

// RunExpirySweep performs one scan-and-resolve pass in a single
// transaction. The selection query locks each matched reservation and
// its order, so the PENDING predicate holds until commit; reservations
// resolved by a racing pay or cancel are excluded by the query and can
// never be double-returned.
func (s *SweepService) RunExpirySweep(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()
	var result SweepResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		expired, err := s.repo.FindExpiredReservations(txCtx, now)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		cancelled := make(map[string]struct{}, len(expired))
		for _, res := range expired {
			if err := s.repo.IncrementStock(txCtx, res.ProductID, res.Quantity); err != nil {
				return err
			}
			if err := s.repo.CancelPendingOrder(txCtx, res.OrderID); err != nil {
				return err
			}
			cancelled[res.OrderID] = struct{}{}
			if err := s.repo.MarkReservationExpired(txCtx, res.ID); err != nil {
				return err
			}
		}

		result.ReservationsExpired = len(expired)
		result.OrdersCancelled = len(cancelled)
		return nil
	})
	if err != nil {
		return SweepResult{}, err
	}
	return result, nil
}
