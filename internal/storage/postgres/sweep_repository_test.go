package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/testutil"
)

func TestSweepRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewSweepRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("FindExpiredReservations matches only unresolved pending holds", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC()

		productID := testutil.InsertProduct(t, ctx, pool, "Smartwatch", 199.99, 10)

		pendingOrder := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, map[string]int{productID: 2})
		expiredID := testutil.InsertReservation(t, ctx, pool, pendingOrder, productID, 2, now.Add(-time.Minute))

		// still live
		testutil.InsertReservation(t, ctx, pool, pendingOrder, productID, 1, now.Add(10*time.Minute))

		// expired but the order was already paid
		paidOrder := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPaid, nil)
		testutil.InsertReservation(t, ctx, pool, paidOrder, productID, 3, now.Add(-time.Minute))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			expired, err := repo.FindExpiredReservations(txCtx, now)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(expired) != 1 {
				t.Fatalf("expected 1 expired reservation, got %d", len(expired))
			}
			if expired[0].ID != expiredID {
				t.Fatalf("expected reservation %s, got %s", expiredID, expired[0].ID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
	})

	t.Run("full sweep pass restores stock once", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)
		now := time.Now().UTC()

		productID := testutil.InsertProduct(t, ctx, pool, "Yoga Mat", 35, 0)
		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, map[string]int{productID: 4})
		resID := testutil.InsertReservation(t, ctx, pool, orderID, productID, 4, now.Add(-time.Minute))

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			expired, err := repo.FindExpiredReservations(txCtx, now)
			if err != nil {
				return err
			}
			for _, res := range expired {
				if err := repo.IncrementStock(txCtx, res.ProductID, res.Quantity); err != nil {
					return err
				}
				if err := repo.CancelPendingOrder(txCtx, res.OrderID); err != nil {
					return err
				}
				if err := repo.MarkReservationExpired(txCtx, res.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("sweep tx failed: %v", err)
		}

		if got := testutil.ProductStock(t, ctx, pool, productID); got != 4 {
			t.Fatalf("expected stock restored to 4, got %d", got)
		}
		if got := testutil.OrderStatus(t, ctx, pool, orderID); got != domain.OrderStatusCancelled {
			t.Fatalf("expected CANCELLED, got %s", got)
		}

		// a second pass finds nothing
		err = repo.WithTx(ctx, func(txCtx context.Context) error {
			expired, err := repo.FindExpiredReservations(txCtx, time.Now().UTC())
			if err != nil {
				return err
			}
			if len(expired) != 0 {
				t.Fatalf("expected no reservations on second pass, got %d", len(expired))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("second sweep tx failed: %v", err)
		}
		if got := testutil.ProductStock(t, ctx, pool, productID); got != 4 {
			t.Fatalf("stock returned twice: got %d", got)
		}

		if err := repo.MarkReservationExpired(ctx, resID); err == nil {
			t.Fatalf("expected error marking an already resolved reservation")
		}
	})

	t.Run("CancelPendingOrder leaves resolved orders alone", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPaid, nil)
		if err := repo.CancelPendingOrder(ctx, orderID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := testutil.OrderStatus(t, ctx, pool, orderID); got != domain.OrderStatusPaid {
			t.Fatalf("expected order untouched, got %s", got)
		}
	})
}
