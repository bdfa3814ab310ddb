package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/testutil"
)

func TestOrderRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewOrderRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	t.Run("GetOrderForUpdate is scoped to the owner", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, nil)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			order, err := repo.GetOrderForUpdate(txCtx, orderID, testUserID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if order.ID != orderID || order.Status != domain.OrderStatusPending {
				t.Fatalf("unexpected order: %+v", order)
			}

			if _, err := repo.GetOrderForUpdate(txCtx, orderID, otherUserID); err != domain.ErrOrderNotFound {
				t.Fatalf("expected ErrOrderNotFound for other user, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		if _, err := repo.GetOrderForUpdate(ctx, "not-a-uuid", testUserID); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("UpdateOrderStatus enforces the from-status predicate", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, nil)

		if err := repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusPaid); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := testutil.OrderStatus(t, ctx, pool, orderID); got != domain.OrderStatusPaid {
			t.Fatalf("expected PAID, got %s", got)
		}

		err := repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusPending, domain.OrderStatusCancelled)
		if !domain.IsInvalidState(err) {
			t.Fatalf("expected InvalidStateError on second resolution, got %v", err)
		}
		if got := testutil.OrderStatus(t, ctx, pool, orderID); got != domain.OrderStatusPaid {
			t.Fatalf("order must stay PAID, got %s", got)
		}
	})

	t.Run("DeleteReservations and IncrementStock round trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		productID := testutil.InsertProduct(t, ctx, pool, "Smartwatch", 199.99, 3)
		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, map[string]int{productID: 2})
		testutil.InsertReservation(t, ctx, pool, orderID, productID, 2, time.Now().Add(15*time.Minute))

		if err := repo.IncrementStock(ctx, productID, 2); err != nil {
			t.Fatalf("increment stock: %v", err)
		}
		if err := repo.DeleteReservations(ctx, orderID); err != nil {
			t.Fatalf("delete reservations: %v", err)
		}

		if got := testutil.ProductStock(t, ctx, pool, productID); got != 5 {
			t.Fatalf("expected stock 5, got %d", got)
		}
		var count int
		if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE order_id = $1`, orderID).Scan(&count); err != nil {
			t.Fatalf("count reservations: %v", err)
		}
		if count != 0 {
			t.Fatalf("expected reservations gone, got %d", count)
		}

		if err := repo.IncrementStock(ctx, "33333333-3333-3333-3333-333333333333", 1); err != domain.ErrProductNotFound {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
	})

	t.Run("ListOrdersByUser returns newest first with items", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		productID := testutil.InsertProduct(t, ctx, pool, "Smartwatch", 199.99, 10)
		older := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPaid, map[string]int{productID: 1})
		if _, err := pool.Exec(ctx, `UPDATE orders SET created_at = created_at - INTERVAL '1 hour' WHERE id = $1`, older); err != nil {
			t.Fatalf("age order: %v", err)
		}
		newer := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPending, map[string]int{productID: 2})
		testutil.InsertOrder(t, ctx, pool, otherUserID, domain.OrderStatusPending, nil)

		orders, err := repo.ListOrdersByUser(ctx, testUserID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(orders))
		}
		if orders[0].ID != newer || orders[1].ID != older {
			t.Fatalf("expected newest first, got %s then %s", orders[0].ID, orders[1].ID)
		}
		if len(orders[0].Items) != 1 || orders[0].Items[0].ProductName != "Smartwatch" {
			t.Fatalf("expected items attached, got %+v", orders[0].Items)
		}
	})

	t.Run("GetOrderWithItems loads the full order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		productID := testutil.InsertProduct(t, ctx, pool, "Running Shoes", 85, 10)
		orderID := testutil.InsertOrder(t, ctx, pool, testUserID, domain.OrderStatusPaid, map[string]int{productID: 2})

		order, err := repo.GetOrderWithItems(ctx, orderID, testUserID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items: %+v", order.Items)
		}

		if _, err := repo.GetOrderWithItems(ctx, orderID, otherUserID); err != domain.ErrOrderNotFound {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})
}
