package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/app"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/clock"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/storage/postgres"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/testutil"
)

const integrationUserID = "11111111-1111-1111-1111-111111111111"

func TestCheckoutThenPay_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	checkoutSvc := app.NewCheckoutService(postgres.NewCheckoutRepository(pool), clock.NewSystem())
	orderSvc := app.NewOrderService(postgres.NewOrderRepository(pool), clock.NewSystem())

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Smartwatch", 199.99, 10)
	testutil.InsertCartWithItems(t, ctx, pool, integrationUserID, map[string]int{productID: 3})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set(userIDHeader, integrationUserID)
	rec := httptest.NewRecorder()

	HandleCheckout(checkoutSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created checkoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Order.Status != string(domain.OrderStatusPending) {
		t.Fatalf("expected PENDING, got %s", created.Order.Status)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 7 {
		t.Fatalf("expected stock decremented to 7, got %d", got)
	}

	payReq := httptest.NewRequest(http.MethodPost, "/orders/"+created.Order.ID+"/pay", nil)
	payReq.Header.Set(userIDHeader, integrationUserID)
	payRec := httptest.NewRecorder()

	HandleOrder(orderSvc).ServeHTTP(payRec, payReq)

	if payRec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", payRec.Code, payRec.Body.String())
	}
	if got := testutil.OrderStatus(t, ctx, pool, created.Order.ID); got != domain.OrderStatusPaid {
		t.Fatalf("expected PAID, got %s", got)
	}
	var reservations int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE order_id = $1`, created.Order.ID).Scan(&reservations); err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if reservations != 0 {
		t.Fatalf("expected reservations consumed, got %d", reservations)
	}

	// pay again: the order already left PENDING
	payAgain := httptest.NewRequest(http.MethodPost, "/orders/"+created.Order.ID+"/pay", nil)
	payAgain.Header.Set(userIDHeader, integrationUserID)
	payAgainRec := httptest.NewRecorder()

	HandleOrder(orderSvc).ServeHTTP(payAgainRec, payAgain)

	if payAgainRec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on second pay, got %d", payAgainRec.Code)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 7 {
		t.Fatalf("stock must not move on the losing pay, got %d", got)
	}
}

func TestCheckoutThenExpiry_HTTPIntegration(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)

	start := time.Now().UTC()
	clk := clock.NewManual(start)
	checkoutSvc := app.NewCheckoutService(postgres.NewCheckoutRepository(pool), clk, app.WithHoldDuration(15*time.Minute))
	sweepSvc := app.NewSweepService(postgres.NewSweepRepository(pool), clk)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)
	productID := testutil.InsertProduct(t, ctx, pool, "Yoga Mat", 35, 5)
	testutil.InsertCartWithItems(t, ctx, pool, integrationUserID, map[string]int{productID: 5})

	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set(userIDHeader, integrationUserID)
	rec := httptest.NewRecorder()

	HandleCheckout(checkoutSvc).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created checkoutResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 0 {
		t.Fatalf("expected stock held at 0, got %d", got)
	}

	// before the hold lapses the sweep finds nothing
	result, err := sweepSvc.RunExpirySweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.ReservationsExpired != 0 {
		t.Fatalf("expected nothing to expire yet, got %d", result.ReservationsExpired)
	}

	clk.Advance(16 * time.Minute)

	result, err = sweepSvc.RunExpirySweep(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if result.ReservationsExpired != 1 || result.OrdersCancelled != 1 {
		t.Fatalf("unexpected sweep result: %+v", result)
	}
	if got := testutil.ProductStock(t, ctx, pool, productID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
	if got := testutil.OrderStatus(t, ctx, pool, created.Order.ID); got != domain.OrderStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", got)
	}
}
