package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/app"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// CheckoutStarter is the minimal interface needed to start a checkout.
type CheckoutStarter interface {
	InitiateCheckout(ctx context.Context, userID string) (app.CheckoutResult, error)
}

// BuyNowPlacer is the minimal interface for the immediate purchase flow.
type BuyNowPlacer interface {
	BuyNow(ctx context.Context, userID string) (domain.Order, error)
}

// HandleCheckout serves POST /checkout: cart becomes a PENDING order
// with stock held behind reservations until payment or expiry.
func HandleCheckout(svc CheckoutStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		result, err := svc.InitiateCheckout(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := checkoutResponse{
			Order:         toOrderResponse(result.Order),
			ReservedUntil: result.ReservedUntil,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleBuyNow serves POST /orders/buy-now: the cart is charged in one
// step, no reservation hold involved.
func HandleBuyNow(svc BuyNowPlacer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		order, err := svc.BuyNow(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(toOrderResponse(order))
	}
}

type checkoutResponse struct {
	Order         orderResponse `json:"order"`
	ReservedUntil time.Time     `json:"reserved_until"`
}
