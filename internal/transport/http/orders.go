package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// OrderManager is the minimal interface needed by the order routes.
type OrderManager interface {
	PayOrder(ctx context.Context, orderID, userID string) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID, userID string) (domain.Order, error)
	GetOrderDetails(ctx context.Context, orderID, userID string) (domain.Order, error)
	ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error)
}

// HandleOrders serves GET /orders (the caller's orders, newest first).
func HandleOrders(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		orders, err := svc.ListMyOrders(r.Context(), userID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			resp = append(resp, toOrderResponse(order))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleOrder dispatches /orders/{id}/pay, /orders/{id}/status and
// DELETE /orders/{id}.
func HandleOrder(svc OrderManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		orderID, action, ok := parseOrderPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "route not found")
			return
		}

		switch {
		case r.Method == http.MethodPost && action == "pay":
			order, err := svc.PayOrder(r.Context(), orderID, userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toOrderResponse(order))
		case r.Method == http.MethodGet && action == "status":
			order, err := svc.GetOrderDetails(r.Context(), orderID, userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toOrderResponse(order))
		case r.Method == http.MethodDelete && action == "":
			order, err := svc.CancelOrder(r.Context(), orderID, userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toOrderResponse(order))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// parseOrderPath accepts /orders/{id}, /orders/{id}/pay and
// /orders/{id}/status; action is empty for the bare order route.
func parseOrderPath(path string) (orderID, action string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if parts[0] != "orders" || len(parts) < 2 || parts[1] == "" {
		return "", "", false
	}
	switch len(parts) {
	case 2:
		return parts[1], "", true
	case 3:
		if parts[2] != "pay" && parts[2] != "status" {
			return "", "", false
		}
		return parts[1], parts[2], true
	}
	return "", "", false
}
