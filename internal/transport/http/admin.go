package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// AdminStockService is the minimal interface for back-office restocking.
type AdminStockService interface {
	AdjustStock(ctx context.Context, productID string, stock int) (domain.Product, error)
}

// AdminReservationService lists unresolved reservation holds.
type AdminReservationService interface {
	ListActiveReservations(ctx context.Context) ([]domain.Reservation, error)
}

// AdminOrderService is the minimal interface for back-office order
// listing and status overrides.
type AdminOrderService interface {
	ListAllOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus) (domain.Order, error)
}

// HandleAdminProductStock serves PATCH /admin/products/{id}/stock.
func HandleAdminProductStock(svc AdminStockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		productID, ok := parseAdminStockPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "route not found")
			return
		}

		var req adjustStockRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		product, err := svc.AdjustStock(r.Context(), productID, req.Stock)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// HandleAdminReservations serves GET /admin/reservations.
func HandleAdminReservations(svc AdminReservationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		reservations, err := svc.ListActiveReservations(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]reservationResponse, 0, len(reservations))
		for _, res := range reservations {
			resp = append(resp, toReservationResponse(res))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleAdminOrders serves GET /admin/orders and
// PATCH /admin/orders/{id}/status.
func HandleAdminOrders(svc AdminOrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.Trim(r.URL.Path, "/") == "admin/orders":
			orders, err := svc.ListAllOrders(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]adminOrderResponse, 0, len(orders))
			for _, order := range orders {
				resp = append(resp, toAdminOrderResponse(order))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
		case r.Method == http.MethodPatch:
			orderID, ok := parseAdminOrderStatusPath(r.URL.Path)
			if !ok {
				writeError(w, http.StatusNotFound, codeNotFound, "route not found")
				return
			}

			var req updateOrderStatusRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			order, err := svc.UpdateOrderStatus(r.Context(), orderID, domain.OrderStatus(req.Status))
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toAdminOrderResponse(order))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseAdminStockPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "products" || parts[2] == "" || parts[3] != "stock" {
		return "", false
	}
	return parts[2], true
}

func parseAdminOrderStatusPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "orders" || parts[2] == "" || parts[3] != "status" {
		return "", false
	}
	return parts[2], true
}

type adjustStockRequest struct {
	Stock int `json:"stock"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

// adminOrderResponse includes the owner, which customer routes omit.
type adminOrderResponse struct {
	orderResponse
	UserID string `json:"user_id"`
}

func toAdminOrderResponse(order domain.Order) adminOrderResponse {
	return adminOrderResponse{
		orderResponse: toOrderResponse(order),
		UserID:        order.UserID,
	}
}
