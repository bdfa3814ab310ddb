package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/app"
	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// CartManager is the minimal interface needed by the cart routes.
type CartManager interface {
	GetCart(ctx context.Context, userID string) (app.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
}

// HandleCart serves GET /cart and POST /cart/items.
func HandleCart(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		switch {
		case r.Method == http.MethodGet && strings.Trim(r.URL.Path, "/") == "cart":
			view, err := svc.GetCart(r.Context(), userID)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(toCartResponse(view))
		case r.Method == http.MethodPost && strings.Trim(r.URL.Path, "/") == "cart/items":
			var req addCartItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if req.ProductID == "" {
				writeError(w, http.StatusBadRequest, codeInvalidID, "product_id is required")
				return
			}

			item, err := svc.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(cartItemResponse{
				ID:        item.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleCartItem serves PATCH and DELETE on /cart/items/{id}.
func HandleCartItem(svc CartManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requestUserID(w, r)
		if !ok {
			return
		}

		itemID, ok := parseCartItemPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "route not found")
			return
		}

		switch r.Method {
		case http.MethodPatch:
			var req updateCartItemRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := svc.UpdateItem(r.Context(), userID, itemID, req.Quantity); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case http.MethodDelete:
			if err := svc.RemoveItem(r.Context(), userID, itemID); err != nil {
				writeDomainError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseCartItemPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 3 {
		return "", false
	}
	if parts[0] != "cart" || parts[1] != "items" || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type cartItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type cartLineResponse struct {
	ItemID      string  `json:"item_id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Stock       int     `json:"stock"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Lines []cartLineResponse `json:"items"`
}

func toCartResponse(view app.CartView) cartResponse {
	lines := make([]cartLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, cartLineResponse{
			ItemID:      line.ItemID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Price:       line.Price,
			Quantity:    line.Quantity,
			Stock:       line.Stock,
		})
	}
	return cartResponse{ID: view.Cart.ID, Lines: lines}
}
