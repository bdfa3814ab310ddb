package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

// ProductReader is the minimal interface needed by the catalog routes.
type ProductReader interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

// HandleProducts serves GET /products and GET /products/{id}.
func HandleProducts(svc ProductReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		id, ok := parseProductPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "route not found")
			return
		}

		if id == "" {
			products, err := svc.ListProducts(r.Context())
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := make([]productResponse, 0, len(products))
			for _, p := range products {
				resp = append(resp, toProductResponse(p))
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(resp)
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toProductResponse(product))
	}
}

// parseProductPath accepts /products and /products/{id}; the returned
// id is empty for the collection route.
func parseProductPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if parts[0] != "products" {
		return "", false
	}
	switch len(parts) {
	case 1:
		return "", true
	case 2:
		if parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	return "", false
}
