package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amitmumana/inventory-order-engine-assignment/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeUserIDRequired     = "user_id_required"
	codeInvalidID          = "invalid_id"
	codeInvalidQuantity    = "invalid_quantity"
	codeInvalidStock       = "invalid_stock"
	codeInvalidStatus      = "invalid_status"
	codeEmptyCart          = "empty_cart"
	codeCartItemNotFound   = "cart_item_not_found"
	codeProductNotFound    = "product_not_found"
	codeOrderNotFound      = "order_not_found"
	codeInsufficientStock  = "insufficient_stock"
	codeInvalidState       = "invalid_order_state"
	codeTransient          = "transient_conflict"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps a service failure onto the wire taxonomy.
// Validation problems are 400, missing things 404, state conflicts 409,
// retryable store conflicts 503, everything else 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var insufficientStock *domain.InsufficientStockError
	var invalidState *domain.InvalidStateError

	switch {
	case errors.Is(err, domain.ErrUserIDRequired):
		writeError(w, http.StatusUnauthorized, codeUserIDRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidStock):
		writeError(w, http.StatusBadRequest, codeInvalidStock, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, codeEmptyCart, err.Error())
	case errors.Is(err, domain.ErrCartItemNotFound):
		writeError(w, http.StatusNotFound, codeCartItemNotFound, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		writeError(w, http.StatusNotFound, codeProductNotFound, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case errors.As(err, &insufficientStock):
		writeError(w, http.StatusConflict, codeInsufficientStock, err.Error())
	case errors.As(err, &invalidState):
		writeError(w, http.StatusConflict, codeInvalidState, err.Error())
	case errors.Is(err, domain.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, codeTransient, "store busy, retry the request")
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
