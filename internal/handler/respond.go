package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/unimart/storefront/internal/domain/auth"
	"github.com/unimart/storefront/internal/domain/cart"
	"github.com/unimart/storefront/internal/domain/category"
	"github.com/unimart/storefront/internal/domain/content"
	"github.com/unimart/storefront/internal/domain/offer"
	"github.com/unimart/storefront/internal/domain/order"
	"github.com/unimart/storefront/internal/domain/product"
)

// maxBodySize limits request bodies.
const maxBodySize = 1 << 20

// errBadRequest marks malformed request input.
var errBadRequest = errors.New("bad request")

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadRequest, "invalid JSON body: "+err.Error())
	}
	return nil
}

// statusByError maps domain sentinels to response codes. Order matters only
// for errors wrapping more than one sentinel.
var statusByError = []struct {
	err  error
	code int
}{
	{errBadRequest, http.StatusBadRequest},
	{order.ErrEmptyItems, http.StatusBadRequest},
	{order.ErrShippingRequired, http.StatusBadRequest},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{product.ErrInvalidProduct, http.StatusBadRequest},
	{product.ErrInvalidCategory, http.StatusBadRequest},
	{category.ErrNameRequired, http.StatusBadRequest},
	{content.ErrCommentRequired, http.StatusBadRequest},
	{content.ErrImageRequired, http.StatusBadRequest},
	{content.ErrLogoRequired, http.StatusBadRequest},
	{content.ErrURLRequired, http.StatusBadRequest},
	{content.ErrDuplicateID, http.StatusBadRequest},
	{offer.ErrUnknownScope, http.StatusBadRequest},
	{auth.ErrUnauthorized, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},
	{offer.ErrNotFound, http.StatusNotFound},
	{product.ErrNotFound, http.StatusNotFound},
	{category.ErrNotFound, http.StatusNotFound},
	{order.ErrNotFound, http.StatusNotFound},
	{content.ErrNotFound, http.StatusNotFound},
	{cart.ErrLineNotFound, http.StatusNotFound},
	{auth.ErrCustomerNotFound, http.StatusNotFound},
	{category.ErrDuplicateName, http.StatusConflict},
	{order.ErrNotCancellable, http.StatusConflict},
}

// errorStatus returns the response code for err, 500 when it is not a
// known domain error.
func errorStatus(err error) int {
	var (
		validation *offer.ValidationError
		quantity   *order.InvalidQuantityError
		missing    *order.ProductNotFoundError
		stock      *order.InsufficientStockError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &quantity):
		return http.StatusBadRequest
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &stock):
		return http.StatusConflict
	}
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return http.StatusInternalServerError
}

// writeError converts err to an API error response. Internal errors are
// logged and their text is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorStatus(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, code, Error{Code: code, Message: msg})
}
