package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unimart/storefront/internal/domain/cart"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Get(r.Context(), principal(r).ID)
	h.respondCart(w, r, c, err)
}

func (h *Handler) quoteCart(w http.ResponseWriter, r *http.Request) {
	q, err := h.Carts.Quote(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cart   cartResponse   `json:"cart"`
		Totals totalsResponse `json:"totals"`
	}{
		Cart:   cartToResponse(q.Cart),
		Totals: h.totalsToResponse(q.Products, q.Totals),
	})
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req cartLineJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	c, err := h.Carts.Add(r.Context(), principal(r).ID, req.ProductID, req.Quantity)
	h.respondCart(w, r, c, err)
}

func (h *Handler) incrementCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Increment(r.Context(), principal(r).ID, chi.URLParam(r, "productID"))
	h.respondCart(w, r, c, err)
}

// decrementCartItem never drops the line; removeCartItem does.
func (h *Handler) decrementCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Decrement(r.Context(), principal(r).ID, chi.URLParam(r, "productID"))
	h.respondCart(w, r, c, err)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Remove(r.Context(), principal(r).ID, chi.URLParam(r, "productID"))
	h.respondCart(w, r, c, err)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), principal(r).ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cartToResponse(c))
}
