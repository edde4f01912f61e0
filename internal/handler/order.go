package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/unimart/storefront/internal/domain/order"
)

// placeOrder orders the items in the body, or the caller's stored cart when
// the body lists none. A cart that was ordered is cleared.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := principal(r).ID

	var req orderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]order.Line, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	fromCart := len(items) == 0
	if fromCart {
		c, err := h.Carts.Get(ctx, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, l := range c.Lines {
			items = append(items, order.Line{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}

	result, err := h.Orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		UserID: userID,
		Items:  items,
		Shipping: order.ShippingInfo{
			Name:    req.Shipping.Name,
			Surname: req.Shipping.Surname,
			Phone:   req.Shipping.Phone,
			Address: req.Shipping.Address,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.recordOrder(ctx, result.Totals)

	if fromCart {
		// The order stands even if the cart survives; the customer can clear it.
		if err := h.Carts.Clear(ctx, userID); err != nil {
			zctx.From(ctx).Warn("Clear ordered cart", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, struct {
		Order  orderResponse  `json:"order"`
		Totals totalsResponse `json:"totals"`
	}{
		Order:  orderToResponse(*result.Order),
		Totals: h.totalsToResponse(result.Products, result.Totals),
	})
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListMine(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Cancel(r.Context(), principal(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(*o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.ListAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ordersToResponse(orders))
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status order.Status `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(*o))
}

func (h *Handler) updatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus order.PaymentStatus `json:"paymentStatus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.Orders.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderToResponse(*o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Orders.Stats(r.Context())
	if err != nil {
		writeError(w, r, errors.Wrap(err, "stats"))
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Products:     st.Products,
		Orders:       st.Orders,
		Customers:    st.Customers,
		RevenueToday: st.RevenueToday.InexactFloat64(),
		RevenueWeek:  st.RevenueWeek.InexactFloat64(),
		RevenueMonth: st.RevenueMonth.InexactFloat64(),
		GeneratedAt:  st.GeneratedAt,
	})
}
