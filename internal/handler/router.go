package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unimart/storefront/internal/domain/auth"
)

// Probes serves the liveness and readiness endpoints.
type Probes interface {
	LiveEndpoint(w http.ResponseWriter, r *http.Request)
	ReadyEndpoint(w http.ResponseWriter, r *http.Request)
}

// Router returns the routing tree of the API.
func (h *Handler) Router(probes Probes) chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, Error{Code: http.StatusMethodNotAllowed, Message: "method not allowed"})
	})

	r.Get("/livez", probes.LiveEndpoint)
	r.Get("/readyz", probes.ReadyEndpoint)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.listCategories)
		r.Get("/categories/{id}", h.getCategory)
		r.Get("/offers/active", h.listActiveOffers)
		r.Get("/slides", h.listSlides)
		r.Get("/links", h.listLinks)

		r.Group(func(r chi.Router) {
			r.Use(h.requireScope(auth.ScopeCustomer))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.getCart)
				r.Delete("/", h.clearCart)
				r.Get("/quote", h.quoteCart)
				r.Post("/items", h.addCartItem)
				r.Post("/items/{productID}/increment", h.incrementCartItem)
				r.Post("/items/{productID}/decrement", h.decrementCartItem)
				r.Delete("/items/{productID}", h.removeCartItem)
			})
			r.Post("/orders", h.placeOrder)
			r.Get("/orders/my", h.listMyOrders)
			r.Put("/orders/{id}/cancel", h.cancelOrder)
			r.Post("/feedback", h.submitFeedback)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireScope(auth.ScopeAdmin))

			r.Get("/stats", h.stats)

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", h.listOffers)
				r.Post("/", h.createOffer)
				r.Get("/{id}", h.getOffer)
				r.Put("/{id}", h.updateOffer)
				r.Delete("/{id}", h.deleteOffer)
			})
			r.Route("/products", func(r chi.Router) {
				r.Post("/", h.createProduct)
				r.Put("/{id}", h.updateProduct)
				r.Delete("/{id}", h.deleteProduct)
			})
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", h.createCategory)
				r.Put("/{id}", h.updateCategory)
				r.Delete("/{id}", h.deleteCategory)
				r.Post("/{id}/subcategories", h.addSubcategory)
				r.Put("/{id}/subcategories/{subID}", h.updateSubcategory)
				r.Delete("/{id}/subcategories/{subID}", h.deleteSubcategory)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.listOrders)
				r.Put("/{id}/status", h.updateOrderStatus)
				r.Put("/{id}/payment", h.updatePaymentStatus)
				r.Delete("/{id}", h.deleteOrder)
			})
			r.Get("/feedback", h.listFeedback)
			r.Delete("/feedback/{id}", h.deleteFeedback)
			r.Route("/slides", func(r chi.Router) {
				r.Post("/", h.addSlide)
				r.Put("/order", h.reorderSlides)
				r.Delete("/{id}", h.deleteSlide)
			})
			r.Route("/links", func(r chi.Router) {
				r.Post("/", h.addLink)
				r.Put("/order", h.reorderLinks)
				r.Put("/{id}", h.updateLink)
				r.Delete("/{id}", h.deleteLink)
			})
			r.Get("/customers", h.listCustomers)
			r.Delete("/customers/{id}", h.deleteCustomer)
		})
	})
	return r
}
