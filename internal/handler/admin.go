package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unimart/storefront/internal/domain/category"
)

func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.Offers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offersToResponse(offers))
}

func (h *Handler) getOffer(w http.ResponseWriter, r *http.Request) {
	o, err := h.Offers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offerToResponse(*o))
}

func (h *Handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := req.toOffer("")
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.Offers.Create(r.Context(), o)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, offerToResponse(*created))
}

func (h *Handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := req.toOffer(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.Offers.Update(r.Context(), o)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offerToResponse(*updated))
}

func (h *Handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.Offers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Products.Create(r.Context(), req.toDraft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.productToResponse(*p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.Products.Update(r.Context(), chi.URLParam(r, "id"), req.toDraft())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.productToResponse(*p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// categoryWrite decodes a category body and hands it to fn.
func (h *Handler) categoryWrite(status int, fn func(r *http.Request, req categoryRequest) (*category.Category, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := fn(r, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, status, h.categoryToResponse(*c))
	}
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	h.categoryWrite(http.StatusCreated, func(r *http.Request, req categoryRequest) (*category.Category, error) {
		return h.Categories.Create(r.Context(), req.Name, req.Description, req.image())
	})(w, r)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	h.categoryWrite(http.StatusOK, func(r *http.Request, req categoryRequest) (*category.Category, error) {
		return h.Categories.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.image())
	})(w, r)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addSubcategory(w http.ResponseWriter, r *http.Request) {
	h.categoryWrite(http.StatusCreated, func(r *http.Request, req categoryRequest) (*category.Category, error) {
		return h.Categories.AddSubcategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Description, req.image())
	})(w, r)
}

func (h *Handler) updateSubcategory(w http.ResponseWriter, r *http.Request) {
	h.categoryWrite(http.StatusOK, func(r *http.Request, req categoryRequest) (*category.Category, error) {
		return h.Categories.UpdateSubcategory(r.Context(),
			chi.URLParam(r, "id"), chi.URLParam(r, "subID"),
			req.Name, req.Description, req.image())
	})(w, r)
}

func (h *Handler) deleteSubcategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Categories.DeleteSubcategory(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "subID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.categoryToResponse(*c))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.Customers.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]customerResponse, len(list))
	for i, c := range list {
		out[i] = customerResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
