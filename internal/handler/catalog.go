package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	priced, err := h.Products.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]productResponse, len(priced))
	for i, p := range priced {
		out[i] = h.pricedToResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.pricedToResponse(*p))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = h.categoryToResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.categoryToResponse(*c))
}

// listActiveOffers returns the snapshot clients use to preview prices.
func (h *Handler) listActiveOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.Offers.Active(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offersToResponse(offers))
}

func (h *Handler) listSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.Content.ListSlides(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]slideResponse, len(slides))
	for i, s := range slides {
		out[i] = h.slideToResponse(s)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.Content.ListLinks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]linkResponse, len(links))
	for i, l := range links {
		out[i] = h.linkToResponse(l)
	}
	writeJSON(w, http.StatusOK, out)
}
