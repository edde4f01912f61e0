package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unimart/storefront/internal/domain/content"
)

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p := principal(r)
	name := req.Name
	if name == "" {
		name = p.Name
	}
	f, err := h.Content.SubmitFeedback(r.Context(), content.Feedback{
		UserID:  p.ID,
		Name:    name,
		Email:   req.Email,
		Phone:   req.Phone,
		Comment: req.Comment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, feedbackToResponse(*f))
}

func (h *Handler) listFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := h.Content.ListFeedback(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]feedbackResponse, len(list))
	for i, f := range list {
		out[i] = feedbackToResponse(f)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	if err := h.Content.DeleteFeedback(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addSlide(w http.ResponseWriter, r *http.Request) {
	var req slideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Content.AddSlide(r.Context(), req.ImageURL, req.Link)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.slideToResponse(*s))
}

func (h *Handler) deleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.Content.DeleteSlide(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderSlides takes the full list of slide ids in display order.
func (h *Handler) reorderSlides(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Content.ReorderSlides(r.Context(), req.IDs); err != nil {
		writeError(w, r, err)
		return
	}
	h.listSlides(w, r)
}

func (h *Handler) addLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.Content.AddLink(r.Context(), req.Logo, req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.linkToResponse(*l))
}

// updateLink replaces the url. The logo is kept when the body omits it.
func (h *Handler) updateLink(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	l, err := h.Content.UpdateLink(r.Context(), chi.URLParam(r, "id"), req.Logo, req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.linkToResponse(*l))
}

func (h *Handler) deleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.Content.DeleteLink(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reorderLinks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Content.ReorderLinks(r.Context(), req.IDs); err != nil {
		writeError(w, r, err)
		return
	}
	h.listLinks(w, r)
}
