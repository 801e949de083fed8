package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ensembleops/ensemble/internal/services/links"
	"github.com/ensembleops/ensemble/internal/validation"
)

func (h *handlers) searchLinks(w http.ResponseWriter, r *http.Request) {
	found, err := h.opts.Links.Search(r.Context(), session(r), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *handlers) createLink(w http.ResponseWriter, r *http.Request) {
	var in links.LinkInput
	if err := h.decode(r, validation.SchemaLink, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	link, err := h.opts.Links.Create(r.Context(), session(r), chi.URLParam(r, "teamID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *handlers) updateLink(w http.ResponseWriter, r *http.Request) {
	var in links.LinkInput
	if err := h.decode(r, validation.SchemaLink, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	link, err := h.opts.Links.Update(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "linkID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (h *handlers) deleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Links.Delete(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "linkID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
