package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ensembleops/ensemble/internal/services/turnover"
	"github.com/ensembleops/ensemble/internal/validation"
)

func (h *handlers) listTurnover(w http.ResponseWriter, r *http.Request) {
	includeFinalized, err := boolQuery(r, "includeFinalized")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.opts.Turnover.List(r.Context(), session(r), chi.URLParam(r, "teamID"), includeFinalized)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handlers) createTurnover(w http.ResponseWriter, r *http.Request) {
	var in turnover.EntryInput
	if err := h.decode(r, validation.SchemaTurnoverEntry, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.opts.Turnover.Create(r.Context(), session(r), chi.URLParam(r, "teamID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *handlers) updateTurnover(w http.ResponseWriter, r *http.Request) {
	var in turnover.EntryInput
	if err := h.decode(r, validation.SchemaTurnoverEntry, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.opts.Turnover.Update(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "entryID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handlers) deleteTurnover(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Turnover.Delete(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "entryID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) finalizeTurnover(w http.ResponseWriter, r *http.Request) {
	fin, err := h.opts.Turnover.Finalize(r.Context(), session(r), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fin)
}

func (h *handlers) listFinalizations(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	fins, err := h.opts.Turnover.Finalizations(r.Context(), session(r), chi.URLParam(r, "teamID"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fins)
}
