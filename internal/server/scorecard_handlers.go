package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ensembleops/ensemble/internal/services/scorecard"
	"github.com/ensembleops/ensemble/internal/validation"
)

func (h *handlers) listScorecard(w http.ResponseWriter, r *http.Request) {
	year, err := intQuery(r, "year")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.opts.Scorecard.List(r.Context(), session(r), chi.URLParam(r, "teamID"), year)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *handlers) upsertScorecard(w http.ResponseWriter, r *http.Request) {
	var in scorecard.EntryInput
	if err := h.decode(r, validation.SchemaScorecard, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	entry, err := h.opts.Scorecard.Upsert(r.Context(), session(r), chi.URLParam(r, "teamID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *handlers) deleteScorecard(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Scorecard.Delete(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "entryID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
