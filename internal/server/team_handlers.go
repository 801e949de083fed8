package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ensembleops/ensemble/internal/services/teams"
	"github.com/ensembleops/ensemble/internal/validation"
)

func (h *handlers) listTeams(w http.ResponseWriter, r *http.Request) {
	views, err := h.opts.Teams.ListMine(r.Context(), session(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handlers) createTeam(w http.ResponseWriter, r *http.Request) {
	var in teams.TeamInput
	if err := h.decode(r, validation.SchemaTeam, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	team, err := h.opts.Teams.Create(r.Context(), session(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *handlers) getTeam(w http.ResponseWriter, r *http.Request) {
	team, err := h.opts.Teams.Get(r.Context(), session(r), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *handlers) updateTeam(w http.ResponseWriter, r *http.Request) {
	var in teams.TeamInput
	if err := h.decode(r, validation.SchemaTeam, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	team, err := h.opts.Teams.Update(r.Context(), session(r), chi.URLParam(r, "teamID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *handlers) deleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.opts.Teams.Delete(r.Context(), session(r), chi.URLParam(r, "teamID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.opts.Teams.ListApplications(r.Context(), session(r), chi.URLParam(r, "teamID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (h *handlers) createApplication(w http.ResponseWriter, r *http.Request) {
	var in teams.ApplicationInput
	if err := h.decode(r, validation.SchemaApplication, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	app, err := h.opts.Teams.CreateApplication(r.Context(), session(r), chi.URLParam(r, "teamID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (h *handlers) updateApplication(w http.ResponseWriter, r *http.Request) {
	var in teams.ApplicationInput
	if err := h.decode(r, validation.SchemaApplication, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	app, err := h.opts.Teams.UpdateApplication(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "appID"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *handlers) deleteApplication(w http.ResponseWriter, r *http.Request) {
	err := h.opts.Teams.DeleteApplication(r.Context(), session(r), chi.URLParam(r, "teamID"), chi.URLParam(r, "appID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
