package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/tandemplan/tandem-backend/internal/pkg/validator"
)

func (a *Api) getConflictsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	from, err := time.Parse(dateTimeFormat, r.URL.Query().Get("from"))
	if err != nil {
		a.badRequestResponse(w, r, fmt.Errorf("invalid from: %w", err))
		return
	}

	to, err := time.Parse(dateTimeFormat, r.URL.Query().Get("to"))
	if err != nil {
		a.badRequestResponse(w, r, fmt.Errorf("invalid to: %w", err))
		return
	}

	includeSettled := r.URL.Query().Get("all") == "true"

	statuses, err := a.conflictsService.ConflictsForUser(r.Context(), userID, from, to, includeSettled)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get conflicts: %w", err))
		return
	}

	resp := make([]*conflictResp, len(statuses))
	for i, s := range statuses {
		c := mapToConflictResp(s.Conflict)
		c.Resolution = string(s.Resolution)
		c.Ignored = s.Ignored
		resp[i] = c
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) setResolutionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	conflictID := chi.URLParam(r, "conflictID")

	req := &struct {
		Resolution string `json:"resolution"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	resolution := model.Resolution(req.Resolution)

	v := validator.New()
	v.Check(resolution.Valid(), "resolution", "resolution must be one of keep_existing, replace_with_new, none")
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	if err := a.conflictsService.SetResolution(r.Context(), userID, conflictID, resolution); err != nil {
		a.retryableErrorResponse(w, r, fmt.Errorf("set resolution for %v: %w", conflictID, err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) clearResolutionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	conflictID := chi.URLParam(r, "conflictID")

	if err := a.conflictsService.ClearResolution(r.Context(), userID, conflictID); err != nil {
		a.retryableErrorResponse(w, r, fmt.Errorf("clear resolution for %v: %w", conflictID, err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) ignoreConflictsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		IDs []string `json:"conflict_ids"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if len(req.IDs) == 0 {
		a.failedValidationResponse(w, r, map[string]string{"conflict_ids": "conflict_ids must be provided"})
		return
	}

	a.conflictsService.IgnoreConflicts(r.Context(), userID, req.IDs)

	w.WriteHeader(http.StatusAccepted)
}
