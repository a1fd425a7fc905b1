package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tandemplan/tandem-backend/internal/business/conflicts"
	"github.com/tandemplan/tandem-backend/internal/business/events"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/tandemplan/tandem-backend/internal/pkg/validator"
)

var errCantRetrieveUserGroups = errors.New("can't retrieve user groups from context")

type eventRequest struct {
	Title         string     `json:"title"`
	Notes         string     `json:"notes"`
	GroupID       *int64     `json:"group_id"`
	AllDay        bool       `json:"all_day"`
	From          dateTime   `json:"from"`
	To            dateTime   `json:"to"`
	RepeatType    int        `json:"repeat_type"`
	Notifications []duration `json:"notifications"`
}

func (req *eventRequest) validate(v *validator.Validator, userGroups map[int64]struct{}) {
	v.Check(len(req.Title) != 0, "title", "title must be provided")
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	v.Check(time.Time(req.To).After(time.Time(req.From)), "to", "to must be after from")
	v.Check(req.RepeatType >= int(model.RepeatTypeNone) && req.RepeatType <= int(model.RepeatTypeEveryYear),
		"repeat_type", "unknown repeat type")

	if req.GroupID != nil {
		_, ok := userGroups[*req.GroupID]
		v.Check(ok, "group_id", "no such group")
	}
}

func (req *eventRequest) toEventCreate(ownerID int64) *model.EventCreate {
	notifications := make([]time.Duration, len(req.Notifications))
	for i, n := range req.Notifications {
		notifications[i] = time.Duration(n)
	}

	return &model.EventCreate{
		OwnerID:       ownerID,
		GroupID:       req.GroupID,
		Title:         req.Title,
		Notes:         req.Notes,
		AllDay:        req.AllDay,
		From:          time.Time(req.From),
		To:            time.Time(req.To),
		RepeatType:    model.RepeatType(req.RepeatType),
		Notifications: notifications,
	}
}

func (a *Api) getEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	userGroups, ok := r.Context().Value(contextKeyUserGroups).(map[int64]struct{})
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserGroups)
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

	groupIDs := make([]int64, 0, len(userGroups))
	if raw := r.URL.Query().Get("group_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				a.badRequestResponse(w, r, fmt.Errorf("invalid group id %q", part))
				return
			}
			if _, ok := userGroups[id]; !ok {
				a.notFoundResponse(w, r)
				return
			}
			groupIDs = append(groupIDs, id)
		}
	} else {
		for id := range userGroups {
			groupIDs = append(groupIDs, id)
		}
	}

	evs, err := a.eventsService.GetEvents(r.Context(), model.EventsFilter{
		From:     from,
		To:       to,
		GroupIDs: groupIDs,
		OwnerID:  &userID,
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get events: %w", err))
		return
	}

	resp, err := mapSlice(evs, mapToEventResp)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	userGroups, ok := r.Context().Value(contextKeyUserGroups).(map[int64]struct{})
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserGroups)
		return
	}

	req := &eventRequest{}
	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	req.validate(v, userGroups)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	event, err := a.eventsService.CreateEvent(r.Context(), req.toEventCreate(userID))
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("create event: %w", err))
		return
	}

	resp, err := mapToEventResp(event)
	if err != nil {
		a.serverErrorResponse(w, r, err)
		return
	}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) preflightHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	userGroups, ok := r.Context().Value(contextKeyUserGroups).(map[int64]struct{})
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserGroups)
		return
	}

	req := &struct {
		Title          string   `json:"title"`
		Notes          string   `json:"notes"`
		GroupID        *int64   `json:"group_id"`
		From           dateTime `json:"from"`
		To             dateTime `json:"to"`
		EditingEventID string   `json:"editing_event_id"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(!time.Time(req.From).IsZero(), "from", "from must be provided")
	v.Check(!time.Time(req.To).IsZero(), "to", "to must be provided")
	v.Check(time.Time(req.To).After(time.Time(req.From)), "to", "to must be after from")
	if req.GroupID != nil {
		_, ok := userGroups[*req.GroupID]
		v.Check(ok, "group_id", "no such group")
	}
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	candidate := &model.CalendarEvent{
		Title:   req.Title,
		From:    time.Time(req.From),
		To:      time.Time(req.To),
		GroupID: req.GroupID,
		Notes:   req.Notes,
	}

	found, err := a.conflictsService.Preflight(r.Context(), userID, candidate, req.EditingEventID)
	if err != nil {
		switch {
		case errors.Is(err, conflicts.ErrNoCandidateTimes):
			a.failedValidationResponse(w, r, map[string]string{"from": "candidate times must be provided"})
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("preflight: %w", err))
		}
		return
	}

	resp := &struct {
		Conflicts []*conflictResp `json:"conflicts"`
	}{Conflicts: make([]*conflictResp, len(found))}
	for i, c := range found {
		resp.Conflicts[i] = mapToConflictResp(c)
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	userGroups, ok := r.Context().Value(contextKeyUserGroups).(map[int64]struct{})
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUserGroups)
		return
	}

	recordID, ts, err := events.ParseInstanceID(chi.URLParam(r, "eventID"))
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	req := &struct {
		eventRequest
		UpdateInstance bool `json:"update_instance"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	req.validate(v, userGroups)
	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	info := req.toEventCreate(userID)

	if req.UpdateInstance {
		err = a.eventsService.UpdateEventInstance(r.Context(), recordID, ts, info)
	} else {
		err = a.eventsService.UpdateEvent(r.Context(), recordID, ts, info)
	}
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("update event: %w", err))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) deleteEventHandler(w http.ResponseWriter, r *http.Request) {
	recordID, _, err := events.ParseInstanceID(chi.URLParam(r, "eventID"))
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	if err := a.eventsService.DeleteEvent(r.Context(), recordID); err != nil {
		switch {
		case errors.Is(err, model.ErrNoRecord):
			a.notFoundResponse(w, r)
		default:
			a.serverErrorResponse(w, r, fmt.Errorf("delete event: %w", err))
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}
