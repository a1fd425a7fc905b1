package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tandemplan/tandem-backend/internal/model"
)

var errCantRetrieveUser = errors.New("can't retrieve user from context")

func (a *Api) getUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value(contextKeyUser).(*model.User)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveUser)
		return
	}

	resp := &struct {
		ID          int64  `json:"id,omitempty"`
		FullName    string `json:"full_name,omitempty"`
		Email       string `json:"email,omitempty"`
		PhoneNumber string `json:"phone_number,omitempty"`
		Photo       string `json:"photo,omitempty"`
		Notify      bool   `json:"notify"`
	}{
		ID:          user.ID,
		FullName:    user.FullName,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Photo:       user.Photo,
		Notify:      user.Notify,
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updatePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		PushToken string `json:"push_token"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.users.UpdatePushToken(r.Context(), a.db, userID, req.PushToken); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("update push token: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) updateNotifyHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		Notify bool `json:"notify"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if err := a.users.UpdateNotify(r.Context(), a.db, userID, req.Notify); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("update notify: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) searchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		a.badRequestResponse(w, r, errors.New("query must be provided"))
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			a.badRequestResponse(w, r, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = parsed
	}

	page := 0
	if v := r.URL.Query().Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			a.badRequestResponse(w, r, fmt.Errorf("invalid page %q", v))
			return
		}
		page = parsed
	}

	users, err := a.users.SearchUsers(r.Context(), a.db, model.UserSearchFilter{
		Query: query,
		Limit: limit,
		Page:  page,
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("search users: %w", err))
		return
	}

	type userResp struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Photo    string `json:"photo,omitempty"`
	}

	resp := make([]userResp, len(users))
	for i, u := range users {
		resp[i] = userResp{
			ID:       u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			Photo:    u.Photo,
		}
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}
