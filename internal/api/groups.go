package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gerow/go-color"
	"github.com/go-chi/chi/v5"
	"github.com/tandemplan/tandem-backend/internal/model"
	"github.com/tandemplan/tandem-backend/internal/pkg/validator"
)

var errCantRetrieveGroup = errors.New("can't retrieve group from context")

func validGroupType(t string) bool {
	switch t {
	case "pair", "couple", "family":
		return true
	}
	return false
}

func (a *Api) getUserGroupsHandler(w http.ResponseWriter, r *http.Request) {
	type getUserGroupsResponse struct {
		GroupID   int64  `json:"group_id"`
		Name      string `json:"name"`
		Type      string `json:"type"`
		Color     string `json:"color"`
		UserCount int    `json:"user_count"`
	}

	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	groups, err := a.groups.GetUserGroups(r.Context(), a.db, userID)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get groups by user id %v: %w", userID, err))
		return
	}

	settings, err := a.groups.GetUserGroupSettings(r.Context(), a.db, model.UserGroupSettingsFilter{UserIDs: []int64{userID}})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("get groups settings for user %v: %w", userID, err))
		return
	}

	settingsMap := make(map[int64]*model.GroupSettings)
	for _, s := range settings {
		settingsMap[s.GroupID] = s
	}

	resp := make([]getUserGroupsResponse, len(groups))
	for i, g := range groups {
		s, ok := settingsMap[g.ID]
		if !ok {
			a.serverErrorResponse(w, r, fmt.Errorf("no settings for group %d", g.ID))
			return
		}

		resp[i] = getUserGroupsResponse{
			GroupID: g.ID,
			Name:    g.Name,
			// canonical label, so legacy "couple" groups show as pair
			Type:      string(model.ParseGroupType(g.Type)),
			Color:     "#" + s.Color.ToHTML(),
			UserCount: len(g.UsersIDs),
		}
	}

	if err := a.writeJSON(w, http.StatusOK, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) createGroupHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	req := &struct {
		Name     string  `json:"name"`
		Type     string  `json:"type"`
		UsersIDs []int64 `json:"users_ids"`
		Color    string  `json:"color"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(len(req.Name) != 0, "name", "name must be provided")
	v.Check(validGroupType(req.Type), "type", "type must be one of pair, couple, family")

	groupColor, err := color.HTMLToRGB(req.Color)
	v.Check(err == nil, "color", "color must be a valid hex value")

	if !v.Valid() {
		a.failedValidationResponse(w, r, v.Errors)
		return
	}

	tx, err := a.db.BeginTx(r.Context(), nil)
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("begin tx: %w", err))
		return
	}
	defer tx.Rollback(r.Context())

	groupID, err := a.groups.CreateGroup(r.Context(), tx, &model.GroupCreate{
		Name:      req.Name,
		Type:      req.Type,
		CreatorID: userID,
	})
	if err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("create group: %w", err))
		return
	}

	members := append([]int64{userID}, req.UsersIDs...)
	seen := make(map[int64]struct{}, len(members))
	for _, id := range members {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if err := a.groups.AddUserToGroup(r.Context(), tx, &model.GroupSettings{
			UserID:  id,
			GroupID: groupID,
			Color:   groupColor,
			Notify:  true,
		}); err != nil {
			a.serverErrorResponse(w, r, fmt.Errorf("add user %v to group: %w", id, err))
			return
		}
	}

	if err := tx.Commit(r.Context()); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("commit tx: %w", err))
		return
	}

	resp := &struct {
		GroupID int64 `json:"group_id"`
	}{GroupID: groupID}

	if err := a.writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		a.serverErrorResponse(w, r, err)
	}
}

func (a *Api) updateGroupSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(contextKeyID).(int64)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveID)
		return
	}

	group, ok := r.Context().Value(contextKeyGroup).(*model.Group)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveGroup)
		return
	}

	req := &struct {
		Name   string `json:"name"`
		Color  string `json:"color"`
		Notify *bool  `json:"notify"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	if req.Name != "" && req.Name != group.Name {
		if err := a.groups.UpdateGroupName(r.Context(), a.db, group.ID, req.Name); err != nil {
			a.serverErrorResponse(w, r, fmt.Errorf("update group name: %w", err))
			return
		}
	}

	if req.Color != "" || req.Notify != nil {
		settings, err := a.groups.GetUserGroupSettings(r.Context(), a.db, model.UserGroupSettingsFilter{
			UserIDs:  []int64{userID},
			GroupIDs: []int64{group.ID},
		})
		if err != nil || len(settings) == 0 {
			a.serverErrorResponse(w, r, fmt.Errorf("get group settings: %w", err))
			return
		}

		updated := settings[0]
		if req.Color != "" {
			groupColor, err := color.HTMLToRGB(req.Color)
			if err != nil {
				a.failedValidationResponse(w, r, map[string]string{"color": "color must be a valid hex value"})
				return
			}
			updated.Color = groupColor
		}
		if req.Notify != nil {
			updated.Notify = *req.Notify
		}

		if err := a.groups.UpdateGroupSettings(r.Context(), a.db, updated); err != nil {
			a.serverErrorResponse(w, r, fmt.Errorf("update group settings: %w", err))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (a *Api) addGroupUserHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := r.Context().Value(contextKeyGroup).(*model.Group)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveGroup)
		return
	}

	req := &struct {
		UserID int64  `json:"user_id"`
		Color  string `json:"color"`
	}{}

	if err := a.readJSON(w, r, req); err != nil {
		a.badRequestResponse(w, r, err)
		return
	}

	for _, id := range group.UsersIDs {
		if id == req.UserID {
			a.clientErrorResponse(w, r, http.StatusConflict, "user already in group")
			return
		}
	}

	groupColor, err := color.HTMLToRGB(req.Color)
	if err != nil {
		a.failedValidationResponse(w, r, map[string]string{"color": "color must be a valid hex value"})
		return
	}

	if err := a.groups.AddUserToGroup(r.Context(), a.db, &model.GroupSettings{
		UserID:  req.UserID,
		GroupID: group.ID,
		Color:   groupColor,
		Notify:  true,
	}); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("add user to group: %w", err))
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (a *Api) removeGroupUserHandler(w http.ResponseWriter, r *http.Request) {
	group, ok := r.Context().Value(contextKeyGroup).(*model.Group)
	if !ok {
		a.serverErrorResponse(w, r, errCantRetrieveGroup)
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		a.notFoundResponse(w, r)
		return
	}

	if err := a.groups.RemoveUserFromGroup(r.Context(), a.db, group.ID, userID); err != nil {
		a.serverErrorResponse(w, r, fmt.Errorf("remove user from group: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
