package app

import (
	"errors"
	"net/http"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
	"github.com/campscape/registration-engine/internal/waitlist"
	"github.com/go-chi/chi/v5"
)

// AddWaitlistEntry appends a new entry to the session's queue. Joining the
// waitlist never consumes capacity; the seat is claimed only at promotion.
func (app *application) AddWaitlistEntry(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIntParam(r, "sessionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input api.AddWaitlistRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	requester := waitlist.Requester{
		ParentID: input.ParentId,
		ChildID:  input.ChildId,
		Email:    input.Email,
	}

	entry, err := app.waitlist.Add(r.Context(), sessionID, input.RoleId, requester)
	if err != nil {
		app.waitlistErrorResponse(w, r, err)
		return
	}

	app.writeWaitlistEntry(w, r, http.StatusCreated, entry)
}

func (app *application) RemoveWaitlistEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	if entryID == "" {
		app.badRequestResponse(w, r, errors.New("invalid entryId parameter"))
		return
	}

	err := app.waitlist.Remove(r.Context(), entryID)
	if err != nil {
		app.waitlistErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.WaitlistResponse{Success: true}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PromoteWaitlistEntry promotes one targeted entry into a seat. A capacity
// failure surfaces with the ledger's own kind, so callers can tell a full
// role apart from a full session.
func (app *application) PromoteWaitlistEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	if entryID == "" {
		app.badRequestResponse(w, r, errors.New("invalid entryId parameter"))
		return
	}

	entry, err := app.waitlist.Promote(r.Context(), entryID)
	if err != nil {
		app.waitlistErrorResponse(w, r, err)
		return
	}

	app.writeWaitlistEntry(w, r, http.StatusOK, entry)
}

func (app *application) ListSessionWaitlist(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIntParam(r, "sessionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status := domain.WaitlistStatus(r.URL.Query().Get("status"))

	entries, err := app.waitlist.ListForSession(r.Context(), sessionID, status)
	if err != nil {
		app.waitlistErrorResponse(w, r, err)
		return
	}

	resp := api.WaitlistListResponse{
		Success: true,
		Data:    make([]api.WaitlistEntryData, 0, len(entries)),
	}

	for i := range entries {
		resp.Data = append(resp.Data, toWaitlistEntryData(&entries[i]))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ListParentWaitlist(w http.ResponseWriter, r *http.Request) {
	parentID, err := readIntParam(r, "parentId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	page, pageSize := readPagination(r)
	pagination := domain.Pagination{Page: page, PageSize: pageSize}

	entries, metadata, err := app.waitlist.ListForParent(r.Context(), parentID, pagination)
	if err != nil {
		app.waitlistErrorResponse(w, r, err)
		return
	}

	apiMetadata := toApiMetadata(metadata)

	resp := api.WaitlistListResponse{
		Success:  true,
		Data:     make([]api.WaitlistEntryData, 0, len(entries)),
		Metadata: &apiMetadata,
	}

	for i := range entries {
		resp.Data = append(resp.Data, toWaitlistEntryData(&entries[i]))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) writeWaitlistEntry(w http.ResponseWriter, r *http.Request, status int, entry *domain.WaitlistEntry) {
	data := toWaitlistEntryData(entry)

	resp := api.WaitlistResponse{
		Success: true,
		Data:    &data,
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// waitlistErrorResponse renders a typed failure in the waitlist envelope. The
// status is the same one domainErrorResponse would pick; only the body shape
// differs.
func (app *application) waitlistErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	domainErr, status, ok := resolveDomainError(err)
	if !ok {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.WaitlistResponse{
		Success: false,
		Error: &api.WaitlistErrorDetail{
			Kind:   string(domainErr.Kind),
			Params: domainErr.Params,
		},
	}

	writeErr := app.writeJSON(w, status, resp, nil)
	if writeErr != nil {
		app.logError(r, writeErr)
		w.WriteHeader(500)
	}
}

func toWaitlistEntryData(entry *domain.WaitlistEntry) api.WaitlistEntryData {
	return api.WaitlistEntryData{
		Id:        entry.ID,
		SessionId: entry.SessionID,
		RoleId:    entry.RoleID,
		ParentId:  entry.ParentID,
		ChildId:   entry.ChildID,
		Position:  entry.Position,
		Status:    string(entry.Status),
		CreatedAt: entry.CreatedAt,
	}
}
