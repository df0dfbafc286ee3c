package app

import (
	"net/http"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/ledger"
)

// GetSessionAvailability serves the role-selection read model. The numbers it
// reports are computed against declared capacity only; overbooking buffers
// never surface here.
func (app *application) GetSessionAvailability(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIntParam(r, "sessionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	availability, err := app.capacity.Availability(r.Context(), sessionID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	resp := toAvailabilityResponse(availability)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toAvailabilityResponse(availability *ledger.SessionAvailability) api.AvailabilityResponse {
	resp := api.AvailabilityResponse{
		SessionId:        availability.SessionID,
		SessionAvailable: availability.SessionAvailable,
		Roles:            []api.RoleAvailability{},
	}

	for _, role := range availability.PerRole {
		resp.Roles = append(resp.Roles, api.RoleAvailability{
			RoleId:    role.RoleID,
			Capacity:  role.Capacity,
			Assigned:  role.Assigned,
			Available: role.Available,
		})
	}

	return resp
}
