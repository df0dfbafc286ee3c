package app

import (
	"errors"
	"net/http"

	"github.com/campscape/registration-engine/api"
	"github.com/campscape/registration-engine/internal/domain"
)

// GetSessionRewards serves the gamified unlock progress for a session. It is
// a display-only read model and never participates in booking.
func (app *application) GetSessionRewards(w http.ResponseWriter, r *http.Request) {
	sessionID, err := readIntParam(r, "sessionId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, err := app.sessionRepo.GetById(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	registrations, err := app.capacity.Registrations(r.Context(), sessionID)
	if err != nil {
		app.domainErrorResponse(w, r, err)
		return
	}

	sessionType := domain.ClassifySessionType(session.Price, session.AgeMin, session.AgeMax)
	progress := domain.CalculateUnlockedRewards(registrations, sessionType)

	resp := api.RewardsResponse{
		SessionId:   sessionID,
		SessionType: string(sessionType),
		Unlocked:    []api.RewardData{},
		Progress:    progress.Progress,
	}

	for _, reward := range progress.Unlocked {
		resp.Unlocked = append(resp.Unlocked, toRewardData(reward))
	}

	if progress.NextReward != nil {
		next := toRewardData(*progress.NextReward)
		resp.NextReward = &next
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toRewardData(reward domain.Reward) api.RewardData {
	return api.RewardData{
		Id:        reward.ID,
		Threshold: reward.Threshold,
		Label:     reward.Label,
	}
}
