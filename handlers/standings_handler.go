package handlers

import (
	"net/http"

	"github.com/caromclub/league-system/services"
)

type StandingsHandler struct {
	rankingService services.RankingService
}

func NewStandingsHandler(rankingService services.RankingService) *StandingsHandler {
	return &StandingsHandler{rankingService: rankingService}
}

func (h *StandingsHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.rankingService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
