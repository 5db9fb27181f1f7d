package services

import "github.com/caromclub/league-system/models"

func normalizeOptional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusSoon:      {models.StatusActive, models.StatusCanceled},
		models.StatusActive:    {models.StatusCompleted, models.StatusCanceled},
		models.StatusCompleted: {},
		models.StatusCanceled:  {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

func tournamentFinished(status models.TournamentStatus) bool {
	return status == models.StatusCompleted || status == models.StatusCanceled
}
