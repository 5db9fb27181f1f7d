package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
	"github.com/caromclub/league-system/standings"
	"github.com/caromclub/league-system/storage"
)

type RankingService interface {
	// GetStandings returns the tiered, positioned leaderboard for one
	// tournament.
	GetStandings(ctx context.Context, tournamentID int) ([]standings.Entry, error)
}

type rankingService struct {
	standingRepo   repositories.StandingRepository
	tournamentRepo repositories.TournamentRepository
	uploader       storage.FileUploader
}

func NewRankingService(
	standingRepo repositories.StandingRepository,
	tournamentRepo repositories.TournamentRepository,
	uploader storage.FileUploader,
) RankingService {
	return &rankingService{
		standingRepo:   standingRepo,
		tournamentRepo: tournamentRepo,
		uploader:       uploader,
	}
}

func (s *rankingService) GetStandings(ctx context.Context, tournamentID int) ([]standings.Entry, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}

	rows, err := s.standingRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for tournament %d: %w", tournamentID, err)
	}

	entries := standings.ComputeRanking(rows, tournament.Rules)
	for i := range entries {
		populatePlayerAvatarURL(entries[i].Player, s.uploader)
	}
	return entries, nil
}

func populatePlayerAvatarURL(player *models.Player, uploader storage.FileUploader) {
	if player == nil || player.AvatarKey == nil || *player.AvatarKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*player.AvatarKey); url != "" {
		player.AvatarURL = &url
	}
}
