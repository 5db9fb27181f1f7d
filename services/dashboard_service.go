package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (models.DashboardStats, error)
}

type dashboardService struct {
	playerRepo     repositories.PlayerRepository
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
}

func NewDashboardService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
) DashboardService {
	return &dashboardService{
		playerRepo:     playerRepo,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	active := models.StatusActive

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.PlayersTotal, err = s.playerRepo.Count(gCtx)
		return err
	})
	g.Go(func() (err error) {
		stats.TournamentsTotal, err = s.tournamentRepo.Count(gCtx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveTournaments, err = s.tournamentRepo.Count(gCtx, &active)
		return err
	})
	g.Go(func() (err error) {
		stats.MatchesTotal, err = s.matchRepo.Count(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
