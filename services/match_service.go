package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caromclub/league-system/metrics"
	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
	"github.com/caromclub/league-system/standings"
)

// rematchLimit caps recorded encounters per unordered pair, counted
// irrespective of who won each one.
const rematchLimit = 2

// RecordResultInput carries a result submission. Scores arrive as strings
// because submissions come straight from score sheets typed by organizers;
// parsing them is part of validation.
type RecordResultInput struct {
	WinnerID    int    `json:"winner_id"`
	LoserID     int    `json:"loser_id"`
	WinnerScore string `json:"winner_score"`
	LoserScore  string `json:"loser_score"`
}

type MatchService interface {
	// RecordResult validates and applies a result submission: both ledgers
	// and the history record are written in one transaction, so a failure
	// part-way cannot leave them disagreeing.
	RecordResult(ctx context.Context, tournamentID int, input RecordResultInput) (*models.MatchResult, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error)
}

type matchService struct {
	txManager      repositories.TxManager
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	tournamentRepo repositories.TournamentRepository
	hub            *standings.Hub
	logger         *slog.Logger
}

func NewMatchService(
	txManager repositories.TxManager,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	tournamentRepo repositories.TournamentRepository,
	hub *standings.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txManager:      txManager,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		tournamentRepo: tournamentRepo,
		hub:            hub,
		logger:         logger,
	}
}

func parseScore(raw string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidScore, raw)
	}
	if score < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	return score, nil
}

func (s *matchService) RecordResult(ctx context.Context, tournamentID int, input RecordResultInput) (*models.MatchResult, error) {
	winnerScore, err := parseScore(input.WinnerScore)
	if err != nil {
		metrics.RejectedSubmissions.WithLabelValues("invalid_score").Inc()
		return nil, err
	}
	loserScore, err := parseScore(input.LoserScore)
	if err != nil {
		metrics.RejectedSubmissions.WithLabelValues("invalid_score").Inc()
		return nil, err
	}

	if input.WinnerID == input.LoserID {
		metrics.RejectedSubmissions.WithLabelValues("self_match").Inc()
		return nil, ErrSelfMatch
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournamentFinished(tournament.Status) {
		return nil, ErrTournamentFinished
	}

	match := &models.MatchResult{
		TournamentID: tournamentID,
		WinnerID:     input.WinnerID,
		LoserID:      input.LoserID,
		WinnerScore:  winnerScore,
		LoserScore:   loserScore,
		WinnerPoints: tournament.Rules.WinPoints,
		LoserPoints:  tournament.Rules.LossPoints,
		PlayedAt:     time.Now(),
	}

	err = s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Serialize the rematch-cap check per pair: without this, two
		// near-simultaneous submissions could both pass the count check.
		if err := s.matchRepo.AcquirePairLock(ctx, exec, input.WinnerID, input.LoserID); err != nil {
			return err
		}

		encounters, err := s.matchRepo.CountBetween(ctx, exec, tournamentID, input.WinnerID, input.LoserID)
		if err != nil {
			return err
		}
		if encounters >= rematchLimit {
			return ErrRematchLimitReached
		}

		winnerDelta := models.StandingDelta{
			Points:      tournament.Rules.WinPoints,
			Wins:        1,
			GamesPlayed: 1,
			Caroms:      winnerScore,
		}
		if err := s.standingRepo.ApplyDelta(ctx, exec, tournamentID, input.WinnerID, winnerDelta); err != nil {
			return err
		}

		loserDelta := models.StandingDelta{
			Points:      tournament.Rules.LossPoints,
			Losses:      1,
			GamesPlayed: 1,
			Caroms:      loserScore,
		}
		if err := s.standingRepo.ApplyDelta(ctx, exec, tournamentID, input.LoserID, loserDelta); err != nil {
			return err
		}

		return s.matchRepo.Create(ctx, exec, match)
	})
	if err != nil {
		if errors.Is(err, ErrRematchLimitReached) {
			metrics.RejectedSubmissions.WithLabelValues("rematch_limit").Inc()
			return nil, ErrRematchLimitReached
		}
		if errors.Is(err, repositories.ErrMatchPlayerInvalid) || errors.Is(err, repositories.ErrStandingPlayerInvalid) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to record result for tournament %d: %w", tournamentID, err)
	}

	metrics.MatchesRecorded.Inc()
	s.logger.Info("match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", tournamentID),
		slog.Int("winner_id", match.WinnerID),
		slog.Int("loser_id", match.LoserID),
	)
	s.hub.Broadcast(standings.Message{
		Type:         standings.EventResultRecorded,
		TournamentID: tournamentID,
		Payload:      match,
	})
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}
