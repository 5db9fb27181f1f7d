package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/caromclub/league-system/metrics"
	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
	"github.com/caromclub/league-system/standings"
)

// LedgerSkip reports a reversal that deleted a match record but could not
// adjust a player's ledger because it no longer exists. The record deletion
// still proceeds: an orphaned history record is worse than a missed stat
// reversal, but the skip is surfaced so operators can reconcile.
type LedgerSkip struct {
	MatchID  int `json:"match_id"`
	PlayerID int `json:"player_id"`
}

// ReversalReport summarizes a reversal operation for the caller.
type ReversalReport struct {
	Reversed       int          `json:"reversed"`
	SkippedRecords int          `json:"skipped_records"`
	LedgerSkips    []LedgerSkip `json:"ledger_skips,omitempty"`
}

type ReversalService interface {
	// UndoLast reverses the most recent match, optionally scoped to one
	// tournament. An empty history is a no-op, not an error.
	UndoLast(ctx context.Context, tournamentID *int) (*ReversalReport, error)
	// ReverseSelected reverses each identified record. Records missing at
	// lookup time are skipped without failing the batch.
	ReverseSelected(ctx context.Context, matchIDs []int) (*ReversalReport, error)
}

type reversalService struct {
	txManager    repositories.TxManager
	matchRepo    repositories.MatchRepository
	standingRepo repositories.StandingRepository
	hub          *standings.Hub
	logger       *slog.Logger
}

func NewReversalService(
	txManager repositories.TxManager,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	hub *standings.Hub,
	logger *slog.Logger,
) ReversalService {
	return &reversalService{
		txManager:    txManager,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		hub:          hub,
		logger:       logger,
	}
}

func (s *reversalService) UndoLast(ctx context.Context, tournamentID *int) (*ReversalReport, error) {
	last, err := s.matchRepo.GetMostRecent(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return &ReversalReport{}, nil
		}
		return nil, fmt.Errorf("failed to find the most recent match: %w", err)
	}
	return s.ReverseSelected(ctx, []int{last.ID})
}

func (s *reversalService) ReverseSelected(ctx context.Context, matchIDs []int) (*ReversalReport, error) {
	report := &ReversalReport{}

	for _, id := range matchIDs {
		var reversed *models.MatchResult
		var skips []LedgerSkip

		err := s.txManager.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			// Re-fetch inside the transaction: the record may have been
			// reversed by a concurrent operation since selection.
			match, err := s.matchRepo.GetByID(ctx, exec, id)
			if err != nil {
				return err
			}
			skips, err = s.reverseOne(ctx, exec, match)
			if err != nil {
				return err
			}
			reversed = match
			return nil
		})
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				report.SkippedRecords++
				continue
			}
			return nil, fmt.Errorf("failed to reverse match %d: %w", id, err)
		}

		report.Reversed++
		report.LedgerSkips = append(report.LedgerSkips, skips...)
		metrics.MatchesReversed.Inc()
		s.hub.Broadcast(standings.Message{
			Type:         standings.EventResultReversed,
			TournamentID: reversed.TournamentID,
			Payload:      reversed,
		})
	}

	return report, nil
}

// reverseOne applies the inverse of the deltas recorded with the match, using
// the points and scores stored on the record rather than current
// configuration, then deletes the record. A missing ledger is skipped while
// the record is still deleted.
func (s *reversalService) reverseOne(ctx context.Context, exec repositories.SQLExecutor, match *models.MatchResult) ([]LedgerSkip, error) {
	var skips []LedgerSkip

	winnerDelta := models.StandingDelta{
		Points:      match.WinnerPoints,
		Wins:        1,
		GamesPlayed: 1,
		Caroms:      match.WinnerScore,
	}
	applied, err := s.standingRepo.ApplyReversalDelta(ctx, exec, match.TournamentID, match.WinnerID, winnerDelta.Negate())
	if err != nil {
		return nil, err
	}
	if !applied {
		skips = append(skips, LedgerSkip{MatchID: match.ID, PlayerID: match.WinnerID})
	}

	loserDelta := models.StandingDelta{
		Points:      match.LoserPoints,
		Losses:      1,
		GamesPlayed: 1,
		Caroms:      match.LoserScore,
	}
	applied, err = s.standingRepo.ApplyReversalDelta(ctx, exec, match.TournamentID, match.LoserID, loserDelta.Negate())
	if err != nil {
		return nil, err
	}
	if !applied {
		skips = append(skips, LedgerSkip{MatchID: match.ID, PlayerID: match.LoserID})
	}

	for _, skip := range skips {
		metrics.ReversalLedgerSkips.Inc()
		s.logger.Warn("ledger missing during reversal, stat adjustment skipped",
			slog.Int("match_id", skip.MatchID),
			slog.Int("player_id", skip.PlayerID),
		)
	}

	return skips, s.matchRepo.Delete(ctx, exec, match.ID)
}
