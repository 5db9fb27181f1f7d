package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/caromclub/league-system/models"
)

var (
	ErrMatchNotFound          = errors.New("match result not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPlayerInvalid     = errors.New("match player conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.MatchResult) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchResult, error)
	// GetMostRecent returns the match with the latest played_at, optionally
	// scoped to one tournament. ErrMatchNotFound when history is empty.
	GetMostRecent(ctx context.Context, exec SQLExecutor, tournamentID *int) (*models.MatchResult, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// CountBetween counts recorded encounters between an unordered pair,
	// irrespective of who won each one.
	CountBetween(ctx context.Context, exec SQLExecutor, tournamentID, playerA, playerB int) (int, error)
	// AcquirePairLock takes a transaction-scoped advisory lock keyed on the
	// unordered pair, serializing the rematch-cap check against concurrent
	// submissions for the same two players.
	AcquirePairLock(ctx context.Context, exec SQLExecutor, playerA, playerB int) error
	Count(ctx context.Context) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.MatchResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO match_results
		    (tournament_id, winner_id, loser_id, winner_score, loser_score, winner_points, loser_points, played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID,
		match.WinnerID,
		match.LoserID,
		match.WinnerScore,
		match.LoserScore,
		match.WinnerPoints,
		match.LoserPoints,
		match.PlayedAt,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.MatchResult, error) {
	var m models.MatchResult
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.WinnerID, &m.LoserID,
		&m.WinnerScore, &m.LoserScore, &m.WinnerPoints, &m.LoserPoints,
		&m.PlayedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

const matchColumns = `id, tournament_id, winner_id, loser_id, winner_score, loser_score, winner_points, loser_points, played_at, created_at`

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.MatchResult, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM match_results WHERE id = $1`
	return r.scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetMostRecent(ctx context.Context, exec SQLExecutor, tournamentID *int) (*models.MatchResult, error) {
	executor := r.getExecutor(exec)
	if tournamentID != nil {
		query := `SELECT ` + matchColumns + ` FROM match_results
			WHERE tournament_id = $1
			ORDER BY played_at DESC, id DESC
			LIMIT 1`
		return r.scanMatch(executor.QueryRowContext(ctx, query, *tournamentID))
	}
	query := `SELECT ` + matchColumns + ` FROM match_results
		ORDER BY played_at DESC, id DESC
		LIMIT 1`
	return r.scanMatch(executor.QueryRowContext(ctx, query))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.MatchResult, error) {
	query := `
		SELECT m.id, m.tournament_id, m.winner_id, m.loser_id,
		       m.winner_score, m.loser_score, m.winner_points, m.loser_points,
		       m.played_at, m.created_at,
		       w.id, w.full_name, w.nickname, w.phone, w.avatar_key, w.created_at,
		       l.id, l.full_name, l.nickname, l.phone, l.avatar_key, l.created_at
		FROM match_results m
		JOIN players w ON m.winner_id = w.id
		JOIN players l ON m.loser_id = l.id
		WHERE m.tournament_id = $1
		ORDER BY m.played_at DESC, m.id DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.MatchResult, 0)
	for rows.Next() {
		var m models.MatchResult
		var winner, loser models.Player
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.WinnerID, &m.LoserID,
			&m.WinnerScore, &m.LoserScore, &m.WinnerPoints, &m.LoserPoints,
			&m.PlayedAt, &m.CreatedAt,
			&winner.ID, &winner.FullName, &winner.Nickname, &winner.Phone, &winner.AvatarKey, &winner.CreatedAt,
			&loser.ID, &loser.FullName, &loser.Nickname, &loser.Phone, &loser.AvatarKey, &loser.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		m.Winner = &winner
		m.Loser = &loser
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM match_results WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountBetween(ctx context.Context, exec SQLExecutor, tournamentID, playerA, playerB int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*)
		FROM match_results
		WHERE tournament_id = $1
		  AND LEAST(winner_id, loser_id) = LEAST($2::int, $3::int)
		  AND GREATEST(winner_id, loser_id) = GREATEST($2::int, $3::int)`

	var count int
	err := executor.QueryRowContext(ctx, query, tournamentID, playerA, playerB).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches between players %d and %d: %w", playerA, playerB, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) AcquirePairLock(ctx context.Context, exec SQLExecutor, playerA, playerB int) error {
	executor := r.getExecutor(exec)
	lo, hi := playerA, playerB
	if lo > hi {
		lo, hi = hi, lo
	}
	key := int64(lo)<<32 | int64(uint32(hi))
	if _, err := executor.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
		return fmt.Errorf("failed to acquire pair lock for players %d/%d: %w", playerA, playerB, err)
	}
	return nil
}

func (r *postgresMatchRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM match_results`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "match_results_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "match_results_winner_id_fkey", "match_results_loser_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
