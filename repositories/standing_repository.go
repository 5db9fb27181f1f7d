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
	ErrStandingNotFound      = errors.New("player standing not found")
	ErrStandingPlayerInvalid = errors.New("standing player conflict or invalid")
)

// StandingRepository is the single mutation path for ledger counters. Both
// delta methods express the increments in SQL so that concurrent submissions
// touching the same player cannot lose an update.
type StandingRepository interface {
	// ApplyDelta upserts: a player with no ledger entry yet gets one created
	// with the delta as its initial values.
	ApplyDelta(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) error
	// ApplyReversalDelta never creates a row. It reports false when the
	// ledger entry is missing, so callers can skip and log instead of
	// failing the reversal.
	ApplyReversalDelta(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) (bool, error)
	GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.PlayerStanding, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.PlayerStanding, error)
	ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) ApplyDelta(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO player_standings
		    (tournament_id, player_id, points, wins, losses, games_played, caroms, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT ON CONSTRAINT player_standings_tournament_player_key DO UPDATE SET
		    points       = player_standings.points + EXCLUDED.points,
		    wins         = player_standings.wins + EXCLUDED.wins,
		    losses       = player_standings.losses + EXCLUDED.losses,
		    games_played = player_standings.games_played + EXCLUDED.games_played,
		    caroms       = player_standings.caroms + EXCLUDED.caroms,
		    updated_at   = now()`

	_, err := executor.ExecContext(ctx, query,
		tournamentID, playerID,
		delta.Points, delta.Wins, delta.Losses, delta.GamesPlayed, delta.Caroms,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "player_standings_player_id_fkey" {
			return ErrStandingPlayerInvalid
		}
		return fmt.Errorf("failed to apply standing delta for t:%d p:%d: %w", tournamentID, playerID, err)
	}
	return nil
}

func (r *postgresStandingRepository) ApplyReversalDelta(ctx context.Context, exec SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) (bool, error) {
	executor := r.getExecutor(exec)
	query := `
		UPDATE player_standings SET
		    points       = points + $3,
		    wins         = wins + $4,
		    losses       = losses + $5,
		    games_played = games_played + $6,
		    caroms       = caroms + $7,
		    updated_at   = now()
		WHERE tournament_id = $1 AND player_id = $2`

	result, err := executor.ExecContext(ctx, query,
		tournamentID, playerID,
		delta.Points, delta.Wins, delta.Losses, delta.GamesPlayed, delta.Caroms,
	)
	if err != nil {
		return false, fmt.Errorf("failed to apply reversal delta for t:%d p:%d: %w", tournamentID, playerID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.PlayerStanding, error) {
	var s models.PlayerStanding
	err := rowScanner.Scan(
		&s.ID, &s.TournamentID, &s.PlayerID,
		&s.Points, &s.Wins, &s.Losses, &s.GamesPlayed, &s.Caroms,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) GetByTournamentAndPlayer(ctx context.Context, exec SQLExecutor, tournamentID, playerID int) (*models.PlayerStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, tournament_id, player_id, points, wins, losses, games_played, caroms, updated_at
		FROM player_standings
		WHERE tournament_id = $1 AND player_id = $2`
	row := executor.QueryRowContext(ctx, query, tournamentID, playerID)
	return r.scanStanding(row)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.PlayerStanding, error) {
	query := `
		SELECT s.id, s.tournament_id, s.player_id, s.points, s.wins, s.losses, s.games_played, s.caroms, s.updated_at,
		       p.id, p.full_name, p.nickname, p.phone, p.avatar_key, p.created_at
		FROM player_standings s
		JOIN players p ON s.player_id = p.id
		WHERE s.tournament_id = $1
		ORDER BY s.player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	standings := make([]*models.PlayerStanding, 0)
	for rows.Next() {
		var s models.PlayerStanding
		var p models.Player
		if scanErr := rows.Scan(
			&s.ID, &s.TournamentID, &s.PlayerID,
			&s.Points, &s.Wins, &s.Losses, &s.GamesPlayed, &s.Caroms,
			&s.UpdatedAt,
			&p.ID, &p.FullName, &p.Nickname, &p.Phone, &p.AvatarKey, &p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		s.Player = &p
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}

func (r *postgresStandingRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.PlayerStanding, error) {
	query := `
		SELECT id, tournament_id, player_id, points, wins, losses, games_played, caroms, updated_at
		FROM player_standings
		WHERE player_id = $1
		ORDER BY tournament_id ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for player %d: %w", playerID, err)
	}
	defer rows.Close()

	standings := make([]*models.PlayerStanding, 0)
	for rows.Next() {
		s, scanErr := r.scanStanding(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}
