package models

import "time"

// PlayerStanding is a player's cumulative ledger within one tournament.
// The counters are denormalized from match history for fast leaderboard
// reads; they are mutated exclusively through atomic SQL increments so that
// concurrent result submissions cannot lose updates. History remains the
// source of truth for audit and reversal only.
type PlayerStanding struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	Points       int       `json:"points" db:"points"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	Caroms       int       `json:"caroms" db:"caroms"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by the service layer.
	Player *Player `json:"player,omitempty" db:"-"`
}

// StandingDelta is one match's contribution to a ledger. The same shape is
// applied with negated fields when a match is reversed.
type StandingDelta struct {
	Points      int
	Wins        int
	Losses      int
	GamesPlayed int
	Caroms      int
}

// Negate returns the inverse delta.
func (d StandingDelta) Negate() StandingDelta {
	return StandingDelta{
		Points:      -d.Points,
		Wins:        -d.Wins,
		Losses:      -d.Losses,
		GamesPlayed: -d.GamesPlayed,
		Caroms:      -d.Caroms,
	}
}
