package models

import "time"

// MatchResult is one entry in the match history. WinnerPoints and LossPoints
// capture the points awarded under the rules in force at record time, so a
// later reversal applies exactly the deltas that were applied originally.
type MatchResult struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	WinnerID     int       `json:"winner_id" db:"winner_id"`
	LoserID      int       `json:"loser_id" db:"loser_id"`
	WinnerScore  int       `json:"winner_score" db:"winner_score"`
	LoserScore   int       `json:"loser_score" db:"loser_score"`
	WinnerPoints int       `json:"winner_points" db:"winner_points"`
	LoserPoints  int       `json:"loser_points" db:"loser_points"`
	PlayedAt     time.Time `json:"played_at" db:"played_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Winner *Player `json:"winner,omitempty" db:"-"`
	Loser  *Player `json:"loser,omitempty" db:"-"`
}
