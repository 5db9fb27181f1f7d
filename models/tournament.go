package models

import "time"

// TournamentStatus represents tournament lifecycle statuses, mirroring the ENUM in the DB.
type TournamentStatus string

const (
	StatusSoon      TournamentStatus = "soon"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

// TournamentRules holds the per-tournament scoring and qualification
// parameters. All fields are fixed at creation time except QualifyThreshold
// and TopSlots, which have a narrow administrative override path.
type TournamentRules struct {
	WinPoints        int `json:"win_points" db:"win_points"`
	LossPoints       int `json:"loss_points" db:"loss_points"`
	QualifyThreshold int `json:"qualify_threshold" db:"qualify_threshold"`
	TopSlots         int `json:"top_slots" db:"top_slots"`
	ReplacementSlots int `json:"replacement_slots" db:"replacement_slots"`
}

// DefaultRules returns the club's standard ruleset.
func DefaultRules() TournamentRules {
	return TournamentRules{
		WinPoints:        3,
		LossPoints:       1,
		QualifyThreshold: 32,
		TopSlots:         8,
		ReplacementSlots: 2,
	}
}

type Tournament struct {
	ID          int              `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	Status      TournamentStatus `json:"status" db:"status"`
	Rules       TournamentRules  `json:"rules"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
}
