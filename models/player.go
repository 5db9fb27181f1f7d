package models

import "time"

// Player is a registered club member. Phone is optional and only used for the
// public result lookup.
type Player struct {
	ID        int       `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Nickname  *string   `json:"nickname,omitempty" db:"nickname"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	AvatarKey *string   `json:"-" db:"avatar_key"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
