package services

import "errors"

// Shared errors used across services and the HTTP mapping layer.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Result submission failures. None of these leave any side effect.
	ErrInvalidScore        = errors.New("score must be a non-negative integer")
	ErrSelfMatch           = errors.New("winner and loser must be different players")
	ErrRematchLimitReached = errors.New("these players have already met the maximum of two times")
	ErrTournamentFinished  = errors.New("tournament is completed or canceled, results can no longer be recorded")

	// Validation and business rules
	ErrPlayerNameRequired      = errors.New("player full name is required")
	ErrPhoneRequired           = errors.New("phone number is required")
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrTournamentInvalidRules  = errors.New("invalid tournament rules")
	ErrInvalidStatusTransition = errors.New("invalid tournament status transition")
	ErrPasswordTooShort        = errors.New("password is too short")
	ErrAvatarStorageDisabled   = errors.New("avatar storage is not configured")

	// Conflicts
	ErrPlayerNicknameConflict = errors.New("nickname is already in use")
	ErrPlayerPhoneConflict    = errors.New("phone number is already registered")
	ErrTournamentNameConflict = errors.New("tournament name already exists")

	// Authentication
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")

	// Entity-specific not-found errors (more context than the generic one)
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match result not found")
)
