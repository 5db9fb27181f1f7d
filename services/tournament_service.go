package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
)

type CreateTournamentInput struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Rules       *models.TournamentRules `json:"rules,omitempty"`
}

// UpdateRulesInput is the narrow "break glass" override: everything else in
// the ruleset is fixed once the tournament exists.
type UpdateRulesInput struct {
	QualifyThreshold int `json:"qualify_threshold"`
	TopSlots         int `json:"top_slots"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	UpdateRules(ctx context.Context, id int, input UpdateRulesInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
}

func NewTournamentService(tournamentRepo repositories.TournamentRepository) TournamentService {
	return &tournamentService{tournamentRepo: tournamentRepo}
}

func validateRules(rules models.TournamentRules) error {
	switch {
	case rules.WinPoints <= 0:
		return fmt.Errorf("%w: win points must be positive", ErrTournamentInvalidRules)
	case rules.LossPoints < 0:
		return fmt.Errorf("%w: loss points cannot be negative", ErrTournamentInvalidRules)
	case rules.LossPoints >= rules.WinPoints:
		return fmt.Errorf("%w: win points must exceed loss points", ErrTournamentInvalidRules)
	case rules.QualifyThreshold < 0:
		return fmt.Errorf("%w: qualification threshold cannot be negative", ErrTournamentInvalidRules)
	case rules.TopSlots <= 0:
		return fmt.Errorf("%w: top slots must be positive", ErrTournamentInvalidRules)
	case rules.ReplacementSlots < 0:
		return fmt.Errorf("%w: replacement slots cannot be negative", ErrTournamentInvalidRules)
	}
	return nil
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	rules := models.DefaultRules()
	if input.Rules != nil {
		rules = *input.Rules
	}
	if err := validateRules(rules); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Name:        name,
		Description: normalizeOptional(strings.TrimSpace(input.Description)),
		Status:      models.StatusSoon,
		Rules:       rules,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) UpdateRules(ctx context.Context, id int, input UpdateRulesInput) (*models.Tournament, error) {
	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := tournament.Rules
	updated.QualifyThreshold = input.QualifyThreshold
	updated.TopSlots = input.TopSlots
	if err := validateRules(updated); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.UpdateRules(ctx, id, input.QualifyThreshold, input.TopSlots); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update rules for tournament %d: %w", id, err)
	}

	tournament.Rules = updated
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.StatusSoon, models.StatusActive, models.StatusCompleted, models.StatusCanceled:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, status)
	}

	tournament, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, tournament.Status, status)
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to update status for tournament %d: %w", id, err)
	}

	tournament.Status = status
	return tournament, nil
}
