package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caromclub/league-system/models"
)

func TestTournamentCreate_DefaultsAndValidation(t *testing.T) {
	repo := newFakeTournamentRepository()
	service := NewTournamentService(repo)
	ctx := context.Background()

	_, err := service.Create(ctx, CreateTournamentInput{Name: "  "})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	tournament, err := service.Create(ctx, CreateTournamentInput{Name: "Winter Cup"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSoon, tournament.Status)
	assert.Equal(t, models.DefaultRules(), tournament.Rules)

	_, err = service.Create(ctx, CreateTournamentInput{Name: "Winter Cup"})
	assert.ErrorIs(t, err, ErrTournamentNameConflict)
}

func TestTournamentCreate_RejectsInvalidRules(t *testing.T) {
	service := NewTournamentService(newFakeTournamentRepository())
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(r *models.TournamentRules)
	}{
		{"zero win points", func(r *models.TournamentRules) { r.WinPoints = 0 }},
		{"negative loss points", func(r *models.TournamentRules) { r.LossPoints = -1 }},
		{"loss points not below win points", func(r *models.TournamentRules) { r.LossPoints = r.WinPoints }},
		{"negative threshold", func(r *models.TournamentRules) { r.QualifyThreshold = -1 }},
		{"zero top slots", func(r *models.TournamentRules) { r.TopSlots = 0 }},
		{"negative replacement slots", func(r *models.TournamentRules) { r.ReplacementSlots = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rules := models.DefaultRules()
			tc.mutate(&rules)
			_, err := service.Create(ctx, CreateTournamentInput{Name: tc.name, Rules: &rules})
			assert.ErrorIs(t, err, ErrTournamentInvalidRules)
		})
	}
}

func TestTournamentUpdateRules_NarrowOverride(t *testing.T) {
	repo := newFakeTournamentRepository()
	service := NewTournamentService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, CreateTournamentInput{Name: "Winter Cup"})
	require.NoError(t, err)

	updated, err := service.UpdateRules(ctx, created.ID, UpdateRulesInput{QualifyThreshold: 20, TopSlots: 4})
	require.NoError(t, err)
	assert.Equal(t, 20, updated.Rules.QualifyThreshold)
	assert.Equal(t, 4, updated.Rules.TopSlots)

	// The scoring parameters are untouched by the override.
	assert.Equal(t, models.DefaultRules().WinPoints, updated.Rules.WinPoints)
	assert.Equal(t, models.DefaultRules().LossPoints, updated.Rules.LossPoints)
	assert.Equal(t, models.DefaultRules().ReplacementSlots, updated.Rules.ReplacementSlots)

	_, err = service.UpdateRules(ctx, created.ID, UpdateRulesInput{QualifyThreshold: -1, TopSlots: 4})
	assert.ErrorIs(t, err, ErrTournamentInvalidRules)

	_, err = service.UpdateRules(ctx, 999, UpdateRulesInput{QualifyThreshold: 20, TopSlots: 4})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTournamentUpdateStatus_Transitions(t *testing.T) {
	repo := newFakeTournamentRepository()
	service := NewTournamentService(repo)
	ctx := context.Background()

	created, err := service.Create(ctx, CreateTournamentInput{Name: "Winter Cup"})
	require.NoError(t, err)

	_, err = service.UpdateStatus(ctx, created.ID, models.StatusCompleted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	updated, err := service.UpdateStatus(ctx, created.ID, models.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.Status)

	updated, err = service.UpdateStatus(ctx, created.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	// Terminal statuses stay terminal.
	_, err = service.UpdateStatus(ctx, created.ID, models.StatusActive)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = service.UpdateStatus(ctx, created.ID, "paused")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
