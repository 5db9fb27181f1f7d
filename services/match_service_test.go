package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caromclub/league-system/models"
)

type matchServiceFixture struct {
	service        MatchService
	txManager      *fakeTxManager
	matchRepo      *fakeMatchRepository
	standingRepo   *fakeStandingRepository
	tournamentRepo *fakeTournamentRepository
	tournament     *models.Tournament
}

func newMatchServiceFixture(t *testing.T, rules models.TournamentRules) *matchServiceFixture {
	t.Helper()

	txManager := &fakeTxManager{}
	matchRepo := newFakeMatchRepository()
	standingRepo := newFakeStandingRepository()
	tournamentRepo := newFakeTournamentRepository()

	tournament := tournamentRepo.add(&models.Tournament{
		Name:   "Spring League",
		Status: models.StatusActive,
		Rules:  rules,
	})

	return &matchServiceFixture{
		service:        NewMatchService(txManager, matchRepo, standingRepo, tournamentRepo, nil, testLogger()),
		txManager:      txManager,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		tournamentRepo: tournamentRepo,
		tournament:     tournament,
	}
}

func TestRecordResult_AppliesDeltasAndStoresHistory(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())
	ctx := context.Background()

	match, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID:    1,
		LoserID:     2,
		WinnerScore: "30",
		LoserScore:  "12",
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, 3, match.WinnerPoints)
	assert.Equal(t, 1, match.LoserPoints)
	assert.Equal(t, 30, match.WinnerScore)
	assert.Equal(t, 12, match.LoserScore)

	winner, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 0, winner.Losses)
	assert.Equal(t, 1, winner.GamesPlayed)
	assert.Equal(t, 30, winner.Caroms)

	loser, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, loser.Points)
	assert.Equal(t, 0, loser.Wins)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 1, loser.GamesPlayed)
	assert.Equal(t, 12, loser.Caroms)

	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Equal(t, 1, f.txManager.calls)
}

func TestRecordResult_ScoreParsing(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())
	ctx := context.Background()

	for _, raw := range []string{"", "abc", "-5", "3.5"} {
		_, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
			WinnerID:    1,
			LoserID:     2,
			WinnerScore: raw,
			LoserScore:  "10",
		})
		assert.ErrorIs(t, err, ErrInvalidScore, "winner score %q", raw)
	}

	// Whitespace around a valid number is tolerated.
	_, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID:    1,
		LoserID:     2,
		WinnerScore: " 30 ",
		LoserScore:  "0",
	})
	assert.NoError(t, err)
}

func TestRecordResult_SelfMatchRejected(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())

	_, err := f.service.RecordResult(context.Background(), f.tournament.ID, RecordResultInput{
		WinnerID:    4,
		LoserID:     4,
		WinnerScore: "30",
		LoserScore:  "30",
	})
	assert.ErrorIs(t, err, ErrSelfMatch)
}

func TestRecordResult_TournamentGates(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())
	ctx := context.Background()
	input := RecordResultInput{WinnerID: 1, LoserID: 2, WinnerScore: "30", LoserScore: "12"}

	_, err := f.service.RecordResult(ctx, 999, input)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	for _, status := range []models.TournamentStatus{models.StatusCompleted, models.StatusCanceled} {
		require.NoError(t, f.tournamentRepo.UpdateStatus(ctx, f.tournament.ID, status))
		_, err = f.service.RecordResult(ctx, f.tournament.ID, input)
		assert.ErrorIs(t, err, ErrTournamentFinished, "status %s", status)
	}
}

func TestRecordResult_RematchLimit(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())
	ctx := context.Background()

	_, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 1, LoserID: 2, WinnerScore: "30", LoserScore: "12",
	})
	require.NoError(t, err)

	// The second encounter counts regardless of who won it.
	_, err = f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 2, LoserID: 1, WinnerScore: "30", LoserScore: "25",
	})
	require.NoError(t, err)

	_, err = f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 1, LoserID: 2, WinnerScore: "30", LoserScore: "8",
	})
	assert.ErrorIs(t, err, ErrRematchLimitReached)

	// A third player is still fair game for both.
	_, err = f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 1, LoserID: 3, WinnerScore: "30", LoserScore: "20",
	})
	assert.NoError(t, err)
}

func TestRecordResult_UnknownPlayerRejected(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())
	f.standingRepo.knownPlayers = map[int]bool{1: true, 2: true}
	ctx := context.Background()

	_, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 1, LoserID: 99, WinnerScore: "30", LoserScore: "12",
	})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRecordResult_CustomRulePoints(t *testing.T) {
	rules := models.DefaultRules()
	rules.WinPoints = 5
	rules.LossPoints = 2
	f := newMatchServiceFixture(t, rules)
	ctx := context.Background()

	match, err := f.service.RecordResult(ctx, f.tournament.ID, RecordResultInput{
		WinnerID: 1, LoserID: 2, WinnerScore: "25", LoserScore: "19",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, match.WinnerPoints)
	assert.Equal(t, 2, match.LoserPoints)

	winner, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, winner.Points)
}

func TestListByTournament_RequiresTournament(t *testing.T) {
	f := newMatchServiceFixture(t, models.DefaultRules())

	_, err := f.service.ListByTournament(context.Background(), 42)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
