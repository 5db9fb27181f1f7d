package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
)

type reversalFixture struct {
	*matchServiceFixture
	reversal ReversalService
}

func newReversalFixture(t *testing.T) *reversalFixture {
	t.Helper()
	base := newMatchServiceFixture(t, models.DefaultRules())
	return &reversalFixture{
		matchServiceFixture: base,
		reversal:            NewReversalService(base.txManager, base.matchRepo, base.standingRepo, nil, testLogger()),
	}
}

func (f *reversalFixture) record(t *testing.T, winnerID, loserID int, winnerScore, loserScore string) *models.MatchResult {
	t.Helper()
	match, err := f.service.RecordResult(context.Background(), f.tournament.ID, RecordResultInput{
		WinnerID:    winnerID,
		LoserID:     loserID,
		WinnerScore: winnerScore,
		LoserScore:  loserScore,
	})
	require.NoError(t, err)
	return match
}

func TestUndoLast_RestoresLedgerAndRemovesRecord(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	f.record(t, 1, 2, "30", "12")
	before1, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	before2, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 2)
	require.NoError(t, err)

	f.record(t, 2, 1, "30", "28")

	report, err := f.reversal.UndoLast(ctx, &f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)
	assert.Zero(t, report.SkippedRecords)
	assert.Empty(t, report.LedgerSkips)

	after1, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, *before1, *after1)
	after2, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, *before2, *after2)

	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUndoLast_UsesStoredPointsNotCurrentRules(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	f.record(t, 1, 2, "30", "12")

	// Tighten the rules after the fact; reversal must apply the values that
	// were awarded at record time.
	f.tournamentRepo.tournaments[f.tournament.ID].Rules.WinPoints = 10
	f.tournamentRepo.tournaments[f.tournament.ID].Rules.LossPoints = 5

	report, err := f.reversal.UndoLast(ctx, &f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)

	winner, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, winner.Points)
	assert.Zero(t, winner.Wins)
	assert.Zero(t, winner.GamesPlayed)
	assert.Zero(t, winner.Caroms)
}

func TestUndoLast_EmptyHistoryIsNoOp(t *testing.T) {
	f := newReversalFixture(t)

	report, err := f.reversal.UndoLast(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, report.Reversed)
	assert.Zero(t, report.SkippedRecords)
}

func TestUndoLast_ScopedToTournament(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	other := f.tournamentRepo.add(&models.Tournament{
		Name:   "Autumn League",
		Status: models.StatusActive,
		Rules:  models.DefaultRules(),
	})

	f.record(t, 1, 2, "30", "12")
	_, err := f.service.RecordResult(ctx, other.ID, RecordResultInput{
		WinnerID: 3, LoserID: 4, WinnerScore: "30", LoserScore: "5",
	})
	require.NoError(t, err)

	// Scoped undo targets the first tournament even though the other holds
	// the globally most recent record.
	report, err := f.reversal.UndoLast(ctx, &f.tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)

	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	otherHistory, err := f.matchRepo.ListByTournament(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, otherHistory, 1)
}

func TestUndoLast_UnscopedPicksMostRecentAcrossTournaments(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	other := f.tournamentRepo.add(&models.Tournament{
		Name:   "Autumn League",
		Status: models.StatusActive,
		Rules:  models.DefaultRules(),
	})

	f.record(t, 1, 2, "30", "12")
	_, err := f.service.RecordResult(ctx, other.ID, RecordResultInput{
		WinnerID: 3, LoserID: 4, WinnerScore: "30", LoserScore: "5",
	})
	require.NoError(t, err)

	report, err := f.reversal.UndoLast(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)

	otherHistory, err := f.matchRepo.ListByTournament(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherHistory)
	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestReverseSelected_PartialBatch(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	m1 := f.record(t, 1, 2, "30", "12")
	f.record(t, 3, 4, "30", "20")
	m3 := f.record(t, 1, 3, "30", "15")

	report, err := f.reversal.ReverseSelected(ctx, []int{m1.ID, m3.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Reversed)
	assert.Zero(t, report.SkippedRecords)

	p1, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, p1.GamesPlayed)

	p3, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, p3.GamesPlayed)
	assert.Equal(t, 1, p3.Wins)

	history, err := f.matchRepo.ListByTournament(ctx, f.tournament.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 3, history[0].WinnerID)
}

func TestReverseSelected_MissingRecordsAreSkipped(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	match := f.record(t, 1, 2, "30", "12")

	report, err := f.reversal.ReverseSelected(ctx, []int{match.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)
	assert.Equal(t, 1, report.SkippedRecords)

	// Reversing the same record twice skips the second attempt.
	report, err = f.reversal.ReverseSelected(ctx, []int{match.ID})
	require.NoError(t, err)
	assert.Zero(t, report.Reversed)
	assert.Equal(t, 1, report.SkippedRecords)
}

func TestReverseSelected_MissingLedgerStillDeletesRecord(t *testing.T) {
	f := newReversalFixture(t)
	ctx := context.Background()

	match := f.record(t, 1, 2, "30", "12")

	// Simulate a ledger wiped out from under the history record.
	delete(f.standingRepo.standings, standingKey{f.tournament.ID, 2})

	report, err := f.reversal.ReverseSelected(ctx, []int{match.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reversed)
	require.Len(t, report.LedgerSkips, 1)
	assert.Equal(t, match.ID, report.LedgerSkips[0].MatchID)
	assert.Equal(t, 2, report.LedgerSkips[0].PlayerID)

	// The winner's ledger was still reversed and the record deleted.
	winner, err := f.standingRepo.GetByTournamentAndPlayer(ctx, nil, f.tournament.ID, 1)
	require.NoError(t, err)
	assert.Zero(t, winner.GamesPlayed)
	_, err = f.matchRepo.GetByID(ctx, nil, match.ID)
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
}
