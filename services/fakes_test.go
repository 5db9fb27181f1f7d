package services

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
)

// The fakes below back the service tests with in-memory state. They accept
// the SQLExecutor argument of the repository interfaces but ignore it; the
// fake transaction manager invokes the callback with a nil executor.

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.calls++
	return fn(nil)
}

type fakeTournamentRepository struct {
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepository() *fakeTournamentRepository {
	return &fakeTournamentRepository{nextID: 1, tournaments: make(map[int]*models.Tournament)}
}

func (r *fakeTournamentRepository) add(t *models.Tournament) *models.Tournament {
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t
	return t
}

func (r *fakeTournamentRepository) Create(_ context.Context, tournament *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.Name == tournament.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	r.add(tournament)
	return nil
}

func (r *fakeTournamentRepository) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepository) List(_ context.Context) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepository) UpdateRules(_ context.Context, id, qualifyThreshold, topSlots int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Rules.QualifyThreshold = qualifyThreshold
	t.Rules.TopSlots = topSlots
	return nil
}

func (r *fakeTournamentRepository) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepository) Count(_ context.Context, status *models.TournamentStatus) (int, error) {
	count := 0
	for _, t := range r.tournaments {
		if status == nil || t.Status == *status {
			count++
		}
	}
	return count, nil
}

type standingKey struct {
	tournamentID int
	playerID     int
}

type fakeStandingRepository struct {
	nextID    int
	standings map[standingKey]*models.PlayerStanding
	// knownPlayers restricts which player IDs the ledger accepts,
	// mimicking the player FK. Nil accepts any ID.
	knownPlayers map[int]bool
}

func newFakeStandingRepository() *fakeStandingRepository {
	return &fakeStandingRepository{nextID: 1, standings: make(map[standingKey]*models.PlayerStanding)}
}

func (r *fakeStandingRepository) ApplyDelta(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) error {
	if r.knownPlayers != nil && !r.knownPlayers[playerID] {
		return repositories.ErrStandingPlayerInvalid
	}
	key := standingKey{tournamentID, playerID}
	s, ok := r.standings[key]
	if !ok {
		s = &models.PlayerStanding{ID: r.nextID, TournamentID: tournamentID, PlayerID: playerID}
		r.nextID++
		r.standings[key] = s
	}
	s.Points += delta.Points
	s.Wins += delta.Wins
	s.Losses += delta.Losses
	s.GamesPlayed += delta.GamesPlayed
	s.Caroms += delta.Caroms
	return nil
}

func (r *fakeStandingRepository) ApplyReversalDelta(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int, delta models.StandingDelta) (bool, error) {
	s, ok := r.standings[standingKey{tournamentID, playerID}]
	if !ok {
		return false, nil
	}
	s.Points += delta.Points
	s.Wins += delta.Wins
	s.Losses += delta.Losses
	s.GamesPlayed += delta.GamesPlayed
	s.Caroms += delta.Caroms
	return true, nil
}

func (r *fakeStandingRepository) GetByTournamentAndPlayer(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) (*models.PlayerStanding, error) {
	s, ok := r.standings[standingKey{tournamentID, playerID}]
	if !ok {
		return nil, repositories.ErrStandingNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeStandingRepository) ListByTournament(_ context.Context, tournamentID int) ([]*models.PlayerStanding, error) {
	out := make([]*models.PlayerStanding, 0)
	for key, s := range r.standings {
		if key.tournamentID == tournamentID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *fakeStandingRepository) ListByPlayer(_ context.Context, playerID int) ([]*models.PlayerStanding, error) {
	out := make([]*models.PlayerStanding, 0)
	for key, s := range r.standings {
		if key.playerID == playerID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TournamentID < out[j].TournamentID })
	return out, nil
}

type fakeMatchRepository struct {
	nextID  int
	matches map[int]*models.MatchResult
	order   []int
}

func newFakeMatchRepository() *fakeMatchRepository {
	return &fakeMatchRepository{nextID: 1, matches: make(map[int]*models.MatchResult)}
}

func (r *fakeMatchRepository) Create(_ context.Context, _ repositories.SQLExecutor, match *models.MatchResult) error {
	match.ID = r.nextID
	r.nextID++
	copied := *match
	r.matches[match.ID] = &copied
	r.order = append(r.order, match.ID)
	return nil
}

func (r *fakeMatchRepository) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.MatchResult, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepository) GetMostRecent(_ context.Context, _ repositories.SQLExecutor, tournamentID *int) (*models.MatchResult, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		m, ok := r.matches[r.order[i]]
		if !ok {
			continue
		}
		if tournamentID != nil && m.TournamentID != *tournamentID {
			continue
		}
		copied := *m
		return &copied, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepository) ListByTournament(_ context.Context, tournamentID int) ([]*models.MatchResult, error) {
	out := make([]*models.MatchResult, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		m, ok := r.matches[r.order[i]]
		if ok && m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMatchRepository) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepository) CountBetween(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerA, playerB int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if (m.WinnerID == playerA && m.LoserID == playerB) || (m.WinnerID == playerB && m.LoserID == playerA) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepository) AcquirePairLock(_ context.Context, _ repositories.SQLExecutor, _, _ int) error {
	return nil
}

func (r *fakeMatchRepository) Count(_ context.Context) (int, error) {
	return len(r.matches), nil
}

type fakePlayerRepository struct {
	nextID  int
	players map[int]*models.Player
}

func newFakePlayerRepository() *fakePlayerRepository {
	return &fakePlayerRepository{nextID: 1, players: make(map[int]*models.Player)}
}

func (r *fakePlayerRepository) Create(_ context.Context, player *models.Player) error {
	for _, existing := range r.players {
		if player.Nickname != nil && existing.Nickname != nil && *player.Nickname == *existing.Nickname {
			return repositories.ErrPlayerNicknameConflict
		}
		if player.Phone != nil && existing.Phone != nil && *player.Phone == *existing.Phone {
			return repositories.ErrPlayerPhoneConflict
		}
	}
	player.ID = r.nextID
	r.nextID++
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepository) GetByID(_ context.Context, id int) (*models.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepository) GetByPhone(_ context.Context, phone string) (*models.Player, error) {
	for _, p := range r.players {
		if p.Phone != nil && *p.Phone == phone {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepository) List(_ context.Context) ([]*models.Player, error) {
	out := make([]*models.Player, 0, len(r.players))
	for _, p := range r.players {
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepository) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	p, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = avatarKey
	return nil
}

func (r *fakePlayerRepository) Count(_ context.Context) (int, error) {
	return len(r.players), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
