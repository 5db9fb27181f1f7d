// Package standings implements the tiered ranking used for club tournament
// leaderboards, plus the websocket hub that pushes leaderboard refresh events
// to connected scoreboards.
package standings

import (
	"math"
	"sort"

	"github.com/caromclub/league-system/models"
)

// Tier identifies which qualification bucket a ranked entry landed in.
type Tier string

const (
	TierQualified   Tier = "qualified"
	TierReplacement Tier = "replacement"
	TierRemainder   Tier = "remainder"
)

// Entry is one row of the final leaderboard.
type Entry struct {
	Position    int            `json:"position"`
	Tier        Tier           `json:"tier"`
	PlayerID    int            `json:"player_id"`
	Points      int            `json:"points"`
	Wins        int            `json:"wins"`
	Losses      int            `json:"losses"`
	GamesPlayed int            `json:"games_played"`
	Caroms      int            `json:"caroms"`
	Average     float64        `json:"average"`
	Player      *models.Player `json:"player,omitempty"`
}

// ComputeRanking produces the ordered leaderboard for one tournament.
//
// Players with games_played at or above the qualification threshold are
// eligible; the rest are not. Both groups are ordered by points descending
// with wins descending as the tie-break (further ties keep input order). The
// first TopSlots eligible players form the qualified tier and the next
// ReplacementSlots the replacement tier. Leftover eligible players are merged
// with the ineligible ones, re-sorted under the same comparator, and appended
// as the remainder tier. Running out of games therefore never lifts an
// inactive player above an eligible one, but low-activity players still show
// at the bottom instead of disappearing from the board.
//
// The result is a total function of its inputs: every input row appears
// exactly once.
func ComputeRanking(rows []*models.PlayerStanding, rules models.TournamentRules) []Entry {
	eligible := make([]*models.PlayerStanding, 0, len(rows))
	ineligible := make([]*models.PlayerStanding, 0)
	for _, s := range rows {
		if s.GamesPlayed >= rules.QualifyThreshold {
			eligible = append(eligible, s)
		} else {
			ineligible = append(ineligible, s)
		}
	}

	sortByPointsWins(eligible)

	topSlots := clampSlots(rules.TopSlots, len(eligible))
	replacementSlots := clampSlots(rules.ReplacementSlots, len(eligible)-topSlots)

	qualified := eligible[:topSlots]
	replacement := eligible[topSlots : topSlots+replacementSlots]

	remainder := make([]*models.PlayerStanding, 0, len(eligible)-topSlots-replacementSlots+len(ineligible))
	remainder = append(remainder, eligible[topSlots+replacementSlots:]...)
	remainder = append(remainder, ineligible...)
	sortByPointsWins(remainder)

	entries := make([]Entry, 0, len(rows))
	entries = appendTier(entries, qualified, TierQualified)
	entries = appendTier(entries, replacement, TierReplacement)
	entries = appendTier(entries, remainder, TierRemainder)
	return entries
}

func sortByPointsWins(rows []*models.PlayerStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Wins > rows[j].Wins
	})
}

func clampSlots(slots, available int) int {
	if slots < 0 {
		return 0
	}
	if slots > available {
		return available
	}
	return slots
}

func appendTier(entries []Entry, rows []*models.PlayerStanding, tier Tier) []Entry {
	for _, s := range rows {
		entries = append(entries, Entry{
			Position:    len(entries) + 1,
			Tier:        tier,
			PlayerID:    s.PlayerID,
			Points:      s.Points,
			Wins:        s.Wins,
			Losses:      s.Losses,
			GamesPlayed: s.GamesPlayed,
			Caroms:      s.Caroms,
			Average:     averageCaroms(s.Caroms, s.GamesPlayed),
			Player:      s.Player,
		})
	}
	return entries
}

func averageCaroms(caroms, gamesPlayed int) float64 {
	if gamesPlayed == 0 {
		return 0
	}
	return math.Round(float64(caroms)/float64(gamesPlayed)*100) / 100
}
