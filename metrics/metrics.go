// Package metrics exposes the service's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MatchesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "league_matches_recorded_total",
		Help: "Number of match results recorded.",
	})
	MatchesReversed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "league_matches_reversed_total",
		Help: "Number of match results reversed (undo or bulk delete).",
	})
	ReversalLedgerSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "league_reversal_ledger_skips_total",
		Help: "Reversals that deleted a match record but found a player ledger missing.",
	})
	RejectedSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "league_rejected_submissions_total",
		Help: "Match submissions rejected by validation.",
	}, []string{"reason"})
)

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
