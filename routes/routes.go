package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/caromclub/league-system/handlers"
	"github.com/caromclub/league-system/metrics"
	"github.com/caromclub/league-system/middleware"
	"github.com/caromclub/league-system/models"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticated := middleware.Authenticate([]byte(jwtSecret))
	organizers := middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)
	admins := middleware.Authorize(models.RoleAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/ws/standings/{tournamentID}", webSocketHandler.ServeStandings)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/standings", standingsHandler.GetStandings)
		r.Get("/{tournamentID}/matches", matchHandler.ListByTournament)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizers)

			r.Post("/", tournamentHandler.Create)
			r.Patch("/{tournamentID}/rules", tournamentHandler.UpdateRules)
			r.Put("/{tournamentID}/status", tournamentHandler.UpdateStatus)
			r.Post("/{tournamentID}/matches", matchHandler.RecordResult)
			r.Post("/{tournamentID}/matches/undo-last", matchHandler.UndoLast)
		})
	})

	router.Route("/players", func(r chi.Router) {
		// Public lookup for club members, no token needed.
		r.Get("/lookup", playerHandler.LookupByPhone)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(organizers)

			r.Get("/", playerHandler.List)
			r.Post("/", playerHandler.Register)
			r.Put("/{playerID}/avatar", playerHandler.UploadAvatar)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Use(organizers)

		r.Post("/matches/undo-last", matchHandler.UndoLastGlobal)
		r.Post("/matches/bulk-delete", matchHandler.BulkDelete)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Use(admins)

		r.Get("/admin/dashboard", dashboardHandler.GetStats)
	})
}
