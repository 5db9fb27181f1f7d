package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/caromclub/league-system/standings"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the club frontend origin once it has a fixed domain.
		return true
	},
}

type WebSocketHandler struct {
	hub *standings.Hub
}

func NewWebSocketHandler(hub *standings.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeStandings subscribes a scoreboard client to one tournament's
// leaderboard events.
func (h *WebSocketHandler) ServeStandings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		log.Printf("failed to upgrade connection for tournament %d: %v", tournamentID, err)
		return
	}

	h.hub.NewClient(conn, tournamentID)
}
