package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/ashveldt/wartide/internal/platform/timeouts"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsMsg is the typed envelope for every websocket frame.
type wsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// handleWatchBattle streams engagements for one battle as they are
// appended. Spectators that stop reading miss events rather than stalling
// resolution; the subscription buffer drops when full.
func (s *Server) handleWatchBattle(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["battleID"]
	if _, err := s.svc.GetBattle(r.Context(), battleID); err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the handshake error.
		return
	}
	defer conn.Close()

	events, cancel := s.svc.Watch(battleID)
	defer cancel()

	// Reader loop: its only job is to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeWS(conn, wsMsg{Type: "watching", Data: map[string]string{"battle_id": battleID}}); err != nil {
		return
	}

	for {
		select {
		case stored, ok := <-events:
			if !ok {
				return
			}
			if err := writeWS(conn, wsMsg{Type: "engagement", Data: engagementFromDomain(stored)}); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeWS(conn *websocket.Conn, msg wsMsg) error {
	_ = conn.SetWriteDeadline(time.Now().Add(timeouts.WebsocketWrite))
	return conn.WriteJSON(msg)
}
