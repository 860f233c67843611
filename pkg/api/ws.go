package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 << 10
)

// HandleFavoritesWS streams the caller's favorite changes. The first frame
// lists the current favorite keys so a page can resync after reconnecting.
func (s *Server) HandleFavoritesWS(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscribe before reading the snapshot so no change falls in between.
	sub := s.svc.Favorites.Subscribe(ctx, user.ID)
	defer sub.Close()

	keys, err := s.svc.Favorites.Keys(ctx, user.ID)
	if err != nil {
		s.logger.Errorf("loading favorites for %s: %v", user.ID, err)
		return
	}
	snapshot := WSMessage{Type: "init", Keys: make([]string, 0, len(keys))}
	for k := range keys {
		snapshot.Keys = append(snapshot.Keys, k.String())
	}
	sort.Strings(snapshot.Keys)
	if err := writeFrame(conn, snapshot); err != nil {
		return
	}

	go readPump(conn, cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	s.logger.Debugf("favorites socket opened for %s", user.ID)
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			ev := e
			if err := writeFrame(conn, WSMessage{Type: e.Type, Event: &ev}); err != nil {
				s.logger.Debugf("favorites socket write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sub.Done():
			return
		case <-ctx.Done():
			s.logger.Debugf("favorites socket closed for %s", user.ID)
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, msg WSMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump discards client frames and cancels once the peer goes away.
func readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
