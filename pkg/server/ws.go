package server

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/review"
)

// progressEvent is one message on a session's websocket stream. Stage
// percentages are the orchestrator's fixed checkpoints, not server-side
// incremental progress.
type progressEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Percent   int    `json:"percent,omitempty"`
	Label     string `json:"label,omitempty"`
	State     string `json:"state,omitempty"`
}

// subscriber serializes writes to one websocket connection; gorilla/websocket
// allows at most one concurrent writer per connection.
type subscriber struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (sub *subscriber) send(event progressEvent) error {
	sub.writeMu.Lock()
	defer sub.writeMu.Unlock()
	return sub.conn.WriteJSON(event)
}

// sessionWS subscribes a websocket connection to one session's progress and
// state events.
func (s *Server) sessionWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(sessionID); err != nil {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	sub := &subscriber{conn: conn}

	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[*subscriber]struct{})
	}
	s.subs[sessionID][sub] = struct{}{}
	s.mu.Unlock()

	// Reader loop only to detect close; clients do not send messages.
	go func() {
		defer s.dropSubscriber(sessionID, sub)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropSubscriber(sessionID string, sub *subscriber) {
	s.mu.Lock()
	if subs, ok := s.subs[sessionID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(s.subs, sessionID)
		}
	}
	s.mu.Unlock()
	_ = sub.conn.Close()
}

// broadcastProgress sends one stage checkpoint to the session's subscribers.
func (s *Server) broadcastProgress(sessionID string, stage extraction.Stage) {
	s.broadcast(sessionID, progressEvent{
		Type:      "progress",
		SessionID: sessionID,
		Percent:   stage.Percent,
		Label:     stage.Label,
	})
}

// broadcastState sends a state-transition event to the session's subscribers.
func (s *Server) broadcastState(session *review.Session) {
	s.broadcast(session.ID, progressEvent{
		Type:      "state",
		SessionID: session.ID,
		State:     string(session.State()),
	})
}

func (s *Server) broadcast(sessionID string, event progressEvent) {
	s.mu.RLock()
	subs := make([]*subscriber, 0, len(s.subs[sessionID]))
	for sub := range s.subs[sessionID] {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(event); err != nil {
			s.dropSubscriber(sessionID, sub)
		}
	}
}
