package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// liveEvent is one submission verdict broadcast to every /game/live
// subscriber: a supplement beyond the wire contract, never consulted by
// the pipeline itself, so a stalled or disconnected viewer can never
// affect whether a score is accepted.
type liveEvent struct {
	PlayerID string `json:"playerId"`
	Score int `json:"score"`
	Accepted bool `json:"accepted"`
	Reason string `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize: 1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveHub fans out submission verdicts to every connected viewer. Grounded
// on the per-connection sendCh/writePump split of a realtime snake-game
// server: one goroutine per viewer reads from its own buffered channel so
// a slow viewer never blocks the handler publishing an event.
type liveHub struct {
	mu sync.Mutex
	viewers map[chan liveEvent]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{viewers: make(map[chan liveEvent]struct{})}
}

func (h *liveHub) subscribe() chan liveEvent {
	ch := make(chan liveEvent, 8)
	h.mu.Lock()
	h.viewers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *liveHub) unsubscribe(ch chan liveEvent) {
	h.mu.Lock()
	delete(h.viewers, ch)
	h.mu.Unlock()
	close(ch)
}

// publish is non-blocking: a viewer whose buffer is full drops the event
// rather than stalling every other subscriber.
func (h *liveHub) publish(ev liveEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.viewers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// handleGameLive upgrades to a websocket and streams every subsequent
// submission verdict as JSON until the viewer disconnects. Purely an
// observability feed for a dashboard; it never reads anything from the
// client connection beyond the close handshake.
func (s *Server) handleGameLive(w http.ResponseWriter, r *http.Request) {
	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.live.subscribe()
	defer s.live.unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
