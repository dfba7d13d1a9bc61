package server

import (
	"log"
	"net/http"
	"time"
)

// handsInterval paces the landmark feed at about 15 FPS.
const handsInterval = 66 * time.Millisecond

// HandsHandler streams the server tracker's landmarks and palm positions over a
// websocket, for overlays and debugging.
type HandsHandler struct {
	source TrackingSource
}

// NewHandsHandler creates a HandsHandler reading from source.
func NewHandsHandler(source TrackingSource) *HandsHandler {
	return &HandsHandler{source: source}
}

// ServeHTTP upgrades the connection and sends each new tracker output once.
func (h *HandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Drain client messages so close frames are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(handsInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-closed:
			return
		case <-ticker.C:
			tr, ok := h.source.LatestTracking()
			if !ok || tr.Seq == lastSeq {
				continue
			}
			lastSeq = tr.Seq

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(tr); err != nil {
				return
			}
		}
	}
}
