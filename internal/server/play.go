package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/goalkeeper/internal/detector"
)

const (
	writeWait = 2 * time.Second
	// maxMessageSize bounds one client message; two hands of 21 points fit easily.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Client message types on /api/play.
const (
	MessageHands = "hands"
)

// clientMessage is a message sent by a browser on /api/play.
type clientMessage struct {
	Type  string              `json:"type"`
	Hands []detector.WireHand `json:"hands"`
}

// PlayHandler streams game frames to a client and accepts hand landmarks from it.
type PlayHandler struct {
	game Game
}

// NewPlayHandler creates a PlayHandler for the given game.
func NewPlayHandler(g Game) *PlayHandler {
	return &PlayHandler{game: g}
}

// ServeHTTP upgrades the connection. Frames are written from a separate goroutine;
// this goroutine reads client messages until the connection drops.
func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	frames, unsubscribe := h.game.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-done:
				return
			case frame, ok := <-frames:
				if !ok {
					conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseGoingAway, "game stopped"),
						time.Now().Add(writeWait))
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			}
		}
	}()

	// The client's last hands must not keep catching balls after it leaves.
	var lastSeq uint64
	defer func() {
		if lastSeq != 0 {
			h.game.ReleaseHands(lastSeq)
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ignoring malformed play message: %v", err)
			continue
		}

		switch msg.Type {
		case MessageHands:
			lastSeq = h.game.SubmitHands(detector.FromWire(msg.Hands))
		default:
			log.Printf("Ignoring play message of type %q", msg.Type)
		}
	}
}
