package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/goalkeeper/internal/store"
)

// SessionsHandler serves the play history:
//
//	GET /api/sessions
//	GET /api/sessions/{id}
//	GET /api/sessions/{id}/rounds
type SessionsHandler struct {
	store  *store.Store
	scores ScoreSource
}

// ScoreSource reports the published score of a session, such as one played
// by another instance sharing the scoreboard.
type ScoreSource interface {
	Score(ctx context.Context, sessionID string) (caught, missed int, err error)
}

// NewSessionsHandler creates a SessionsHandler backed by the store. scores may be
// nil; when set, sessions missing from the store are looked up there.
func NewSessionsHandler(s *store.Store, scores ScoreSource) *SessionsHandler {
	return &SessionsHandler{store: s, scores: scores}
}

type sessionResponse struct {
	ID        string  `json:"id"`
	Caught    int     `json:"caught"`
	Missed    int     `json:"missed"`
	StartedAt string  `json:"started_at,omitempty"`
	EndedAt   *string `json:"ended_at,omitempty"`
	// Remote marks a session known only from the scoreboard.
	Remote bool `json:"remote,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type roundResponse struct {
	Sequence  int     `json:"sequence"`
	Outcome   string  `json:"outcome"`
	Hand      string  `json:"hand,omitempty"`
	BallX     float64 `json:"ball_x"`
	BallY     float64 `json:"ball_y"`
	BallZ     float64 `json:"ball_z"`
	Ticks     int     `json:"ticks"`
	CreatedAt string  `json:"created_at"`
}

type listRoundsResponse struct {
	Rounds []roundResponse `json:"rounds"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	resp := sessionResponse{
		ID:        s.ID,
		Caught:    s.Caught,
		Missed:    s.Missed,
		StartedAt: s.StartedAt.Format(timeLayout),
	}
	if s.EndedAt != nil {
		ended := s.EndedAt.Format(timeLayout)
		resp.EndedAt = &ended
	}
	return resp
}

func (h *SessionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	parts := strings.Split(path, "/")
	switch {
	case path == "":
		h.list(w)
	case len(parts) == 1:
		h.get(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "rounds":
		h.rounds(w, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionsHandler) list(w http.ResponseWriter) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			if h.scores != nil {
				if caught, missed, err := h.scores.Score(r.Context(), id); err == nil {
					writeJSON(w, http.StatusOK, sessionResponse{ID: id, Caught: caught, Missed: missed, Remote: true})
					return
				}
			}
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *SessionsHandler) rounds(w http.ResponseWriter, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	rounds, err := h.store.Rounds().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}

	resp := listRoundsResponse{Rounds: make([]roundResponse, 0, len(rounds))}
	for _, rd := range rounds {
		resp.Rounds = append(resp.Rounds, roundResponse{
			Sequence:  rd.Sequence,
			Outcome:   rd.Outcome,
			Hand:      rd.Hand,
			BallX:     rd.BallX,
			BallY:     rd.BallY,
			BallZ:     rd.BallZ,
			Ticks:     rd.Ticks,
			CreatedAt: rd.CreatedAt.Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
