package api

import (
	"net/http"

	"github.com/ayusman/goalkeeper/internal/hook"
)

// HooksHandler lists discovered hooks at GET /api/hooks. POST rescans the hook dir.
type HooksHandler struct {
	manager *hook.Manager
}

// NewHooksHandler creates a HooksHandler.
func NewHooksHandler(m *hook.Manager) *HooksHandler {
	return &HooksHandler{manager: m}
}

type hookResponse struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description,omitempty"`
	Events      []hook.Event `json:"events"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

func (h *HooksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := h.manager.Discover(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to discover hooks")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hooks := h.manager.List()
	resp := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		resp.Hooks = append(resp.Hooks, hookResponse{
			Name:        hk.Manifest.Name,
			Version:     hk.Manifest.Version,
			Description: hk.Manifest.Description,
			Events:      hk.Manifest.Events,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
