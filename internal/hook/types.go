// Package hook runs external executables when a goalkeeper round finishes.
//
// A hook lives in its own directory under the hook dir with a hook.json manifest. It
// receives one JSON Request on stdin and answers with one JSON Response on stdout.
package hook

import "encoding/json"

// ManifestFile is the manifest name looked up in every hook directory.
const ManifestFile = "hook.json"

// Event names a round outcome a hook can subscribe to.
type Event string

const (
	EventCatch Event = "catch"
	EventGoal  Event = "goal"
	// EventAll subscribes a hook to every outcome.
	EventAll Event = "*"
)

// Manifest describes a hook and the events it wants.
type Manifest struct {
	Name        string  `json:"name"`
	Version     string  `json:"version"`
	Description string  `json:"description"`
	Executable  string  `json:"executable"`
	Events      []Event `json:"events"`
}

// Subscribes reports whether the manifest lists ev or the wildcard.
func (m Manifest) Subscribes(ev Event) bool {
	for _, e := range m.Events {
		if e == ev || e == EventAll {
			return true
		}
	}
	return false
}

// Score is the running session tally sent with each request.
type Score struct {
	Caught int `json:"caught"`
	Missed int `json:"missed"`
}

// Request is written to the hook's stdin.
type Request struct {
	Event     Event  `json:"event"`
	SessionID string `json:"session_id"`
	Round     int    `json:"round"`
	Hand      string `json:"hand,omitempty"`
	Score     Score  `json:"score"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its resolved paths.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
