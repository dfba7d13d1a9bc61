// Command score-log is an example goalkeeper hook. It appends one line per finished
// round to scores.log in its working directory, or to $SCORE_LOG when set.
//
// Build it next to its manifest:
//
//	go build -o hooks/score-log/score-log ./hooks/score-log
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Request mirrors the payload the hook executor writes to stdin.
type Request struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	Round     int    `json:"round"`
	Hand      string `json:"hand,omitempty"`
	Score     struct {
		Caught int `json:"caught"`
		Missed int `json:"missed"`
	} `json:"score"`
}

// Response is written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	path := os.Getenv("SCORE_LOG")
	if path == "" {
		path = "scores.log"
	}

	line := formatLine(time.Now(), req)
	if err := appendLine(path, line); err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	data, _ := json.Marshal(map[string]string{"line": line})
	writeResponse(Response{Success: true, Data: data})
}

func formatLine(now time.Time, req Request) string {
	hand := req.Hand
	if hand == "" {
		hand = "-"
	}
	return fmt.Sprintf("%s session=%s round=%d event=%s hand=%s caught=%d missed=%d",
		now.UTC().Format(time.RFC3339), req.SessionID, req.Round, req.Event, hand,
		req.Score.Caught, req.Score.Missed)
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
