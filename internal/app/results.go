package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/goalkeeper/internal/game"
	"github.com/ayusman/goalkeeper/internal/hook"
	"github.com/ayusman/goalkeeper/internal/scoreboard"
	"github.com/ayusman/goalkeeper/internal/store"
)

// runResults hands round results to the store, hooks and scoreboard off the game loop.
// Results still queued at stop are flushed before it returns.
func (a *App) runResults(stopCh <-chan struct{}, results <-chan game.RoundResult) {
	defer a.wg.Done()

	for {
		select {
		case r := <-results:
			a.handleResult(r)
		case <-stopCh:
			for {
				select {
				case r := <-results:
					a.handleResult(r)
				default:
					return
				}
			}
		}
	}
}

// handleResult records one round. Sink failures are logged; none stops the others.
func (a *App) handleResult(r game.RoundResult) {
	session := a.SessionID()

	if s := a.config.Store; s != nil && session != "" {
		round := &store.Round{
			SessionID: session,
			Sequence:  r.Round,
			Outcome:   string(r.Outcome),
			Hand:      r.Hand,
			BallX:     r.Position.X,
			BallY:     r.Position.Y,
			BallZ:     r.Position.Z,
			Ticks:     r.Ticks,
		}
		if err := s.Rounds().Create(round); err != nil {
			log.Printf("Error saving round %d: %v", r.Round, err)
		}
		if err := s.Sessions().UpdateScore(session, r.Score.Caught, r.Score.Missed); err != nil {
			log.Printf("Error updating session score: %v", err)
		}
	}

	req := &hook.Request{
		Event:     hook.Event(r.Outcome),
		SessionID: session,
		Round:     r.Round,
		Hand:      r.Hand,
		Score:     hook.Score{Caught: r.Score.Caught, Missed: r.Score.Missed},
	}
	a.hookExec.Dispatch(context.Background(), a.hooks, req)

	if p := a.config.Scoreboard; p != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		ev := scoreboard.Event{
			SessionID: session,
			Round:     r.Round,
			Outcome:   string(r.Outcome),
			Hand:      r.Hand,
			Caught:    r.Score.Caught,
			Missed:    r.Score.Missed,
			At:        time.Now(),
		}
		if err := p.Publish(ctx, ev); err != nil {
			log.Printf("Error publishing round %d: %v", r.Round, err)
		}
		cancel()
	}

	log.Printf("Round %d: %s (caught %d, missed %d)", r.Round, r.Outcome, r.Score.Caught, r.Score.Missed)
}
