package app

import (
	"log"
	"time"

	"github.com/ayusman/goalkeeper/internal/game"
)

// subscriberBuffer is how many frames a subscriber may fall behind before frames are
// dropped for it.
const subscriberBuffer = 8

// runFrames is the game loop. It is the only goroutine that touches the controller.
func (a *App) runFrames(stopCh <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FrameRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			// Paused frames are dropped so the countdown does not run on.
			if !a.IsEnabled() {
				continue
			}

			if frame := a.step(dt); frame.Result != nil {
				select {
				case a.results <- *frame.Result:
				default:
					log.Printf("Dropping result of round %d: sinks are behind", frame.Result.Round)
				}
			}
		}
	}
}

// step advances the controller by one frame and publishes the snapshot.
func (a *App) step(dt time.Duration) game.Frame {
	hands, _ := a.slot.Load()
	frame := a.controller.Update(dt, hands, a.Settings().BallSpeed)

	a.mu.Lock()
	a.latest = frame
	a.mu.Unlock()

	a.broadcast(frame)
	return frame
}

// Subscribe returns a channel of frames and a function that ends the subscription.
// A subscriber that does not keep up misses frames rather than slowing the loop.
func (a *App) Subscribe() (<-chan game.Frame, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan game.Frame, subscriberBuffer)
	a.subs[id] = ch

	return ch, func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		if c, ok := a.subs[id]; ok {
			delete(a.subs, id)
			close(c)
		}
	}
}

func (a *App) broadcast(frame game.Frame) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for _, ch := range a.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (a *App) closeSubscribers() {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for id, ch := range a.subs {
		delete(a.subs, id)
		close(ch)
	}
}
