package app

import (
	"log"
	"time"

	"github.com/ayusman/goalkeeper/internal/detector"
)

// Tracking is the tracker's latest view of the camera: raw landmarks and the palm
// positions extracted from them.
type Tracking struct {
	Seq       uint64                   `json:"seq"`
	Hands     []detector.HandLandmarks `json:"hands"`
	Palms     detector.HandPositions   `json:"palms"`
	Active    bool                     `json:"active"`
	Timestamp int64                    `json:"timestamp"`
}

// LatestTracking returns the last tracker output. ok is false until the tracker has
// produced anything.
func (a *App) LatestTracking() (Tracking, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracking, a.tracking.Seq > 0
}

func (a *App) setTracking(t Tracking) {
	a.mu.Lock()
	defer a.mu.Unlock()
	t.Seq = a.tracking.Seq + 1
	t.Timestamp = time.Now().UnixMilli()
	a.tracking = t
}

// runTracker reads the server camera and writes palm positions into the hand slot.
//
// It idles at IdleFPS until the motion detector fires, then runs hand detection at
// ActiveFPS. After IdleTimeout without motion it clears the slot and idles again.
func (a *App) runTracker(stopCh <-chan struct{}) {
	defer a.wg.Done()

	camera := a.Camera()
	det := a.Detector()

	active := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if a.motion.Detect(frame).Detected {
				lastMotion = time.Now()
				if !active {
					active = true
					camera.SetFPS(ActiveFPS)
					ticker.Reset(time.Second / ActiveFPS)
					log.Println("Tracker active")
				}
			} else if active && time.Since(lastMotion) > IdleTimeout {
				active = false
				camera.SetFPS(IdleFPS)
				ticker.Reset(time.Second / IdleFPS)
				a.slot.Clear(SourceCamera)
				a.setTracking(Tracking{})
				log.Println("Tracker idle")
			}

			if !active {
				frame.Close()
				continue
			}

			hands, err := det.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			palms := detector.ExtractPalms(hands)
			a.slot.Store(palms, SourceCamera)
			a.setTracking(Tracking{Hands: hands, Palms: palms, Active: true})
		}
	}
}
