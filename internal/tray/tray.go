// Package tray puts goalkeeper controls in the desktop system tray.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/goalkeeper/internal/game"
)

// Tray is the system tray menu: pause toggle, live score, open and quit.
type Tray struct {
	onToggle func(running bool)
	onOpen   func()
	onQuit   func()
	running  bool
	score    game.Score
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuScore  *systray.MenuItem
}

// New creates a Tray in the running state.
func New() *Tray {
	return &Tray{running: true}
}

// OnToggle sets the callback run when the game is paused or resumed.
func (t *Tray) OnToggle(fn func(running bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run when "Open in Browser" is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Goalkeeper")
	systray.SetTooltip("Goalkeeper hand-tracking game")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Pause or resume the game")
	systray.AddSeparator()
	t.menuScore = systray.AddMenuItem(scoreTitle(t.score), "Current session score")
	t.menuScore.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser", "Open the game page")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Goalkeeper")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.toggle()
			case <-menuOpen.ClickedCh:
				t.call(t.onOpenFn())
			case <-menuQuit.ClickedCh:
				t.call(t.onQuitFn())
				systray.Quit()
				return
			}
		}
	}()
}

// toggle flips the running state and reports it to the OnToggle callback.
func (t *Tray) toggle() bool {
	t.mu.Lock()
	t.running = !t.running
	running := t.running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Called outside the lock so the callback may use the tray.
	if callback != nil {
		callback(running)
	}
	return running
}

func (t *Tray) onOpenFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onOpen
}

func (t *Tray) onQuitFn() func() {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onQuit
}

func (t *Tray) call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetScore updates the score item.
func (t *Tray) SetScore(s game.Score) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.score = s
	if t.menuScore != nil {
		t.menuScore.SetTitle(scoreTitle(s))
	}
}

// Score returns the last score shown.
func (t *Tray) Score() game.Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score
}

// Watch updates the score whenever a frame carries a round result. It returns when
// frames is closed.
func (t *Tray) Watch(frames <-chan game.Frame) {
	for f := range frames {
		if f.Result != nil {
			t.SetScore(f.Result.Score)
		}
	}
}

// IsRunning reports whether the tray shows the game as running.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

func toggleTitle(running bool) string {
	if running {
		return "● Playing"
	}
	return "○ Paused"
}

func scoreTitle(s game.Score) string {
	return fmt.Sprintf("Caught %d / Missed %d", s.Caught, s.Missed)
}
