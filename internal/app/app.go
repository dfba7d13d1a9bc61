// Package app wires the goalkeeper game loop to its hand sources and result sinks.
package app

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/goalkeeper/internal/capture"
	"github.com/ayusman/goalkeeper/internal/detector"
	"github.com/ayusman/goalkeeper/internal/game"
	"github.com/ayusman/goalkeeper/internal/hook"
	"github.com/ayusman/goalkeeper/internal/scoreboard"
	"github.com/ayusman/goalkeeper/internal/store"
)

// Tracker timing constants.
const (
	// IdleFPS is the camera rate while nobody moves.
	IdleFPS = 5
	// ActiveFPS is the camera rate while hands are being tracked.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
	// DefaultFrameRate is the game loop rate when none is configured.
	DefaultFrameRate = 60
	// resultBuffer bounds round results waiting for the sinks.
	resultBuffer = 16
)

// Config holds configuration options for the application.
type Config struct {
	Store   *store.Store
	HookDir string
	// CameraID selects a server-side camera. A negative ID disables the tracker and
	// leaves hand positions to websocket clients.
	CameraID     int
	MotionThresh float64
	FrameRate    int
	Goal         game.GoalDimensions
	// Scoreboard is optional.
	Scoreboard *scoreboard.Publisher
	// Random seeds ball spawns; nil uses a time-seeded source.
	Random game.RandomSource
}

// App owns the round controller and fans frames out to subscribers.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	slot       *HandSlot
	controller *game.Controller
	hooks      *hook.Manager
	hookExec   *hook.Executor

	settings game.Settings
	// settingsMu serializes read-modify-write updates of settings.
	settingsMu sync.Mutex
	session    string
	latest   game.Frame
	tracking Tracking
	enabled  bool
	mu       sync.RWMutex

	subs    map[int]chan game.Frame
	nextSub int
	subMu   sync.Mutex

	results chan game.RoundResult
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New creates an App. Nothing runs until Start.
func New(config Config) *App {
	if config.MotionThresh <= 0 {
		config.MotionThresh = 1.0 // 1% pixel change
	}
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultFrameRate
	}
	if config.Goal == (game.GoalDimensions{}) {
		config.Goal = game.DefaultGoal()
	}
	rng := config.Random
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	a := &App{
		config:     config,
		motion:     capture.NewMotionDetector(config.MotionThresh),
		slot:       NewHandSlot(),
		controller: game.NewController(config.Goal, rng),
		hooks:      hook.NewManager(config.HookDir),
		hookExec:   hook.NewExecutor(hook.DefaultTimeout),
		settings:   game.DefaultSettings(),
		enabled:    true,
		subs:       make(map[int]chan game.Frame),
	}

	if config.CameraID >= 0 {
		a.camera = capture.NewCamera(capture.DefaultOptions(config.CameraID))

		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), server-side tracking disabled", err)
		}
	}

	return a
}

// SetEnabled pauses or resumes the game. While paused the countdown and ball freeze.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether the game is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector. Call before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the server-side camera, or nil in browser-only mode.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector, or nil when none is available.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Slot returns the hand slot fed by the tracker and by clients.
func (a *App) Slot() *HandSlot {
	return a.slot
}

// HookManager returns the hook manager.
func (a *App) HookManager() *hook.Manager {
	return a.hooks
}

// DiscoverHooks scans the hook directory.
func (a *App) DiscoverHooks() error {
	if err := a.hooks.Discover(); err != nil {
		return err
	}
	log.Printf("Discovered %d hooks in %s", len(a.hooks.List()), a.hooks.Dir())
	return nil
}

// LoadSettings reads persisted settings, falling back to defaults for missing keys.
func (a *App) LoadSettings() error {
	if a.config.Store == nil {
		return nil
	}

	defaults := game.DefaultSettings()
	repo := a.config.Store.Settings()

	speed, err := repo.GetFloat(store.SettingBallSpeed, defaults.BallSpeed)
	if err != nil {
		return fmt.Errorf("load ball speed: %w", err)
	}
	size, err := repo.GetFloat(store.SettingHandSize, defaults.HandSize)
	if err != nil {
		return fmt.Errorf("load hand size: %w", err)
	}

	s := game.Settings{BallSpeed: speed, HandSize: size}
	if err := s.Validate(); err != nil {
		log.Printf("Ignoring stored settings: %v", err)
		s = defaults
	}

	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()
	return nil
}

// Settings returns the live settings.
func (a *App) Settings() game.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// SetSettings validates, persists and applies new settings. The next frame uses them.
func (a *App) SetSettings(s game.Settings) error {
	_, err := a.UpdateSettings(func(cur *game.Settings) { *cur = s })
	return err
}

// UpdateSettings applies fn to a copy of the live settings, then validates,
// persists and applies the result. Concurrent updates are serialized so one
// cannot overwrite a field another just changed. On error the live settings
// are left unchanged.
func (a *App) UpdateSettings(fn func(*game.Settings)) (game.Settings, error) {
	a.settingsMu.Lock()
	defer a.settingsMu.Unlock()

	s := a.Settings()
	fn(&s)
	if err := s.Validate(); err != nil {
		return a.Settings(), err
	}

	if a.config.Store != nil {
		err := a.config.Store.Settings().SetFloats(map[string]float64{
			store.SettingBallSpeed: s.BallSpeed,
			store.SettingHandSize:  s.HandSize,
		})
		if err != nil {
			return a.Settings(), fmt.Errorf("save settings: %w", err)
		}
	}

	a.mu.Lock()
	a.settings = s
	a.mu.Unlock()
	return s, nil
}

// SubmitHands feeds client-side landmarks into the hand slot and returns the
// slot sequence of the write.
func (a *App) SubmitHands(hands []detector.HandLandmarks) uint64 {
	return a.slot.Store(detector.ExtractPalms(hands), SourceClient)
}

// ReleaseHands clears hands a departing client left behind, unless another
// write has landed since seq.
func (a *App) ReleaseHands(seq uint64) bool {
	return a.slot.ClearIf(seq, SourceClient)
}

// SessionID returns the current session, or "" before Start.
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Latest returns the most recent frame.
func (a *App) Latest() game.Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Score returns the score as of the latest frame.
func (a *App) Score() game.Score {
	return a.Latest().Score
}

// Start opens a session and starts the game loop, the result sinks and, when a camera
// and detector are available, the hand tracker.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	session := uuid.NewString()
	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Create(&store.Session{ID: session}); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	tracking := a.camera != nil && a.detector != nil
	if tracking {
		if err := a.camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
		a.camera.SetFPS(IdleFPS)
	}

	a.session = session
	a.stopCh = make(chan struct{})
	a.results = make(chan game.RoundResult, resultBuffer)

	a.wg.Add(2)
	go a.runFrames(a.stopCh)
	go a.runResults(a.stopCh, a.results)
	if tracking {
		a.wg.Add(1)
		go a.runTracker(a.stopCh)
	}

	log.Printf("Game started (session %s, %d FPS)", session, a.config.FrameRate)
	return nil
}

// Stop halts every loop, ends the session and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	session := a.session
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	a.wg.Wait()

	if a.config.Store != nil {
		if err := a.config.Store.Sessions().End(session); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("Error ending session: %v", err)
		}
	}

	if cam := a.Camera(); cam != nil {
		if err := cam.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}
	a.motion.Close()

	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.closeSubscribers()
	log.Println("Game stopped")
}
