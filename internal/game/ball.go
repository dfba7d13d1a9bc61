package game

import "time"

// Ball motion constants.
const (
	// SpawnSpread is the fraction of the goal width/height the spawn point may cover.
	SpawnSpread = 0.8
	// SpawnLift raises the lowest possible spawn height.
	SpawnLift = 1.0
	// SpawnBackOffset places the spawn point this far behind the goal distance.
	SpawnBackOffset = 10.0
	// CurveFactor sets the x/y target as a fraction of the spawn offset.
	CurveFactor = 0.1
	// VelocityDivisor spreads the x/y drift over this many ticks.
	VelocityDivisor = 100.0
	// ForwardSpeed is the fixed z velocity per tick, independent of spawn position.
	ForwardSpeed = 0.15
	// ScaleGrowth is the render scale gained per world unit travelled in z.
	ScaleGrowth = 0.05

	// CountdownTicks is the number of countdown steps before the ball is released.
	CountdownTicks = 3
	// CountdownStep is the duration of one countdown step.
	CountdownStep = time.Second
)

// Phase is the ball lifecycle state.
type Phase string

const (
	PhaseSpawned   Phase = "spawned"
	PhaseCountdown Phase = "countdown"
	PhaseMoving    Phase = "moving"
	PhaseResolved  Phase = "resolved"
)

// RandomSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Countdown is one pre-release countdown. Generation identifies the round it belongs to.
type Countdown struct {
	Generation uint64
	Remaining  int
	elapsed    time.Duration
}

// BallState is a snapshot of the ball for renderers and tests.
type BallState struct {
	Position   Vec3    `json:"position"`
	Velocity   Vec3    `json:"velocity"`
	Scale      float64 `json:"scale"`
	Phase      Phase   `json:"phase"`
	Countdown  int     `json:"countdown"`
	Generation uint64  `json:"generation"`
}

// Ball owns the position, velocity and lifecycle of the single live ball.
type Ball struct {
	goal       GoalDimensions
	rng        RandomSource
	spawn      Vec3
	position   Vec3
	velocity   Vec3
	scale      float64
	phase      Phase
	countdown  Countdown
	generation uint64
	ticks      int
}

// NewBall creates a ball and spawns it behind the goal with its countdown running.
func NewBall(goal GoalDimensions, rng RandomSource) *Ball {
	b := &Ball{
		goal: goal,
		rng:  rng,
	}
	b.Reset()
	return b
}

// Reset respawns the ball at a random point behind the goal and starts a new
// countdown. Any earlier countdown is superseded; the new generation is returned.
func (b *Ball) Reset() uint64 {
	spreadX := b.goal.Width * SpawnSpread
	spreadY := b.goal.Height * SpawnSpread

	x := (b.rng.Float64() - 0.5) * spreadX
	y := b.rng.Float64()*spreadY + SpawnLift

	b.spawn = Vec3{X: x, Y: y, Z: -b.goal.Distance - SpawnBackOffset}
	b.position = b.spawn
	b.scale = 1
	b.ticks = 0

	// x/y curve in slightly toward the center; z speed is fixed.
	targetX := x * CurveFactor
	targetY := y * CurveFactor
	b.velocity = Vec3{
		X: (targetX - x) / VelocityDivisor,
		Y: (targetY - y) / VelocityDivisor,
		Z: ForwardSpeed,
	}

	b.phase = PhaseSpawned
	b.generation++
	b.countdown = Countdown{Generation: b.generation, Remaining: CountdownTicks}
	b.phase = PhaseCountdown

	return b.generation
}

// Advance moves the countdown clock forward by dt and releases the ball when it
// reaches zero. It reports whether the ball was released by this call.
func (b *Ball) Advance(dt time.Duration) bool {
	if b.phase != PhaseCountdown || dt <= 0 {
		return false
	}

	b.countdown.elapsed += dt
	for b.countdown.Remaining > 0 && b.countdown.elapsed >= CountdownStep {
		b.countdown.elapsed -= CountdownStep
		b.countdown.Remaining--
	}

	if b.countdown.Remaining > 0 {
		return false
	}
	return b.Release(b.countdown.Generation)
}

// Release starts the ball moving. A token from a superseded countdown is ignored.
func (b *Ball) Release(generation uint64) bool {
	if generation != b.generation || b.phase != PhaseCountdown {
		return false
	}
	b.countdown.Remaining = 0
	b.phase = PhaseMoving
	return true
}

// Update advances the ball one tick, scaled by the speed multiplier.
// It does nothing unless the ball is moving.
func (b *Ball) Update(speed float64) {
	if b.phase != PhaseMoving {
		return
	}

	b.position = b.position.Plus(b.velocity.Times(speed))
	b.ticks++

	travelled := b.position.Z + b.goal.Distance + SpawnBackOffset
	b.scale = 1 + travelled*ScaleGrowth
}

// Resolve marks the current traversal as decided.
func (b *Ball) Resolve() {
	if b.phase == PhaseMoving {
		b.phase = PhaseResolved
	}
}

// IsGoal reports whether the ball has crossed the goal plane.
func (b *Ball) IsGoal() bool {
	return b.position.Z > 0
}

func (b *Ball) Position() Vec3 { return b.position }
func (b *Ball) Velocity() Vec3 { return b.velocity }
func (b *Ball) Spawn() Vec3    { return b.spawn }
func (b *Ball) Phase() Phase   { return b.phase }
func (b *Ball) Ticks() int     { return b.ticks }

// Generation returns the token of the current countdown.
func (b *Ball) Generation() uint64 { return b.generation }

// State returns a snapshot of the ball.
func (b *Ball) State() BallState {
	return BallState{
		Position:   b.position,
		Velocity:   b.velocity,
		Scale:      b.scale,
		Phase:      b.phase,
		Countdown:  b.countdown.Remaining,
		Generation: b.generation,
	}
}
