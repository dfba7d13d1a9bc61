package game

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/ayusman/goalkeeper/internal/detector"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// seqRand replays a fixed sequence of values.
type seqRand struct {
	values []float64
	next   int
}

func (s *seqRand) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// releaseBall runs the countdown to completion.
func releaseBall(t *testing.T, b *Ball) {
	t.Helper()
	for i := 0; i < CountdownTicks; i++ {
		b.Advance(CountdownStep)
	}
	if b.Phase() != PhaseMoving {
		t.Fatalf("expected ball to be moving after countdown, got %s", b.Phase())
	}
}

func TestGoalDimensions_Map(t *testing.T) {
	goal := DefaultGoal()

	t.Run("center maps to mid-goal height", func(t *testing.T) {
		v := goal.Map(0, 0, -3)
		if v.X != 0 || !near(v.Y, 0.5) || v.Z != -3 {
			t.Errorf("Map(0, 0) = %v, want (0, 0.5, -3)", v)
		}
	})

	t.Run("extremes map to goal edges", func(t *testing.T) {
		lo := goal.Map(-1, -1, 0)
		hi := goal.Map(1, 1, 0)
		if !near(lo.X, -3.5) || !near(lo.Y, GroundOffset) {
			t.Errorf("Map(-1, -1) = %v", lo)
		}
		if !near(hi.X, 3.5) || !near(hi.Y, 3) {
			t.Errorf("Map(1, 1) = %v", hi)
		}
	})

	t.Run("hands sit just in front of the goal line", func(t *testing.T) {
		v := goal.MapHand(detector.Point3D{X: 0.2, Y: -0.4, Z: 0.9})
		if !near(v.Z, -9.5) {
			t.Errorf("hand z = %f, want -9.5", v.Z)
		}
		if !near(v.X, 0.7) || !near(v.Y, 1.5-2) {
			t.Errorf("hand = %v, want (0.7, -0.5)", v)
		}
	})

	t.Run("absent hands stay nil", func(t *testing.T) {
		p := detector.Point3D{}
		targets := goal.MapHands(detector.HandPositions{Right: &p})
		if targets.Left != nil {
			t.Error("left target should be nil")
		}
		if targets.Right == nil {
			t.Error("right target should be mapped")
		}
	})

	t.Run("validate", func(t *testing.T) {
		if err := goal.Validate(); err != nil {
			t.Errorf("default goal should be valid: %v", err)
		}
		bad := goal
		bad.Distance = 0
		if err := bad.Validate(); err == nil {
			t.Error("zero distance should be rejected")
		}
	})
}

func TestBall_Spawn(t *testing.T) {
	t.Run("seeded spawn and velocity", func(t *testing.T) {
		goal := DefaultGoal()
		b := NewBall(goal, &seqRand{values: []float64{0.75, 0.5}})

		spawn := b.Spawn()
		if !near(spawn.X, 1.4) {
			t.Errorf("spawn x = %f, want 1.4", spawn.X)
		}
		if !near(spawn.Y, 3) {
			t.Errorf("spawn y = %f, want 3", spawn.Y)
		}
		if spawn.Z != -20 {
			t.Errorf("spawn z = %f, want -20", spawn.Z)
		}

		v := b.Velocity()
		if v.Z != 0.15 {
			t.Errorf("velocity z = %f, want 0.15", v.Z)
		}
		if !near(v.X, (0.14-1.4)/100) {
			t.Errorf("velocity x = %f, want %f", v.X, (0.14-1.4)/100)
		}
		if !near(v.Y, (0.3-3)/100) {
			t.Errorf("velocity y = %f, want %f", v.Y, (0.3-3)/100)
		}
	})

	t.Run("spawn stays inside the goal spread", func(t *testing.T) {
		goal := DefaultGoal()
		b := NewBall(goal, rand.New(rand.NewSource(42)))

		for i := 0; i < 1000; i++ {
			spawn := b.Spawn()
			if spawn.X < -0.4*goal.Width || spawn.X > 0.4*goal.Width {
				t.Fatalf("spawn x %f outside [-%f, %f]", spawn.X, 0.4*goal.Width, 0.4*goal.Width)
			}
			if spawn.Y < 1 || spawn.Y >= goal.Height*SpawnSpread+1 {
				t.Fatalf("spawn y %f outside [1, %f)", spawn.Y, goal.Height*SpawnSpread+1)
			}
			if b.Velocity().Z != ForwardSpeed {
				t.Fatalf("velocity z %f, want %f", b.Velocity().Z, ForwardSpeed)
			}
			b.Reset()
		}
	})

	t.Run("spawn starts the countdown", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.5}})
		state := b.State()
		if state.Phase != PhaseCountdown {
			t.Errorf("phase = %s, want countdown", state.Phase)
		}
		if state.Countdown != CountdownTicks {
			t.Errorf("countdown = %d, want %d", state.Countdown, CountdownTicks)
		}
		if state.Scale != 1 {
			t.Errorf("scale = %f, want 1", state.Scale)
		}
	})
}

func TestBall_Countdown(t *testing.T) {
	t.Run("releases after three steps of frame time", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.5}})

		if b.Advance(999 * time.Millisecond) {
			t.Fatal("released too early")
		}
		if b.State().Countdown != 3 {
			t.Errorf("countdown = %d, want 3", b.State().Countdown)
		}

		b.Advance(time.Millisecond)
		if b.State().Countdown != 2 {
			t.Errorf("countdown = %d, want 2", b.State().Countdown)
		}

		if !b.Advance(2 * time.Second) {
			t.Fatal("expected release at count zero")
		}
		if b.Phase() != PhaseMoving {
			t.Errorf("phase = %s, want moving", b.Phase())
		}
	})

	t.Run("stale countdown cannot release a newer round", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.5}})

		stale := b.Generation()
		current := b.Reset()

		if b.Release(stale) {
			t.Error("stale generation should not release the ball")
		}
		if b.Phase() != PhaseCountdown {
			t.Errorf("phase = %s, want countdown", b.Phase())
		}
		if !b.Release(current) {
			t.Error("current generation should release the ball")
		}
	})

	t.Run("release is ignored once moving", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.5}})
		releaseBall(t, b)
		if b.Release(b.Generation()) {
			t.Error("second release should be a no-op")
		}
	})
}

func TestBall_Update(t *testing.T) {
	t.Run("stationary until released", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.75, 0.5}})
		before := b.Position()
		b.Update(1)
		if b.Position() != before {
			t.Errorf("ball moved during countdown: %v -> %v", before, b.Position())
		}
	})

	t.Run("moves by velocity times speed", func(t *testing.T) {
		b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.75, 0.5}})
		releaseBall(t, b)

		start := b.Position()
		v := b.Velocity()
		b.Update(2)

		got := b.Position()
		want := start.Plus(v.Times(2))
		if !near(got.X, want.X) || !near(got.Y, want.Y) || !near(got.Z, want.Z) {
			t.Errorf("position = %v, want %v", got, want)
		}
		if !near(b.State().Scale, 1+0.3*ScaleGrowth) {
			t.Errorf("scale = %f, want %f", b.State().Scale, 1+0.3*ScaleGrowth)
		}
		if b.Ticks() != 1 {
			t.Errorf("ticks = %d, want 1", b.Ticks())
		}
	})
}

func TestBall_IsGoal(t *testing.T) {
	b := NewBall(DefaultGoal(), &seqRand{values: []float64{0.5}})

	for _, z := range []float64{-20, -1, -1e-9, 0} {
		b.position.Z = z
		if b.IsGoal() {
			t.Errorf("IsGoal() true at z=%g", z)
		}
	}
	for _, z := range []float64{1e-9, 0.1, 5} {
		b.position.Z = z
		if !b.IsGoal() {
			t.Errorf("IsGoal() false at z=%g", z)
		}
	}
}

func TestResolver(t *testing.T) {
	goal := DefaultGoal()
	r := NewResolver(goal)
	hand := goal.MapHand(detector.Point3D{X: 0, Y: 0})

	t.Run("no hands never catches", func(t *testing.T) {
		for _, z := range []float64{-30, -9.5, 0, 3} {
			if r.Resolve(Vec3{Z: z}, HandTargets{}).Caught {
				t.Errorf("caught with no hands at z=%g", z)
			}
		}
	})

	t.Run("ball on the hand is caught", func(t *testing.T) {
		catch := r.Resolve(hand, HandTargets{Right: &hand})
		if !catch.Caught {
			t.Fatal("expected catch at distance 0")
		}
		if catch.Distance != 0 {
			t.Errorf("distance = %f, want 0", catch.Distance)
		}
		if catch.Hand != detector.Right {
			t.Errorf("hand = %s, want Right", catch.Hand)
		}
		if catch.Burst == nil || *catch.Burst != hand {
			t.Errorf("burst = %v, want %v", catch.Burst, hand)
		}
	})

	t.Run("outside the z gate is ignored", func(t *testing.T) {
		for _, z := range []float64{-12.01, -15, 0.01, 2} {
			ball := Vec3{X: 0, Y: 0.5, Z: z}
			target := ball
			if r.Resolve(ball, HandTargets{Left: &target}).Caught {
				t.Errorf("caught outside gate at z=%g", z)
			}
		}
	})

	t.Run("gate bounds are inclusive", func(t *testing.T) {
		for _, z := range []float64{-12, 0} {
			ball := Vec3{Z: z}
			target := ball
			if !r.Resolve(ball, HandTargets{Left: &target}).Caught {
				t.Errorf("expected catch at gate bound z=%g", z)
			}
		}
	})

	t.Run("threshold is strict", func(t *testing.T) {
		ball := Vec3{X: hand.X + CatchThreshold, Y: hand.Y, Z: hand.Z}
		if r.Resolve(ball, HandTargets{Left: &hand}).Caught {
			t.Error("distance equal to the threshold should not catch")
		}
		ball.X = hand.X + CatchThreshold - 0.01
		if !r.Resolve(ball, HandTargets{Left: &hand}).Caught {
			t.Error("distance just under the threshold should catch")
		}
	})

	t.Run("left hand is checked first", func(t *testing.T) {
		left := hand
		right := hand
		catch := r.Resolve(hand, HandTargets{Left: &left, Right: &right})
		if catch.Hand != detector.Left {
			t.Errorf("hand = %s, want Left", catch.Hand)
		}
	})
}

func TestController_Scoring(t *testing.T) {
	goal := DefaultGoal()
	c := NewController(goal, &seqRand{values: []float64{0.75, 0.5}})

	center := detector.Point3D{X: 0, Y: 0}
	hands := detector.HandPositions{Left: &center}
	target := goal.MapHand(center)

	// Countdown frames never resolve.
	for i := 0; i < CountdownTicks; i++ {
		if frame := c.Update(CountdownStep, hands, 1); frame.Result != nil {
			t.Fatalf("unexpected result during countdown: %+v", frame.Result)
		}
	}

	// Put the ball on the hand for a catch.
	c.ball.position = target
	c.ball.velocity = Vec3{}
	frame := c.Update(0, hands, 1)

	if frame.Result == nil || frame.Result.Outcome != OutcomeCatch {
		t.Fatalf("expected catch, got %+v", frame.Result)
	}
	if frame.Result.Hand != detector.Left {
		t.Errorf("catching hand = %s, want Left", frame.Result.Hand)
	}
	if frame.Burst == nil {
		t.Error("catch frame should carry a burst")
	}
	if frame.Score != (Score{Caught: 1}) {
		t.Errorf("score = %+v, want {1 0}", frame.Score)
	}
	if frame.Ball.Phase != PhaseCountdown || frame.Ball.Position.Z != -20 {
		t.Errorf("ball should be respawned into countdown, got %+v", frame.Ball)
	}

	// Release again and let the ball cross the goal line without hands.
	for i := 0; i < CountdownTicks; i++ {
		c.Update(CountdownStep, detector.HandPositions{}, 1)
	}
	c.ball.position = Vec3{X: 0, Y: 1, Z: -0.05}
	c.ball.velocity = Vec3{Z: ForwardSpeed}
	frame = c.Update(0, detector.HandPositions{}, 1)

	if frame.Result == nil || frame.Result.Outcome != OutcomeGoal {
		t.Fatalf("expected goal, got %+v", frame.Result)
	}
	if frame.Score != (Score{Caught: 1, Missed: 1}) {
		t.Errorf("score = %+v, want {1 1}", frame.Score)
	}
	if c.Rounds() != 2 {
		t.Errorf("rounds = %d, want 2", c.Rounds())
	}
}

func TestController_FullTraversal(t *testing.T) {
	c := NewController(DefaultGoal(), rand.New(rand.NewSource(7)))
	frameTime := time.Second / 60

	var results []*RoundResult
	var released bool
	for i := 0; i < 60*4+400 && len(results) == 0; i++ {
		frame := c.Update(frameTime, detector.HandPositions{}, 1)
		if frame.Ball.Phase == PhaseMoving {
			released = true
		}
		if frame.Result != nil {
			results = append(results, frame.Result)
		}
	}

	if !released {
		t.Fatal("ball was never released")
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one result, got %d", len(results))
	}
	if results[0].Outcome != OutcomeGoal {
		t.Errorf("outcome = %s, want goal", results[0].Outcome)
	}
	// 20 units at 0.15 per tick.
	if results[0].Ticks < 130 || results[0].Ticks > 140 {
		t.Errorf("ticks = %d, want about 134", results[0].Ticks)
	}
	if c.Score().Missed != 1 || c.Score().Caught != 0 {
		t.Errorf("score = %+v, want {0 1}", c.Score())
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"defaults", DefaultSettings(), false},
		{"max", Settings{BallSpeed: 5, HandSize: 5}, false},
		{"zero speed", Settings{BallSpeed: 0, HandSize: 1}, true},
		{"too fast", Settings{BallSpeed: 5.5, HandSize: 1}, true},
		{"negative hand", Settings{BallSpeed: 1, HandSize: -1}, true},
		{"NaN", Settings{BallSpeed: math.NaN(), HandSize: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoalDimensions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		g       GoalDimensions
		wantErr bool
	}{
		{"defaults", DefaultGoal(), false},
		{"zero width", GoalDimensions{Width: 0, Height: 5, Distance: 10}, true},
		{"negative height", GoalDimensions{Width: 7, Height: -5, Distance: 10}, true},
		{"NaN width", GoalDimensions{Width: math.NaN(), Height: 5, Distance: 10}, true},
		{"infinite distance", GoalDimensions{Width: 7, Height: 5, Distance: math.Inf(1)}, true},
		{"negative infinite height", GoalDimensions{Width: 7, Height: math.Inf(-1), Distance: 10}, true},
		{"zero depth allowed", GoalDimensions{Width: 7, Height: 5, Distance: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGoal) {
				t.Errorf("Validate() error = %v, want ErrInvalidGoal", err)
			}
		})
	}
}
