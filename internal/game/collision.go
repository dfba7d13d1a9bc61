package game

import "github.com/ayusman/goalkeeper/internal/detector"

const (
	// CatchThreshold is the hand-to-ball distance under which the ball is caught.
	CatchThreshold = 1.2
	// GateMargin extends the collision z window behind the goal line.
	GateMargin = 2.0
)

// Catch is the outcome of a collision check.
type Catch struct {
	Caught   bool
	Hand     string  // detector.Left or detector.Right when caught
	Distance float64 // distance to the catching hand
	Burst    *Vec3   // where the catch effect should be drawn
}

// Resolver decides whether either hand intercepts the ball.
type Resolver struct {
	goal      GoalDimensions
	threshold float64
}

// NewResolver creates a Resolver using CatchThreshold.
func NewResolver(goal GoalDimensions) *Resolver {
	return &Resolver{goal: goal, threshold: CatchThreshold}
}

// InGate reports whether z lies inside [-(distance+GateMargin), 0].
func (r *Resolver) InGate(z float64) bool {
	return z >= -(r.goal.Distance+GateMargin) && z <= 0
}

// Resolve checks the left hand then the right; the first in range wins.
// A single in-range frame is enough.
func (r *Resolver) Resolve(ball Vec3, hands HandTargets) Catch {
	if hands.Left == nil && hands.Right == nil {
		return Catch{}
	}
	if !r.InGate(ball.Z) {
		return Catch{}
	}

	candidates := []struct {
		side string
		pos  *Vec3
	}{
		{detector.Left, hands.Left},
		{detector.Right, hands.Right},
	}

	for _, c := range candidates {
		if c.pos == nil {
			continue
		}
		if d := ball.Distance(*c.pos); d < r.threshold {
			burst := ball
			return Catch{Caught: true, Hand: c.side, Distance: d, Burst: &burst}
		}
	}

	return Catch{}
}
