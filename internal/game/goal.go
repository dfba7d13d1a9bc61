package game

import (
	"errors"
	"math"

	"github.com/ayusman/goalkeeper/internal/detector"
)

const (
	// GroundOffset is the world y of the pitch surface.
	GroundOffset = -2.0
	// HandPlaneGap is how far in front of the goal line the hand avatars sit.
	HandPlaneGap = 0.5
)

// ErrInvalidGoal is returned by GoalDimensions.Validate.
var ErrInvalidGoal = errors.New("goal width, height and distance must be positive")

// GoalDimensions defines the coordinate frame shared by the ball and the hand avatars.
type GoalDimensions struct {
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Depth    float64 `json:"depth"`    // post thickness, render only
	Distance float64 `json:"distance"` // goal line distance from the camera
}

// DefaultGoal returns the standard goal.
func DefaultGoal() GoalDimensions {
	return GoalDimensions{
		Width:    7,
		Height:   5,
		Depth:    0.1,
		Distance: 10,
	}
}

// Validate rejects non-positive, NaN and infinite width, height or distance.
func (g GoalDimensions) Validate() error {
	for _, v := range []float64{g.Width, g.Height, g.Distance} {
		if !(v > 0) || math.IsInf(v, 0) {
			return ErrInvalidGoal
		}
	}
	return nil
}

// MapX converts a normalized x in [-1, 1] into world x.
func (g GoalDimensions) MapX(x float64) float64 {
	return x * (g.Width / 2)
}

// MapY converts a normalized y in [-1, 1] into world y above the ground.
func (g GoalDimensions) MapY(y float64) float64 {
	return (y+1)*(g.Height/2) + GroundOffset
}

// HandPlaneZ is the world z at which hand avatars are placed.
func (g GoalDimensions) HandPlaneZ() float64 {
	return -(g.Distance - HandPlaneGap)
}

// Map converts a normalized point into world space, keeping the given world z.
func (g GoalDimensions) Map(x, y, z float64) Vec3 {
	return Vec3{X: g.MapX(x), Y: g.MapY(y), Z: z}
}

// MapHand places a mirrored palm position on the hand plane.
func (g GoalDimensions) MapHand(p detector.Point3D) Vec3 {
	return g.Map(p.X, p.Y, g.HandPlaneZ())
}

// HandTargets are the goal-mapped hand avatar positions for one frame.
type HandTargets struct {
	Left  *Vec3 `json:"left"`
	Right *Vec3 `json:"right"`
}

// MapHands maps both palms into goal space. Absent hands stay nil.
func (g GoalDimensions) MapHands(positions detector.HandPositions) HandTargets {
	var targets HandTargets
	if positions.Left != nil {
		v := g.MapHand(*positions.Left)
		targets.Left = &v
	}
	if positions.Right != nil {
		v := g.MapHand(*positions.Right)
		targets.Right = &v
	}
	return targets
}
