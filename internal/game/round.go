package game

import (
	"time"

	"github.com/ayusman/goalkeeper/internal/detector"
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeCatch Outcome = "catch"
	OutcomeGoal  Outcome = "goal"
)

// Score counts caught and missed balls. Both only ever increase.
type Score struct {
	Caught int `json:"caught"`
	Missed int `json:"missed"`
}

// RoundResult describes one finished ball traversal.
type RoundResult struct {
	Round    int     `json:"round"`
	Outcome  Outcome `json:"outcome"`
	Hand     string  `json:"hand,omitempty"`
	Position Vec3    `json:"position"`
	Ticks    int     `json:"ticks"`
	Score    Score   `json:"score"`
}

// Frame is the per-frame snapshot handed to renderers.
type Frame struct {
	Tick   uint64       `json:"tick"`
	Ball   BallState    `json:"ball"`
	Hands  HandTargets  `json:"hands"`
	Score  Score        `json:"score"`
	Burst  *Vec3        `json:"burst,omitempty"`
	Result *RoundResult `json:"result,omitempty"`
}

// Controller drives the round lifecycle. It is not safe for concurrent use; one
// goroutine should own it and call Update once per frame.
type Controller struct {
	goal     GoalDimensions
	ball     *Ball
	resolver *Resolver
	score    Score
	round    int
	tick     uint64
}

// NewController spawns the first ball and starts its countdown.
func NewController(goal GoalDimensions, rng RandomSource) *Controller {
	return &Controller{
		goal:     goal,
		ball:     NewBall(goal, rng),
		resolver: NewResolver(goal),
	}
}

// Update runs one frame: countdown, ball motion, then catch or goal resolution.
// dt is the wall-clock time since the previous frame; speed is the ball speed knob.
func (c *Controller) Update(dt time.Duration, hands detector.HandPositions, speed float64) Frame {
	c.tick++

	targets := c.goal.MapHands(hands)

	c.ball.Advance(dt)
	c.ball.Update(speed)

	frame := Frame{
		Tick:  c.tick,
		Hands: targets,
	}

	if c.ball.Phase() == PhaseMoving {
		if catch := c.resolver.Resolve(c.ball.Position(), targets); catch.Caught {
			c.score.Caught++
			frame.Burst = catch.Burst
			frame.Result = c.finish(OutcomeCatch, catch.Hand)
		} else if c.ball.IsGoal() {
			c.score.Missed++
			frame.Result = c.finish(OutcomeGoal, "")
		}
	}

	frame.Ball = c.ball.State()
	frame.Score = c.score
	return frame
}

// finish records the outcome and respawns the ball with a fresh countdown.
func (c *Controller) finish(outcome Outcome, hand string) *RoundResult {
	c.ball.Resolve()
	c.round++

	result := &RoundResult{
		Round:    c.round,
		Outcome:  outcome,
		Hand:     hand,
		Position: c.ball.Position(),
		Ticks:    c.ball.Ticks(),
		Score:    c.score,
	}

	c.ball.Reset()
	return result
}

func (c *Controller) Score() Score         { return c.score }
func (c *Controller) Rounds() int          { return c.round }
func (c *Controller) Ball() *Ball          { return c.ball }
func (c *Controller) Goal() GoalDimensions { return c.goal }
