package object

import (
	"math/rand"

	"github.com/tomz197/santa-rush/internal/physics"
)

// Obstacle geometry.
const (
	ObstacleWidth = 60.0
	GapMargin     = 100.0 // Minimum distance between the gap and the top/bottom edges
	capOverhang   = 5.0
	capHeight     = 20.0
)

// Obstacle is a pair of pillars with a passable gap between them.
type Obstacle struct {
	X       float64 // Left edge, decreasing
	Width   float64
	GapY    float64 // Top of the gap
	GapSize float64 // Fixed at spawn
	Speed   float64 // Updated every frame by the manager
	Passed  bool    // Set once when the player clears it
	floor   float64 // Canvas height, for drawing the lower pillar
}

// NewObstacle creates an obstacle at x with its gap placed uniformly in
// [GapMargin, screen.Height-gapSize-GapMargin].
func NewObstacle(x float64, screen Screen, gapSize float64, rng *rand.Rand) *Obstacle {
	minGapY := GapMargin
	maxGapY := screen.Height - gapSize - GapMargin
	return &Obstacle{
		X:       x,
		Width:   ObstacleWidth,
		GapY:    minGapY + rng.Float64()*(maxGapY-minGapY),
		GapSize: gapSize,
		floor:   screen.Height,
	}
}

// Update moves the obstacle left by its current speed.
func (o *Obstacle) Update() {
	o.X -= o.Speed
}

// IsOffScreen reports whether the obstacle has fully left the canvas.
func (o *Obstacle) IsOffScreen() bool {
	return o.X+o.Width < 0
}

// Collides reports whether r overlaps the obstacle horizontally without
// fitting entirely inside the gap.
func (o *Obstacle) Collides(r physics.Rect) bool {
	if r.X+r.W > o.X && r.X < o.X+o.Width {
		return r.Y < o.GapY || r.Y+r.H > o.GapY+o.GapSize
	}
	return false
}

// Pass marks the obstacle passed the first time its right edge is left of x.
// Returns true only on that transition.
func (o *Obstacle) Pass(x float64) bool {
	if !o.Passed && o.X+o.Width < x {
		o.Passed = true
		return true
	}
	return false
}

// Draw renders both pillars with their caps.
func (o *Obstacle) Draw(ctx DrawContext) error {
	c := ctx.Canvas
	bottom := o.GapY + o.GapSize

	c.FillRect(o.X, 0, o.Width, o.GapY)
	c.FillRect(o.X, bottom, o.Width, o.floor-bottom)

	c.StrokeRect(o.X-capOverhang, o.GapY-capHeight, o.Width+2*capOverhang, capHeight)
	c.StrokeRect(o.X-capOverhang, bottom, o.Width+2*capOverhang, capHeight)
	return nil
}
