// Package physics provides the vertical integrator and the overlap tests used by the game.
package physics

// Default integrator constants (pixels per frame).
const (
	DefaultGravity         = 0.25
	DefaultThrust          = -0.5
	DefaultMaxVelocityUp   = -7.0
	DefaultMaxVelocityDown = 8.0
)

// Body is the vertical state the integrator works on.
// Entities embed it so the model can mutate them in place.
type Body struct {
	Y         float64 // Top edge
	VelocityY float64 // Pixels per frame, positive is down
	Height    float64
}

// Model holds the integrator constants. It keeps no per-entity state.
type Model struct {
	Gravity         float64
	Thrust          float64
	MaxVelocityUp   float64 // Most negative velocity allowed after thrust
	MaxVelocityDown float64 // Most positive velocity allowed after gravity
}

// DefaultModel returns the model with the standard constants.
func DefaultModel() Model {
	return Model{
		Gravity:         DefaultGravity,
		Thrust:          DefaultThrust,
		MaxVelocityUp:   DefaultMaxVelocityUp,
		MaxVelocityDown: DefaultMaxVelocityDown,
	}
}

// ApplyGravity accelerates the body downward, caps the fall speed and moves it.
// Runs every frame, boosting or not.
func (m Model) ApplyGravity(b *Body) {
	b.VelocityY += m.Gravity
	if b.VelocityY > m.MaxVelocityDown {
		b.VelocityY = m.MaxVelocityDown
	}
	b.Y += b.VelocityY
}

// ApplyThrust accelerates the body upward and caps the climb speed.
// It does not move the body; the following ApplyGravity does.
func (m Model) ApplyThrust(b *Body) {
	b.VelocityY += m.Thrust
	if b.VelocityY < m.MaxVelocityUp {
		b.VelocityY = m.MaxVelocityUp
	}
}

// CheckBounds clamps the body to [0, height-b.Height] and zeroes its velocity on clamp.
// Returns true if the body touched the ground.
func (m Model) CheckBounds(b *Body, height float64) bool {
	if b.Y < 0 {
		b.Y = 0
		b.VelocityY = 0
	}
	if b.Y+b.Height > height {
		b.Y = height - b.Height
		b.VelocityY = 0
		return true
	}
	return false
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Circle is a circle anchored at its center.
type Circle struct {
	X, Y, R float64
}

// Overlaps reports whether two rectangles overlap. Touching edges do not count.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W &&
		a.X+a.W > b.X &&
		a.Y < b.Y+b.H &&
		a.Y+a.H > b.Y
}

// CirclesOverlap reports whether the distance between the centers is strictly
// less than the sum of the radii.
func CirclesOverlap(a, b Circle) bool {
	minDist := a.R + b.R
	return DistanceSquared(a.X, a.Y, b.X, b.Y) < minDist*minDist
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
