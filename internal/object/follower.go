package object

import "github.com/tomz197/santa-rush/internal/draw"

// Chain spacing and easing.
const (
	FollowerGap       = 48.0 // Horizontal overlap with the leader, in pixels
	FollowerSmoothing = 0.2  // Fraction of the remaining distance closed per frame
	FollowerSpacing   = 50.0 // Spawn offset per chain member behind the player
)

// Leader is whatever a follower lines up behind: the player or the previous follower.
type Leader interface {
	Anchor() (x, y, width float64)
}

// Anchor implements Leader.
func (p *Player) Anchor() (x, y, width float64) {
	return p.X, p.Y, p.Width
}

// Follower is a reindeer trailing the player in the chain.
type Follower struct {
	X, Y             float64
	TargetX, TargetY float64 // Recomputed every frame
	Width, Height    float64
	Index            int // Position in the chain, 0 is closest to the player
}

// NewFollower creates a follower at (x, y) with the player's size.
func NewFollower(x, y float64, index int) *Follower {
	return &Follower{
		X:       x,
		Y:       y,
		TargetX: x,
		TargetY: y,
		Width:   PlayerWidth,
		Height:  PlayerHeight,
		Index:   index,
	}
}

// Anchor implements Leader.
func (f *Follower) Anchor() (x, y, width float64) {
	return f.X, f.Y, f.Width
}

// Update eases the follower toward its slot: overlapping the leader's
// right edge by FollowerGap, at the leader's height.
func (f *Follower) Update(leader Leader) {
	lx, ly, lw := leader.Anchor()
	f.TargetX = lx + lw - FollowerGap
	f.TargetY = ly

	f.X += (f.TargetX - f.X) * FollowerSmoothing
	f.Y += (f.TargetY - f.Y) * FollowerSmoothing
}

// Draw renders the reindeer body with antlers.
func (f *Follower) Draw(ctx DrawContext) error {
	c := ctx.Canvas
	c.FillRect(f.X, f.Y+f.Height*0.3, f.Width, f.Height*0.4)
	c.DrawCircle(f.X+f.Width*0.75, f.Y+f.Height*0.25, f.Width/7, true)

	// Antlers
	c.DrawLine(draw.Point{X: f.X + f.Width*0.7, Y: f.Y + f.Height*0.15}, draw.Point{X: f.X + f.Width*0.6, Y: f.Y})
	c.DrawLine(draw.Point{X: f.X + f.Width*0.85, Y: f.Y + f.Height*0.15}, draw.Point{X: f.X + f.Width*0.95, Y: f.Y})
	return nil
}
