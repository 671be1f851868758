package object

import (
	"math"

	"github.com/tomz197/santa-rush/internal/draw"
	"github.com/tomz197/santa-rush/internal/physics"
)

// Player size and hitbox. The hitbox sits inside the visual box.
const (
	PlayerWidth   = 80.0
	PlayerHeight  = 80.0
	HitboxWidth   = 50.0
	HitboxHeight  = 50.0
	HitboxOffsetX = 15.0
	HitboxOffsetY = 15.0
)

// Player is the sleigh the user keeps in the air by holding boost.
type Player struct {
	X float64
	physics.Body
	Width    float64
	Alive    bool
	Boosting bool // Sampled from the input source once per frame
}

// NewPlayer creates a live player with its top-left corner at (x, y).
func NewPlayer(x, y float64) *Player {
	return &Player{
		X:     x,
		Body:  physics.Body{Y: y, Height: PlayerHeight},
		Width: PlayerWidth,
		Alive: true,
	}
}

// Update integrates one frame. Breaching the ceiling or touching the
// ground kills the player; death is final for the round.
func (p *Player) Update(m physics.Model, screen Screen) {
	if !p.Alive {
		return
	}
	if p.Boosting {
		m.ApplyThrust(&p.Body)
	}
	m.ApplyGravity(&p.Body)

	breached := p.Y < 0
	grounded := m.CheckBounds(&p.Body, screen.Height)
	if breached || grounded {
		p.Alive = false
	}
}

// Bounds returns the visual box.
func (p *Player) Bounds() physics.Rect {
	return physics.Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// Hitbox returns the collision box used against pickups.
func (p *Player) Hitbox() physics.Rect {
	return physics.Rect{X: p.X + HitboxOffsetX, Y: p.Y + HitboxOffsetY, W: HitboxWidth, H: HitboxHeight}
}

// HitCircle returns the circle inscribed around the hitbox center,
// with half the larger hitbox side as radius.
func (p *Player) HitCircle() physics.Circle {
	hb := p.Hitbox()
	return physics.Circle{
		X: hb.X + hb.W/2,
		Y: hb.Y + hb.H/2,
		R: math.Max(hb.W, hb.H) / 2,
	}
}

// Rotation is the cosmetic tilt in degrees derived from the vertical velocity.
func (p *Player) Rotation() float64 {
	return physics.Clamp(p.VelocityY*1.5, -20, 60)
}

// Draw renders the sleigh as a box tilted by its rotation.
func (p *Player) Draw(ctx DrawContext) error {
	cx := p.X + p.Width/2
	cy := p.Y + p.Height/2
	angle := p.Rotation() * math.Pi / 180
	sin, cos := math.Sincos(angle)

	hw, hh := p.Width/2, p.Height*0.35
	corners := [4]draw.Point{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
	points := ctx.Canvas.BorrowPoints(len(corners))
	for i, c := range corners {
		points[i] = draw.Point{X: cx + c.X*cos - c.Y*sin, Y: cy + c.X*sin + c.Y*cos}
	}
	ctx.Canvas.DrawPolygon(points, true)

	// Head above the body
	d := hh + p.Height/8
	ctx.Canvas.DrawCircle(cx+sin*d, cy-cos*d, p.Width/5, false)
	return nil
}
