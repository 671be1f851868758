package object

import (
	"math"

	"github.com/tomz197/santa-rush/internal/draw"
	"github.com/tomz197/santa-rush/internal/physics"
)

// PickupKind selects the collection geometry and effect of a pickup.
type PickupKind int

const (
	PickupReindeer PickupKind = iota // Joins the chain
	PickupGift                       // Grants bonus points
)

func (k PickupKind) String() string {
	switch k {
	case PickupReindeer:
		return "reindeer"
	case PickupGift:
		return "gift"
	default:
		return "unknown"
	}
}

// Pickup geometry and motion.
const (
	ReindeerRadius = 15.0
	GiftSize       = 30.0
	PickupSpeed    = 2.5 // Matches the level 1 obstacle speed
	giftSpin       = 0.05
)

// Pickup is a reindeer or a gift drifting left across the canvas.
// X, Y is the center for both kinds.
type Pickup struct {
	Kind      PickupKind
	X, Y      float64
	Collected bool    // Set once, never cleared
	Rotation  float64 // Radians, cosmetic
}

// NewPickup creates an uncollected pickup centered at (x, y).
func NewPickup(kind PickupKind, x, y float64) *Pickup {
	return &Pickup{Kind: kind, X: x, Y: y}
}

// Update moves the pickup left.
func (p *Pickup) Update() {
	p.X -= PickupSpeed
	if p.Kind == PickupGift {
		p.Rotation += giftSpin
	}
}

// IsOffScreen reports whether the pickup has left the canvas on the left.
func (p *Pickup) IsOffScreen() bool {
	if p.Kind == PickupGift {
		return p.X+GiftSize < 0
	}
	return p.X+ReindeerRadius < 0
}

// Circle returns the collection circle of a reindeer.
func (p *Pickup) Circle() physics.Circle {
	return physics.Circle{X: p.X, Y: p.Y, R: ReindeerRadius}
}

// Rect returns the collection box of a gift.
func (p *Pickup) Rect() physics.Rect {
	return physics.Rect{X: p.X - GiftSize/2, Y: p.Y - GiftSize/2, W: GiftSize, H: GiftSize}
}

// TryCollect tests the pickup against the player's hitbox and marks it
// collected on contact. Returns false if it was already collected.
func (p *Pickup) TryCollect(player *Player) bool {
	if p.Collected {
		return false
	}

	var hit bool
	switch p.Kind {
	case PickupReindeer:
		hit = physics.CirclesOverlap(player.HitCircle(), p.Circle())
	case PickupGift:
		hit = physics.Overlaps(p.Rect(), player.Hitbox())
	}
	if hit {
		p.Collected = true
	}
	return hit
}

// Draw renders the pickup. Collected pickups are not drawn.
func (p *Pickup) Draw(ctx DrawContext) error {
	if p.Collected {
		return nil
	}
	c := ctx.Canvas

	switch p.Kind {
	case PickupReindeer:
		// Pulse with the frame counter
		pulse := math.Sin(float64(ctx.Frame)/12) * 2
		c.DrawCircle(p.X, p.Y, ReindeerRadius+pulse, true)
		c.DrawCircle(p.X, p.Y, ReindeerRadius+pulse+4, false)
	case PickupGift:
		sin, cos := math.Sincos(p.Rotation)
		h := GiftSize / 2
		corners := [4]draw.Point{{X: -h, Y: -h}, {X: h, Y: -h}, {X: h, Y: h}, {X: -h, Y: h}}
		points := c.BorrowPoints(len(corners))
		for i, k := range corners {
			points[i] = draw.Point{X: p.X + k.X*cos - k.Y*sin, Y: p.Y + k.X*sin + k.Y*cos}
		}
		c.DrawPolygon(points, false)
		// Ribbon
		c.DrawLine(draw.Point{X: p.X - h*cos, Y: p.Y - h*sin}, draw.Point{X: p.X + h*cos, Y: p.Y + h*sin})
		c.DrawLine(draw.Point{X: p.X + h*sin, Y: p.Y - h*cos}, draw.Point{X: p.X - h*sin, Y: p.Y + h*cos})
	}
	return nil
}
