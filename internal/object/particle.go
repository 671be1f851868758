package object

import (
	"math"
	"math/rand"
	"sync"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect. It never takes part in collisions.
type Particle struct {
	X, Y     float64 // Position
	VX, VY   float64 // Pixels per frame
	Lifetime int     // Frames remaining
	MaxLife  int     // Initial lifetime (for fade calculation)
	Drag     float64 // Velocity kept per frame (1.0 = no drag)
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy float64, lifetime int) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Lifetime = lifetime
	p.MaxLife = lifetime
	p.Drag = 0.95
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Burst creates count particles flying out of (x, y) in random directions.
func Burst(x, y float64, count int, speed float64, lifetime int, rng *rand.Rand) []*Particle {
	particles := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		// Random speed variation (50% to 150%)
		spd := speed * (0.5 + rng.Float64())
		// Random lifetime variation (50% to 100%)
		life := lifetime/2 + rng.Intn(lifetime/2+1)

		sin, cos := math.Sincos(angle)
		particles = append(particles, NewParticle(x, y, cos*spd, sin*spd, life))
	}
	return particles
}

// Update moves the particle one frame. Returns true when it has expired.
func (p *Particle) Update() bool {
	p.Lifetime--
	if p.Lifetime <= 0 {
		return true
	}
	p.VX *= p.Drag
	p.VY *= p.Drag
	p.X += p.VX
	p.Y += p.VY
	return false
}

// Draw renders the particle as a pixel on the canvas.
func (p *Particle) Draw(ctx DrawContext) error {
	// Skip faded particles (< 25% lifetime)
	if p.MaxLife > 0 && p.Lifetime*4 < p.MaxLife {
		return nil
	}
	ctx.Canvas.SetFloat(p.X, p.Y)
	return nil
}
