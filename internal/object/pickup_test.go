package object

import (
	"math/rand"
	"testing"
)

func TestReindeerCollectionIsStrict(t *testing.T) {
	p := NewPlayer(100, 200)
	c := p.HitCircle()
	reach := c.R + ReindeerRadius

	tests := []struct {
		name string
		dx   float64
		want bool
	}{
		{"exactly touching", reach, false},
		{"just inside", reach - 0.01, true},
		{"centered", 0, true},
		{"far away", reach + 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewPickup(PickupReindeer, c.X+tt.dx, c.Y)
			if got := r.TryCollect(p); got != tt.want {
				t.Errorf("TryCollect: got %v, want %v", got, tt.want)
			}
			if r.Collected != tt.want {
				t.Errorf("Collected: got %v, want %v", r.Collected, tt.want)
			}
		})
	}
}

func TestGiftCollectionUsesHitbox(t *testing.T) {
	p := NewPlayer(100, 200)
	hb := p.Hitbox()

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside hitbox", hb.X + hb.W/2, hb.Y + hb.H/2, true},
		{"touching hitbox edge", hb.X + hb.W + GiftSize/2, hb.Y + hb.H/2, false},
		{"in the visual margin only", p.X + 2 - GiftSize/2 + 0.5, p.Y + 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewPickup(PickupGift, tt.x, tt.y)
			if got := g.TryCollect(p); got != tt.want {
				t.Errorf("TryCollect: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPickupCollectedOnce(t *testing.T) {
	p := NewPlayer(100, 200)
	c := p.HitCircle()
	r := NewPickup(PickupReindeer, c.X, c.Y)

	if !r.TryCollect(p) {
		t.Fatal("first TryCollect: want true")
	}
	if r.TryCollect(p) {
		t.Error("second TryCollect: want false")
	}
}

func TestPickupOffScreen(t *testing.T) {
	tests := []struct {
		kind PickupKind
		x    float64
		want bool
	}{
		{PickupReindeer, -ReindeerRadius, false},
		{PickupReindeer, -ReindeerRadius - 0.1, true},
		{PickupGift, -GiftSize, false},
		{PickupGift, -GiftSize - 0.1, true},
	}
	for _, tt := range tests {
		p := NewPickup(tt.kind, tt.x, 300)
		if got := p.IsOffScreen(); got != tt.want {
			t.Errorf("%v at %v: IsOffScreen got %v, want %v", tt.kind, tt.x, got, tt.want)
		}
	}
}

func TestPickupIntervals(t *testing.T) {
	tests := []struct {
		score        int
		wantReindeer int
		wantGift     int
	}{
		{0, 120, 300},
		{45, 105, 291},
		{100, 87, 280},
		{180, 60, 264},
		{600, 60, 200},
	}
	for _, tt := range tests {
		if got := ReindeerIntervalFor(tt.score); got != tt.wantReindeer {
			t.Errorf("score %d: reindeer interval got %d, want %d", tt.score, got, tt.wantReindeer)
		}
		if got := GiftIntervalFor(tt.score); got != tt.wantGift {
			t.Errorf("score %d: gift interval got %d, want %d", tt.score, got, tt.wantGift)
		}
	}
}

func TestPickupManagerSpawnTimers(t *testing.T) {
	m := NewPickupManager(testScreen, rand.New(rand.NewSource(11)))
	// Out of reach of every pickup
	p := NewPlayer(-1000, 300)

	for i := 1; i < InitialReindeerInterval; i++ {
		m.Update(p, 45)
	}
	if len(m.Pickups) != 0 {
		t.Fatalf("spawned %d pickups before the first interval", len(m.Pickups))
	}

	m.Update(p, 45)
	if len(m.Pickups) != 1 || m.Pickups[0].Kind != PickupReindeer {
		t.Fatalf("frame %d: want one reindeer, got %d pickups", InitialReindeerInterval, len(m.Pickups))
	}
	if reindeer, gift := m.Intervals(); reindeer != 105 || gift != InitialGiftInterval {
		t.Errorf("Intervals: got (%d, %d), want (105, %d)", reindeer, gift, InitialGiftInterval)
	}

	spawned := m.Pickups[0]
	if spawned.X != testScreen.Width+PickupSpawnOffset-PickupSpeed {
		t.Errorf("spawn x: got %v, want %v after one move", spawned.X, testScreen.Width+PickupSpawnOffset-PickupSpeed)
	}
	if spawned.Y < PickupMargin || spawned.Y > testScreen.Height-PickupMargin {
		t.Errorf("spawn y %v outside margins", spawned.Y)
	}

	for i := InitialReindeerInterval; i < InitialGiftInterval; i++ {
		m.Update(p, 100)
	}
	gifts := 0
	for _, pk := range m.Pickups {
		if pk.Kind == PickupGift {
			gifts++
		}
	}
	if gifts != 1 {
		t.Errorf("gifts after %d frames: got %d, want 1", InitialGiftInterval, gifts)
	}
	if _, gift := m.Intervals(); gift != 280 {
		t.Errorf("gift interval: got %d, want 280", gift)
	}
}

func TestPickupManagerCollects(t *testing.T) {
	m := NewPickupManager(testScreen, rand.New(rand.NewSource(11)))
	p := NewPlayer(100, 300)
	c := p.HitCircle()
	m.Pickups = append(m.Pickups,
		NewPickup(PickupReindeer, c.X+PickupSpeed, c.Y),
		NewPickup(PickupGift, c.X+PickupSpeed, c.Y),
		NewPickup(PickupReindeer, 700, 300),
	)

	got := m.Update(p, 0)

	if got.Reindeer != 1 || got.Gifts != 1 || !got.Bonus() {
		t.Errorf("Collection: got %+v", got)
	}
	if len(m.Pickups) != 1 || m.Pickups[0].X != 700-PickupSpeed {
		t.Errorf("remaining pickups: got %d", len(m.Pickups))
	}

	if got := m.Update(p, 0); got.Bonus() || got.Reindeer != 0 {
		t.Errorf("second update: got %+v, want nothing collected", got)
	}
}

func TestPickupManagerPrunesOffScreen(t *testing.T) {
	m := NewPickupManager(testScreen, rand.New(rand.NewSource(2)))
	p := NewPlayer(-1000, 300)
	m.Pickups = append(m.Pickups, NewPickup(PickupReindeer, -ReindeerRadius+1, 300))

	m.Update(p, 0)

	if len(m.Pickups) != 0 {
		t.Errorf("off-screen pickup kept: %d left", len(m.Pickups))
	}
}
