package object

import "math/rand"

// Spawn timing, in frames.
const (
	InitialReindeerInterval = 100
	InitialGiftInterval     = 300
	PickupSpawnOffset       = 50.0  // Spawn this far right of the canvas
	PickupMargin            = 100.0 // Keep pickups this far from top and bottom
)

// ReindeerIntervalFor returns the reindeer spawn interval after a spawn at the given score.
func ReindeerIntervalFor(score int) int {
	return max(60, 120-score/3)
}

// GiftIntervalFor returns the gift spawn interval after a spawn at the given score.
func GiftIntervalFor(score int) int {
	return max(200, 300-score/5)
}

// Collection counts the pickups collected during one update.
type Collection struct {
	Reindeer int
	Gifts    int
}

// Bonus reports whether a gift was collected this frame.
func (c Collection) Bonus() bool {
	return c.Gifts > 0
}

// PickupManager runs two independent spawn timers, one per pickup kind.
type PickupManager struct {
	Pickups          []*Pickup
	screen           Screen
	rng              *rand.Rand
	reindeerTimer    int
	reindeerInterval int
	giftTimer        int
	giftInterval     int
}

// NewPickupManager creates an empty manager for the given canvas.
func NewPickupManager(screen Screen, rng *rand.Rand) *PickupManager {
	m := &PickupManager{
		screen: screen,
		rng:    rng,
	}
	m.Reset()
	return m
}

// Reset drops all pickups and restarts both timers at their initial intervals.
func (m *PickupManager) Reset() {
	m.Pickups = m.Pickups[:0]
	m.reindeerTimer = 0
	m.reindeerInterval = InitialReindeerInterval
	m.giftTimer = 0
	m.giftInterval = InitialGiftInterval
}

// Intervals returns the current reindeer and gift spawn intervals.
func (m *PickupManager) Intervals() (reindeer, gift int) {
	return m.reindeerInterval, m.giftInterval
}

// Update advances the timers, spawns, moves pickups, tests them against
// the player and prunes collected or off-screen ones.
func (m *PickupManager) Update(player *Player, score int) Collection {
	m.reindeerTimer++
	m.giftTimer++

	if m.reindeerTimer >= m.reindeerInterval {
		m.spawn(PickupReindeer)
		m.reindeerTimer = 0
		m.reindeerInterval = ReindeerIntervalFor(score)
	}
	if m.giftTimer >= m.giftInterval {
		m.spawn(PickupGift)
		m.giftTimer = 0
		m.giftInterval = GiftIntervalFor(score)
	}

	var got Collection
	for _, p := range m.Pickups {
		p.Update()
		if !p.TryCollect(player) {
			continue
		}
		switch p.Kind {
		case PickupReindeer:
			got.Reindeer++
		case PickupGift:
			got.Gifts++
		}
	}

	kept := m.Pickups[:0] // reuse backing array
	for _, p := range m.Pickups {
		if !p.Collected && !p.IsOffScreen() {
			kept = append(kept, p)
		}
	}
	clear(m.Pickups[len(kept):])
	m.Pickups = kept

	return got
}

func (m *PickupManager) spawn(kind PickupKind) {
	x := m.screen.Width + PickupSpawnOffset
	y := PickupMargin + m.rng.Float64()*(m.screen.Height-2*PickupMargin)
	m.Pickups = append(m.Pickups, NewPickup(kind, x, y))
}
