package object

import (
	"math"
	"math/rand"
)

// Difficulty scaling.
const (
	SpawnDistance     = 400.0 // Distance between consecutive obstacles
	PointsPerLevel    = 15
	BaseGapSize       = 200.0
	MinGapSize        = 150.0
	GapShrinkPerLevel = 3.0
	BaseObstacleSpeed = 2.5
	SpeedGainPerLevel = 0.15
)

// DifficultyLevel returns the level reached at the given score, starting at 1.
func DifficultyLevel(score int) int {
	return 1 + score/PointsPerLevel
}

// GapSizeForLevel returns the gap height new obstacles get at a level.
func GapSizeForLevel(level int) float64 {
	return math.Max(MinGapSize, BaseGapSize-GapShrinkPerLevel*float64(level))
}

// SpeedForLevel returns the scroll speed every live obstacle moves at.
func SpeedForLevel(level int) float64 {
	return BaseObstacleSpeed + SpeedGainPerLevel*float64(level)
}

// ObstacleManager spawns obstacles at a fixed spacing and scales them with the score.
type ObstacleManager struct {
	Obstacles []*Obstacle
	screen    Screen
	rng       *rand.Rand
	cursor    float64 // Where the next obstacle goes; scrolls with the obstacles
	level     int
}

// NewObstacleManager creates an empty manager for the given canvas.
func NewObstacleManager(screen Screen, rng *rand.Rand) *ObstacleManager {
	m := &ObstacleManager{
		screen: screen,
		rng:    rng,
	}
	m.Reset()
	return m
}

// Reset drops all obstacles and rewinds the spawn cursor to the right edge.
func (m *ObstacleManager) Reset() {
	m.Obstacles = m.Obstacles[:0]
	m.cursor = m.screen.Width
	m.level = 1
}

// Level returns the difficulty level computed on the last update.
func (m *ObstacleManager) Level() int {
	return m.level
}

// Update spawns, moves and prunes obstacles for one frame.
//
// The cursor sits SpawnDistance to the right of the newest obstacle and moves
// with it, so a new obstacle is spawned when the cursor reaches the right edge.
// Speed applies to every live obstacle; gap size only to new ones.
func (m *ObstacleManager) Update(score int) {
	m.level = DifficultyLevel(score)
	speed := SpeedForLevel(m.level)

	if len(m.Obstacles) == 0 || m.cursor <= m.screen.Width {
		m.Obstacles = append(m.Obstacles, NewObstacle(m.cursor, m.screen, GapSizeForLevel(m.level), m.rng))
		m.cursor += SpawnDistance
	}

	for _, o := range m.Obstacles {
		o.Speed = speed
		o.Update()
	}
	m.cursor -= speed

	kept := m.Obstacles[:0] // reuse backing array
	for _, o := range m.Obstacles {
		if !o.IsOffScreen() {
			kept = append(kept, o)
		}
	}
	clear(m.Obstacles[len(kept):])
	m.Obstacles = kept
}

// CheckCollisions reports whether the player's box hits any obstacle.
func (m *ObstacleManager) CheckCollisions(p *Player) bool {
	box := p.Bounds()
	for _, o := range m.Obstacles {
		if o.Collides(box) {
			return true
		}
	}
	return false
}

// CheckScore marks newly passed obstacles and returns how many there were.
func (m *ObstacleManager) CheckScore(p *Player) int {
	gained := 0
	for _, o := range m.Obstacles {
		if o.Pass(p.X) {
			gained++
		}
	}
	return gained
}
