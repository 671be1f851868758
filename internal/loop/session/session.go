// Package session owns one round of the game and advances it frame by frame.
package session

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/object"
	"github.com/tomz197/santa-rush/internal/physics"
)

// Phase is the round lifecycle: Playing until the player dies, then Over.
type Phase int

const (
	PhasePlaying Phase = iota
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhasePlaying:
		return "playing"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// maxFollowersLost is how many followers one obstacle hit costs.
const maxFollowersLost = 2

// Result summarizes a round.
type Result struct {
	Score     int
	Followers int
	Level     int
	Frames    int
}

// Session is the aggregate that owns every entity of a round. All mutation
// happens inside Step, so a Session must only be used from one goroutine.
type Session struct {
	Player     *object.Player
	Followers  []*object.Follower // Index 0 is nearest the player
	Obstacles  *object.ObstacleManager
	Pickups    *object.PickupManager
	Score      int
	Invincible int // Frames left in the invincibility window
	Frame      int // Frames stepped this round

	tuning  config.Tuning
	pending *config.Tuning // Applied at the next Reset
	model   physics.Model
	screen  object.Screen
	rng     *rand.Rand
	phase   Phase
	events  []Event // Reused between steps
}

// New creates a session and starts its first round. The rng drives every
// random placement, so a seeded rng makes the round reproducible.
func New(t config.Tuning, rng *rand.Rand) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	s := &Session{rng: rng}
	s.apply(t)
	s.Reset()
	return s, nil
}

// NewRand returns the rng for a tuning seed. Zero picks a time-based seed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (s *Session) apply(t config.Tuning) {
	s.tuning = t
	s.model = t.Model()
	s.screen = object.Screen{Width: t.Width, Height: t.Height}
	s.Obstacles = object.NewObstacleManager(s.screen, s.rng)
	s.Pickups = object.NewPickupManager(s.screen, s.rng)
}

// SetTuning validates t and queues it for the next round. The running round
// keeps its tuning.
func (s *Session) SetTuning(t config.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.pending = &t
	return nil
}

// Tuning returns the tuning of the current round.
func (s *Session) Tuning() config.Tuning {
	return s.tuning
}

// Reset starts a new round: a fresh player at mid-height, empty chain,
// empty spawners and zero score. A queued tuning takes effect here.
func (s *Session) Reset() {
	if s.pending != nil {
		s.apply(*s.pending)
		s.pending = nil
	}
	s.Player = object.NewPlayer(config.PlayerStartX, s.screen.Height/2)
	clear(s.Followers)
	s.Followers = s.Followers[:0]
	s.Obstacles.Reset()
	s.Pickups.Reset()
	s.Score = 0
	s.Invincible = 0
	s.Frame = 0
	s.phase = PhasePlaying
}

// Phase returns the current round phase.
func (s *Session) Phase() Phase {
	return s.phase
}

// Level returns the current difficulty level.
func (s *Session) Level() int {
	return object.DifficultyLevel(s.Score)
}

// Screen returns the logical canvas of the current round.
func (s *Session) Screen() object.Screen {
	return s.screen
}

// Result returns the round summary. Once the round is over it no longer changes.
func (s *Session) Result() Result {
	return Result{
		Score:     s.Score,
		Followers: len(s.Followers),
		Level:     s.Level(),
		Frames:    s.Frame,
	}
}

// Step advances the round by one frame with the sampled boost input and
// returns what happened. The returned slice is reused by the next Step.
// Stepping a finished round does nothing.
func (s *Session) Step(boost bool) []Event {
	s.events = s.events[:0]
	if s.phase != PhasePlaying {
		return s.events
	}
	s.Frame++

	s.Player.Boosting = boost
	s.Player.Update(s.model, s.screen)
	if !s.Player.Alive {
		s.end()
		return s.events
	}

	s.Obstacles.Update(s.Score)
	if gained := s.Obstacles.CheckScore(s.Player); gained > 0 {
		s.Score += gained
		s.emit(EventScored, gained)
	}

	if s.Invincible == 0 && s.Obstacles.CheckCollisions(s.Player) {
		if !s.hit() {
			return s.events
		}
	}
	if s.Invincible > 0 {
		s.Invincible--
	}

	got := s.Pickups.Update(s.Player, s.Score)
	for i := 0; i < got.Reindeer; i++ {
		s.addFollower()
	}
	if got.Bonus() {
		s.Score += s.tuning.GiftBonus
		s.emit(EventBonus, s.tuning.GiftBonus)
	}

	s.updateChain()
	return s.events
}

// hit applies an obstacle collision. The chain absorbs it when it can;
// otherwise the round ends. Returns false if the round ended.
func (s *Session) hit() bool {
	n := len(s.Followers)
	if n == 0 {
		s.Player.Alive = false
		s.end()
		return false
	}

	lost := min(maxFollowersLost, n)
	clear(s.Followers[n-lost:])
	s.Followers = s.Followers[:n-lost]
	s.Invincible = s.tuning.InvincibilityFrames
	s.emit(EventFollowersLost, lost)
	return true
}

// addFollower seats a new follower behind the end of the chain.
func (s *Session) addFollower() {
	n := len(s.Followers)
	x := s.Player.X - float64(n)*object.FollowerSpacing
	s.Followers = append(s.Followers, object.NewFollower(x, s.Player.Y, n))
	s.emit(EventFollowerGained, 1)
}

// updateChain re-targets every follower on its leader, front to back.
func (s *Session) updateChain() {
	var leader object.Leader = s.Player
	for _, f := range s.Followers {
		f.Update(leader)
		leader = f
	}
}

func (s *Session) end() {
	s.phase = PhaseOver
	s.emit(EventRoundOver, s.Score)
}

func (s *Session) emit(t EventType, n int) {
	s.events = append(s.events, Event{
		Type:  t,
		Count: n,
		X:     s.Player.X + s.Player.Width/2,
		Y:     s.Player.Y + s.Player.Height/2,
	})
}

// Drawables returns the entities in paint order: obstacles, pickups, the
// chain from its far end, then the player.
func (s *Session) Drawables(dst []object.Drawable) []object.Drawable {
	for _, o := range s.Obstacles.Obstacles {
		dst = append(dst, o)
	}
	for _, p := range s.Pickups.Pickups {
		dst = append(dst, p)
	}
	for i := len(s.Followers) - 1; i >= 0; i-- {
		dst = append(dst, s.Followers[i])
	}
	return append(dst, s.Player)
}
