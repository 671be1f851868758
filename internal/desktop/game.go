// Package desktop plays the game in a window with ebiten. It drives the same
// session as the terminal client and only differs in input and rendering.
package desktop

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/loop/session"
	"github.com/tomz197/santa-rush/internal/object"
	"github.com/tomz197/santa-rush/internal/score"
)

// ErrQuit is returned from Update when the player closes the game.
var ErrQuit = ebiten.Termination

// GameState represents the current game phase.
type GameState int

const (
	GameStateStart   GameState = iota // Title screen
	GameStatePlaying                  // Active round
	GameStateOver                     // Round ended, auto-restart pending
)

// Input is the state of the controls for one frame.
type Input struct {
	Boost   bool // Key, mouse button, touch or gamepad held
	Restart bool // Enter, or a fresh boost press
	Quit    bool
}

// Options configures the window game.
type Options struct {
	Username      string
	Tuning        config.Tuning
	Store         score.Store          // High score; in-memory local store when nil
	Reporter      *score.Reporter      // Leaderboard submission; optional
	TuningUpdates <-chan config.Tuning // Applied at the next round; optional
	Logger        *log.Logger
}

// Game implements ebiten.Game over a session.
type Game struct {
	session    *session.Session
	store      score.Store
	reporter   *score.Reporter
	tuning     <-chan config.Tuning
	logger     *log.Logger
	username   string
	state      GameState
	overFrames int
	highScore  int
	newRecord  bool
	prevBoost  bool
	rng        *rand.Rand // Cosmetic only
	particles  []*object.Particle
	touches    []ebiten.TouchID
	gamepads   []ebiten.GamepadID
	sprites    *sprites // Created on first Draw
}

var _ ebiten.Game = (*Game)(nil)

// New creates a window game. It does not open the window; pass the game
// to ebiten.RunGame.
func New(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	store := opts.Store
	if store == nil {
		store = score.NewLocalStore(nil, logger)
	}
	username := opts.Username
	if username == "" {
		username = config.DefaultPlayerName
	}

	sess, err := session.New(opts.Tuning, session.NewRand(opts.Tuning.Seed))
	if err != nil {
		return nil, fmt.Errorf("desktop: %w", err)
	}

	return &Game{
		session:   sess,
		store:     store,
		reporter:  opts.Reporter,
		tuning:    opts.TuningUpdates,
		logger:    logger,
		username:  username,
		highScore: store.HighScore(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Update samples the devices and advances one frame.
func (g *Game) Update() error {
	return g.tick(g.readInput())
}

// Layout keeps the logical canvas; ebiten scales it to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	screen := g.session.Screen()
	return int(screen.Width), int(screen.Height)
}

// readInput samples keyboard, mouse, touch and gamepads.
func (g *Game) readInput() Input {
	boost := ebiten.IsKeyPressed(ebiten.KeySpace) ||
		ebiten.IsKeyPressed(ebiten.KeyArrowUp) ||
		ebiten.IsKeyPressed(ebiten.KeyW) ||
		ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	boost = boost || len(g.touches) > 0

	g.gamepads = ebiten.AppendGamepadIDs(g.gamepads[:0])
	for _, id := range g.gamepads {
		boost = boost || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
	}

	return Input{
		Boost:   boost,
		Restart: inpututil.IsKeyJustPressed(ebiten.KeyEnter),
		Quit:    inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ),
	}
}

// tick advances the game by one frame with the sampled input.
func (g *Game) tick(in Input) error {
	if in.Quit {
		return ErrQuit
	}
	if in.Boost && !g.prevBoost {
		in.Restart = true
	}
	g.prevBoost = in.Boost

	g.processTuning()

	switch g.state {
	case GameStateStart:
		if in.Restart {
			g.startRound()
		}
	case GameStatePlaying:
		g.updatePlaying(in.Boost)
	case GameStateOver:
		g.overFrames++
		if g.overFrames >= g.session.Tuning().RestartDelayFrames ||
			(g.overFrames >= config.RestartLockFrames && in.Restart) {
			g.startRound()
		}
	}

	g.updateParticles()
	return nil
}

// processTuning queues the newest reloaded tuning for the next round.
func (g *Game) processTuning() {
	if g.tuning == nil {
		return
	}
	select {
	case t, ok := <-g.tuning:
		if !ok {
			g.tuning = nil
			return
		}
		if err := g.session.SetTuning(t); err != nil {
			g.logger.Warn("Rejected tuning", "err", err)
		}
	default:
	}
}

func (g *Game) startRound() {
	g.session.Reset()
	for _, p := range g.particles {
		p.Release()
	}
	clear(g.particles)
	g.particles = g.particles[:0]
	g.newRecord = false
	g.state = GameStatePlaying
}

func (g *Game) updatePlaying(boost bool) {
	for _, ev := range g.session.Step(boost) {
		switch ev.Type {
		case session.EventFollowerGained:
			g.burst(ev, 10, 3, 25)
		case session.EventBonus:
			g.burst(ev, 16, 4, 30)
		case session.EventFollowersLost:
			g.burst(ev, 8*ev.Count, 5, 35)
		case session.EventRoundOver:
			g.burst(ev, 40, 6, 50)
			g.finishRound()
		}
	}
}

// finishRound records the result in the store and the reporter.
func (g *Game) finishRound() {
	res := g.session.Result()
	g.newRecord = g.store.SaveHighScore(res.Score)
	g.highScore = g.store.HighScore()
	g.state = GameStateOver
	g.overFrames = 0

	g.logger.Info("Round over", "user", g.username, "score", res.Score, "followers", res.Followers, "level", res.Level)

	if g.reporter != nil {
		g.reporter.Report(score.Entry{PlayerName: g.username, Score: res.Score, Followers: res.Followers})
	}
}

func (g *Game) burst(ev session.Event, count int, speed float64, lifetime int) {
	g.particles = append(g.particles, object.Burst(ev.X, ev.Y, count, speed, lifetime, g.rng)...)
}

func (g *Game) updateParticles() {
	kept := g.particles[:0]
	for _, p := range g.particles {
		if p.Update() {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(g.particles[len(kept):])
	g.particles = kept
}

// IsQuit reports whether err is the normal end of the game.
func IsQuit(err error) bool {
	return errors.Is(err, ErrQuit)
}
