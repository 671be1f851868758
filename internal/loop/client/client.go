// Package client runs a single player's game on a terminal: it samples
// input, steps the player's own session and renders it with half-blocks.
package client

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/santa-rush/internal/draw"
	"github.com/tomz197/santa-rush/internal/input"
	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/loop/server"
	"github.com/tomz197/santa-rush/internal/loop/session"
	"github.com/tomz197/santa-rush/internal/object"
	"github.com/tomz197/santa-rush/internal/score"
)

// Client handles simulation, rendering and input for a single connection.
type Client struct {
	server       server.GameServer // Nil when playing alone
	handle       *server.ClientHandle
	state        *ClientState
	session      *session.Session
	store        score.Store
	reporter     *score.Reporter
	tuning       <-chan config.Tuning
	logger       *log.Logger
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	username     string
	termSizeFunc draw.TermSizeFunc
	rng          *rand.Rand // Cosmetic only, never shared with the session
	particles    []*object.Particle
	popups       []object.Popup
	drawables    []object.Drawable
	frame        uint64
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc  draw.TermSizeFunc
	Username      string
	Tuning        config.Tuning
	Store         score.Store          // High score; in-memory local store when nil
	Reporter      *score.Reporter      // Leaderboard submission; optional
	TuningUpdates <-chan config.Tuning // Applied at the next round; optional
	Logger        *log.Logger
}

// NewClient creates a client. gs may be nil for a single-player game;
// otherwise the client registers with the lobby.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) (*Client, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
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
		return nil, fmt.Errorf("client: %w", err)
	}

	var handle *server.ClientHandle
	if gs != nil {
		handle = gs.RegisterClient(username)
		username = handle.Username
	}

	state := NewClientState()
	state.HighScore = store.HighScore()

	screen := sess.Screen()
	termWidth, termHeight, err := draw.TerminalSize(termSizeFunc)
	if err != nil {
		logger.Debug("Using fallback terminal size", "err", err)
		termWidth, termHeight = draw.FallbackWidth, draw.FallbackHeight
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, screen.Width, screen.Height)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		server:       gs,
		handle:       handle,
		state:        state,
		session:      sess,
		store:        store,
		reporter:     opts.Reporter,
		tuning:       opts.TuningUpdates,
		logger:       logger,
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		lastInput:    time.Now(),
		username:     username,
		termSizeFunc: termSizeFunc,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run starts the client loop. Blocks until the client quits, its input
// closes or the server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := time.Now()

	for c.state.Running {
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if err := c.step(); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	if c.server != nil {
		c.server.UnregisterClient(c.handle.ID)
	}

	draw.ClearScreen(c.writer)
	return nil
}

// step runs one Input, Update, Draw cycle.
func (c *Client) step() error {
	c.frame++
	c.processInput()
	c.processServerEvents()
	c.processTuning()
	c.updateScreen()

	switch c.state.GameState {
	case GameStateStart:
		c.updateStartState()
	case GameStatePlaying:
		c.updatePlayingState()
	case GameStateOver:
		c.updateOverState()
	case GameStateShutdown:
		c.updateShutdownState()
	}
	c.updateParticles()
	if c.state.noticeFrames > 0 {
		c.state.noticeFrames--
	}

	return c.drawFrame()
}

// processInput samples the input stream for this frame.
func (c *Client) processInput() {
	c.state.Input = input.ReadInput(c.inputStream)

	if len(c.state.Input.Pressed) > 0 {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.logger.Info("Disconnecting inactive player", "user", c.username)
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit || c.state.Input.Closed {
		c.state.Running = false
	}
}

// processServerEvents handles events from the lobby.
func (c *Client) processServerEvents() {
	if c.handle == nil {
		return
	}
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				// Lobby closed the channel
				c.state.Running = false
				return
			}
			switch event.Type {
			case server.EventNewRecord:
				c.state.notice = fmt.Sprintf("%s leads the lobby with %d!", event.Username, event.Score)
				c.state.noticeFrames = config.NoticeFrames
			case server.EventServerShutdown:
				c.state.GameState = GameStateShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// processTuning queues the newest reloaded tuning for the next round.
func (c *Client) processTuning() {
	if c.tuning == nil {
		return
	}
	select {
	case t, ok := <-c.tuning:
		if !ok {
			c.tuning = nil
			return
		}
		if err := c.session.SetTuning(t); err != nil {
			c.logger.Warn("Rejected tuning", "err", err)
		}
	default:
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := draw.TerminalSize(c.termSizeFunc)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateStartState waits for the first boost press.
func (c *Client) updateStartState() {
	if c.state.Input.Restart {
		c.startRound()
	}
}

// updatePlayingState advances the round by one frame.
func (c *Client) updatePlayingState() {
	for _, ev := range c.session.Step(c.state.Input.Boost) {
		switch ev.Type {
		case session.EventFollowerGained:
			c.burst(ev, 8, 3, 20)
		case session.EventBonus:
			c.burst(ev, 12, 4, 25)
			c.popup(ev, fmt.Sprintf("+%d", ev.Count))
		case session.EventFollowersLost:
			c.burst(ev, 6*ev.Count, 5, 30)
			c.popup(ev, fmt.Sprintf("-%d reindeer", ev.Count))
		case session.EventRoundOver:
			c.burst(ev, 30, 6, 45)
			c.finishRound()
		}
	}
}

// finishRound records the result everywhere it is kept.
func (c *Client) finishRound() {
	res := c.session.Result()
	c.state.NewRecord = c.store.SaveHighScore(res.Score)
	c.state.HighScore = c.store.HighScore()
	c.state.GameState = GameStateOver
	c.state.overFrames = 0

	c.logger.Info("Round over", "user", c.username, "score", res.Score, "followers", res.Followers, "level", res.Level, "frames", res.Frames)

	if c.reporter != nil {
		c.reporter.Report(score.Entry{PlayerName: c.username, Score: res.Score, Followers: res.Followers})
	}
	if c.server != nil {
		c.server.RecordResult(c.handle.ID, res.Score, res.Followers)
	}
}

// updateOverState restarts after the delay, or earlier on a boost press
// once the lockout has passed.
func (c *Client) updateOverState() {
	c.state.overFrames++
	if c.state.overFrames >= c.session.Tuning().RestartDelayFrames {
		c.startRound()
		return
	}
	if c.state.overFrames >= config.RestartLockFrames && c.state.Input.Restart {
		c.startRound()
	}
}

// startRound starts or restarts the game.
func (c *Client) startRound() {
	input.ResetKeyInput(c.inputStream)
	c.session.Reset()
	c.clearEffects()

	// A reloaded tuning may have resized the logical canvas
	screen := c.session.Screen()
	if screen.Width != c.canvas.LogicalWidth() || screen.Height != c.canvas.LogicalHeight() {
		canvas := draw.NewScaledCanvas(c.canvas.TerminalWidth(), c.canvas.TerminalHeight(), screen.Width, screen.Height)
		canvas.SetOffset(c.canvas.OffsetCol(), c.canvas.OffsetRow())
		c.canvas = canvas
	}
	c.state.NewRecord = false
	c.state.GameState = GameStatePlaying
}

// clearEffects drops the particles and popups of the last round.
func (c *Client) clearEffects() {
	for _, p := range c.particles {
		p.Release()
	}
	clear(c.particles)
	c.particles = c.particles[:0]
	c.popups = c.popups[:0]
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}

// burst spawns cosmetic particles at an event position.
func (c *Client) burst(ev session.Event, count int, speed float64, lifetime int) {
	c.particles = append(c.particles, object.Burst(ev.X, ev.Y, count, speed, lifetime, c.rng)...)
}

// popup floats a short text up from an event position.
func (c *Client) popup(ev session.Event, text string) {
	c.popups = append(c.popups, object.NewPopup(ev.X, ev.Y-object.PlayerHeight/2, text, popupFrames))
}

// popupFrames is how long a popup stays on screen.
const popupFrames = 45

// updateParticles moves particles and popups, returning expired particles
// to the pool.
func (c *Client) updateParticles() {
	kept := c.particles[:0]
	for _, p := range c.particles {
		if p.Update() {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(c.particles[len(kept):])
	c.particles = kept

	popups := c.popups[:0]
	for _, p := range c.popups {
		if !p.Update() {
			popups = append(popups, p)
		}
	}
	c.popups = popups
}
