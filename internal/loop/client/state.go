package client

import (
	"time"

	"github.com/tomz197/santa-rush/internal/input"
)

// GameState represents the current game phase for a client.
type GameState int

const (
	GameStateStart    GameState = iota // Title screen
	GameStatePlaying                   // Active round
	GameStateOver                      // Round ended, auto-restart pending
	GameStateShutdown                  // Server is shutting down
)

func (s GameState) String() string {
	switch s {
	case GameStateStart:
		return "start"
	case GameStatePlaying:
		return "playing"
	case GameStateOver:
		return "over"
	case GameStateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ClientState holds per-player presentation state. The round itself lives
// in the session.
type ClientState struct {
	Input         input.Input
	GameState     GameState
	Running       bool
	HighScore     int
	NewRecord     bool // Last round set a new high score
	overFrames    int  // Frames since the round ended
	notice        string
	noticeFrames  int
	delta         time.Duration
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool

	// Previous frame values, used to detect transitions that need a full redraw
	prevGameState GameState
	wasInactive   bool
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		GameState:     GameStateStart,
		prevGameState: GameStateStart,
		Running:       true,
	}
}
