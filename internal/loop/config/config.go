// Package config centralizes all tunable game parameters.
package config

import "time"

// Logical resolution - the canvas the simulation runs on, in pixels.
// Renderers scale it to whatever surface they draw on.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Smallest canvas the spawners can place gaps and pickups on.
const (
	MinWidth  = 320
	MinHeight = 400
)

// Player
const (
	PlayerStartX         = 100
	InvincibilityFrames  = 30
	PlayerBlinkFrequency = 10.0 // Hz
	MaxPlayerNameLength  = 16
	DefaultPlayerName    = "Player"
)

// Scoring
const (
	GiftBonus = 5
)

// Round lifecycle
const (
	RestartDelayFrames = 120 // Auto-restart after two seconds
	RestartLockFrames  = 30  // Ignore boost input right after death
)

// Leaderboard
const (
	LeaderboardSize = 5 // Entries shown on the game-over screen
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Terminal render area is clamped to this size and centered.
const (
	MaxTermWidth  = 160
	MaxTermHeight = 50
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity. Rounds restart on their own, so idle SSH players are dropped.
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// NoticeFrames is how long a lobby notice stays in the HUD.
const NoticeFrames = 3 * ClientTargetFPS

// Score reporting
const (
	ReportTimeout   = 5 * time.Second
	ReportQueueSize = 16
)
