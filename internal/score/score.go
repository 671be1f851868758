// Package score keeps high scores and leaderboards, locally and on the
// leaderboard backend, without ever blocking the frame loop.
package score

import (
	"context"
	"sort"
	"time"
)

// AnonymousName replaces an empty player name.
const AnonymousName = "Anonymous"

// Leaderboard sizes.
const (
	LocalLeaderboardSize  = 50
	RemoteLeaderboardSize = 100
	DefaultLimit          = 10
)

// Entry is one submitted round.
type Entry struct {
	ID         int       `json:"id,omitempty" yaml:"id,omitempty"`
	PlayerName string    `json:"playerName" yaml:"playerName"`
	Score      int       `json:"score" yaml:"score"`
	Followers  int       `json:"followers" yaml:"followers"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// SubmitResult reports where a submitted entry ended up.
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Entry   *Entry `json:"score,omitempty"`
	Remote  bool   `json:"-"` // Accepted by the backend rather than the local store
}

// Store is what the game needs from score persistence. Implementations
// absorb backend failures by falling back to local state.
type Store interface {
	HighScore() int
	// SaveHighScore records score if it beats the current high score and
	// reports whether it did.
	SaveHighScore(score int) bool
	Submit(ctx context.Context, e Entry) (SubmitResult, error)
	// Leaderboard returns at most limit entries, best first.
	Leaderboard(ctx context.Context, limit int) []Entry
}

// Normalize fills the defaults of a fresh entry.
func (e Entry) Normalize(now time.Time) Entry {
	if e.PlayerName == "" {
		e.PlayerName = AnonymousName
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}

// Insert adds e to a leaderboard sorted by score, best first, and truncates
// it to keep entries. Ties keep submission order.
func Insert(board []Entry, e Entry, keep int) []Entry {
	i := sort.Search(len(board), func(i int) bool {
		return board[i].Score < e.Score
	})
	board = append(board, Entry{})
	copy(board[i+1:], board[i:])
	board[i] = e
	if len(board) > keep {
		board = board[:keep]
	}
	return board
}

// Top returns a copy of the first limit entries. A non-positive limit means DefaultLimit.
func Top(board []Entry, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, len(board))
	out := make([]Entry, limit)
	copy(out, board[:limit])
	return out
}
