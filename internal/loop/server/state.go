package server

import (
	"slices"
	"strings"
)

// TopScoreEntry is a player's best round since the lobby started.
type TopScoreEntry struct {
	Username  string
	Score     int
	Followers int
	clientID  int // Deterministic tie-break when scores are equal
}

// Snapshot is an immutable view of the lobby for rendering.
type Snapshot struct {
	Players   int             // Connected clients
	TopScores []TopScoreEntry // Best first
}

// compareEntries orders by score, then by who got there first.
func compareEntries(a, b TopScoreEntry) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	return a.clientID - b.clientID
}

// rankBest returns the n best entries of best, sorted.
func rankBest(best map[int]TopScoreEntry, n int) []TopScoreEntry {
	top := make([]TopScoreEntry, 0, len(best))
	for _, e := range best {
		top = append(top, e)
	}
	slices.SortFunc(top, compareEntries)
	if len(top) > n {
		top = top[:n]
	}
	return top
}

// sanitizeUsername keeps printable ASCII so a name can't inject escape
// sequences into other players' terminals.
func sanitizeUsername(name string, maxLen int) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if len(name) > maxLen {
		name = name[:maxLen]
	}
	return name
}
