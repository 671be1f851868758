package score

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// gdata object and properties holding the saved scores.
const (
	scoresObject        = "scores"
	highScoreProperty   = "high"
	leaderboardProperty = "leaderboard"
)

// LocalStore keeps the high score and a top-50 leaderboard on disk through
// gdata. With a nil manager it works in memory only.
type LocalStore struct {
	mu        sync.Mutex
	data      *gdata.Manager // nil: in-memory mode
	logger    *log.Logger
	highScore int
	entries   []Entry
	now       func() time.Time
}

var _ Store = (*LocalStore)(nil)

// OpenLocalStore opens the per-user data directory of appName. If it cannot
// be opened the store degrades to memory and says so in the log.
func OpenLocalStore(appName string, logger *log.Logger) *LocalStore {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Warn("Local score storage unavailable, scores will not be saved", "app", appName, "err", err)
		m = nil
	}
	return NewLocalStore(m, logger)
}

// NewLocalStore creates a store over m and loads what it holds.
func NewLocalStore(m *gdata.Manager, logger *log.Logger) *LocalStore {
	s := &LocalStore{
		data:   m,
		logger: logger,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		logger.Warn("Failed to load saved scores, starting empty", "err", err)
		s.highScore = 0
		s.entries = nil
	}
	return s
}

func (s *LocalStore) load() error {
	if s.data == nil {
		return nil
	}
	if err := s.loadProp(highScoreProperty, &s.highScore); err != nil {
		return err
	}
	return s.loadProp(leaderboardProperty, &s.entries)
}

func (s *LocalStore) loadProp(prop string, v any) error {
	if !s.data.ObjectPropExists(scoresObject, prop) {
		return nil
	}
	raw, err := s.data.LoadObjectProp(scoresObject, prop)
	if err != nil {
		return fmt.Errorf("load %s: %w", prop, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", prop, err)
	}
	return nil
}

func (s *LocalStore) saveProp(prop string, v any) error {
	if s.data == nil {
		return nil
	}
	raw, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", prop, err)
	}
	if err := s.data.SaveObjectProp(scoresObject, prop, raw); err != nil {
		return fmt.Errorf("save %s: %w", prop, err)
	}
	return nil
}

// HighScore returns the best score recorded on this machine.
func (s *LocalStore) HighScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highScore
}

// SaveHighScore records score if it is a new record. A record that fails to
// persist still counts for this run.
func (s *LocalStore) SaveHighScore(score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if score <= s.highScore {
		return false
	}
	s.highScore = score
	if err := s.saveProp(highScoreProperty, score); err != nil {
		s.logger.Warn("Failed to save high score", "score", score, "err", err)
	}
	return true
}

// Submit adds e to the local leaderboard. The error is only about persistence;
// the entry is on the in-memory board either way.
func (s *LocalStore) Submit(_ context.Context, e Entry) (SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e = e.Normalize(s.now())
	s.entries = Insert(s.entries, e, LocalLeaderboardSize)
	res := SubmitResult{Success: true, Message: "Score saved locally", Entry: &e}

	if err := s.saveProp(leaderboardProperty, s.entries); err != nil {
		return res, fmt.Errorf("local submit: %w", err)
	}
	return res, nil
}

// Leaderboard returns the best local entries.
func (s *LocalStore) Leaderboard(_ context.Context, limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Top(s.entries, limit)
}
