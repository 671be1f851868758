package score

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Reporter submits finished rounds from a background goroutine so the frame
// loop never waits on storage or the network. After every submission it
// refreshes a cached leaderboard that renderers can read at any time.
type Reporter struct {
	store   Store
	logger  *log.Logger
	queue   chan Entry
	timeout time.Duration
	limit   int
	board   atomic.Pointer[[]Entry]
}

// ReporterOptions tunes a Reporter. Zero values pick defaults.
type ReporterOptions struct {
	QueueSize int           // Pending submissions before Report drops
	Timeout   time.Duration // Per request
	Limit     int           // Leaderboard entries to cache
}

// checker is implemented by stores with a reachability probe.
type checker interface {
	Check(ctx context.Context) bool
}

// NewReporter creates a reporter over store. Call Run to start it.
func NewReporter(store Store, logger *log.Logger, opts ReporterOptions) *Reporter {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 16
	}
	if opts.Timeout <= 0 {
		opts.Timeout = requestTimeout
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	r := &Reporter{
		store:   store,
		logger:  logger,
		queue:   make(chan Entry, opts.QueueSize),
		timeout: opts.Timeout,
		limit:   opts.Limit,
	}
	empty := []Entry{}
	r.board.Store(&empty)
	return r
}

// Report queues e for submission. Returns false if the queue is full and the
// entry was dropped.
func (r *Reporter) Report(e Entry) bool {
	select {
	case r.queue <- e:
		return true
	default:
		r.logger.Warn("Score queue full, dropping score", "player", e.PlayerName, "score", e.Score)
		return false
	}
}

// Leaderboard returns the most recently fetched leaderboard.
func (r *Reporter) Leaderboard() []Entry {
	return *r.board.Load()
}

// Run probes the store, loads the leaderboard and then submits queued
// entries until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	if c, ok := r.store.(checker); ok {
		r.withTimeout(ctx, func(ctx context.Context) { c.Check(ctx) })
	}
	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-r.queue:
			r.submit(ctx, e)
			r.refresh(ctx)
		}
	}
}

func (r *Reporter) submit(ctx context.Context, e Entry) {
	r.withTimeout(ctx, func(ctx context.Context) {
		res, err := r.store.Submit(ctx, e)
		if err != nil {
			r.logger.Warn("Failed to save score", "player", e.PlayerName, "score", e.Score, "err", err)
			return
		}
		r.logger.Info("Score submitted", "player", e.PlayerName, "score", e.Score, "followers", e.Followers, "remote", res.Remote)
	})
}

func (r *Reporter) refresh(ctx context.Context) {
	r.withTimeout(ctx, func(ctx context.Context) {
		board := r.store.Leaderboard(ctx, r.limit)
		r.board.Store(&board)
	})
}

func (r *Reporter) withTimeout(ctx context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	fn(ctx)
}
