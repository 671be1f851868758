package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const requestTimeout = 5 * time.Second

// RemoteStore talks to the leaderboard backend while it is reachable and
// falls back to a LocalStore otherwise. The high score is always local.
type RemoteStore struct {
	baseURL   string // e.g. http://localhost:8080/api
	client    *http.Client
	local     *LocalStore
	logger    *log.Logger
	available atomic.Bool
}

var _ Store = (*RemoteStore)(nil)

// NewRemoteStore creates a store for the backend at baseURL. It starts out
// unavailable; call Check to probe the backend.
func NewRemoteStore(baseURL string, local *LocalStore, logger *log.Logger) *RemoteStore {
	return &RemoteStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		local:   local,
		logger:  logger,
	}
}

// Available reports the result of the last health check.
func (r *RemoteStore) Available() bool {
	return r.available.Load()
}

// Check probes the health endpoint and records whether the backend is up.
func (r *RemoteStore) Check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		r.available.Store(false)
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Info("Leaderboard backend not available, using local scores", "url", r.baseURL, "err", err)
		r.available.Store(false)
		return false
	}
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	r.available.Store(ok)
	r.logger.Debug("Leaderboard backend checked", "url", r.baseURL, "status", resp.StatusCode)
	return ok
}

// HighScore implements Store.
func (r *RemoteStore) HighScore() int {
	return r.local.HighScore()
}

// SaveHighScore implements Store.
func (r *RemoteStore) SaveHighScore(score int) bool {
	return r.local.SaveHighScore(score)
}

// Submit posts e to the backend, or to the local store if the backend is
// down or the request fails.
func (r *RemoteStore) Submit(ctx context.Context, e Entry) (SubmitResult, error) {
	if !r.available.Load() {
		return r.local.Submit(ctx, e)
	}
	res, err := r.submitRemote(ctx, e.Normalize(time.Now()))
	if err != nil {
		r.logger.Warn("Failed to submit score, saving locally", "err", err)
		return r.local.Submit(ctx, e)
	}
	res.Remote = true
	return res, nil
}

func (r *RemoteStore) submitRemote(ctx context.Context, e Entry) (SubmitResult, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode score: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/scores", bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var res SubmitResult
	if err := r.do(req, &res); err != nil {
		return SubmitResult{}, err
	}
	return res, nil
}

// Leaderboard fetches the backend leaderboard, or the local one if the
// backend is down or the request fails.
func (r *RemoteStore) Leaderboard(ctx context.Context, limit int) []Entry {
	if !r.available.Load() {
		return r.local.Leaderboard(ctx, limit)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	u := r.baseURL + "/leaderboard?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return r.local.Leaderboard(ctx, limit)
	}

	var board struct {
		Scores []Entry `json:"scores"`
		Total  int     `json:"total"`
	}
	if err := r.do(req, &board); err != nil {
		r.logger.Warn("Failed to fetch leaderboard, using local scores", "err", err)
		return r.local.Leaderboard(ctx, limit)
	}
	if len(board.Scores) > limit {
		board.Scores = board.Scores[:limit]
	}
	return board.Scores
}

// do sends req and decodes a JSON response into v. Non-2xx statuses are errors.
func (r *RemoteStore) do(req *http.Request, v any) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %s", req.Method, req.URL.Path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// Open returns the local store of appName, fronted by the backend at apiURL
// when one is given. The backend is probed later by Reporter.Run.
func Open(appName, apiURL string, logger *log.Logger) Store {
	local := OpenLocalStore(appName, logger)
	if apiURL == "" {
		return local
	}
	return NewRemoteStore(apiURL, local, logger)
}
