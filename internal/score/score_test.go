package score_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/quasilyte/gdata/v2"

	"github.com/tomz197/santa-rush/internal/score"
	"github.com/tomz197/santa-rush/internal/score/api"
)

var discard = log.New(io.Discard)

func TestInsertKeepsOrder(t *testing.T) {
	var board []score.Entry
	for i, s := range []int{5, 9, 1, 9, 7} {
		board = score.Insert(board, score.Entry{ID: i, Score: s}, 4)
	}

	want := []struct{ id, score int }{{1, 9}, {3, 9}, {4, 7}, {0, 5}}
	if len(board) != len(want) {
		t.Fatalf("len: got %d, want %d", len(board), len(want))
	}
	for i, w := range want {
		if board[i].ID != w.id || board[i].Score != w.score {
			t.Errorf("rank %d: got id %d score %d, want id %d score %d", i, board[i].ID, board[i].Score, w.id, w.score)
		}
	}
}

func TestTop(t *testing.T) {
	board := make([]score.Entry, 20)
	if got := len(score.Top(board, 0)); got != score.DefaultLimit {
		t.Errorf("Top(0): got %d, want %d", got, score.DefaultLimit)
	}
	if got := len(score.Top(board, 50)); got != 20 {
		t.Errorf("Top(50): got %d, want 20", got)
	}

	top := score.Top(board, 3)
	top[0].Score = 99
	if board[0].Score == 99 {
		t.Error("Top must return a copy")
	}
}

func TestLocalStoreHighScore(t *testing.T) {
	s := score.NewLocalStore(nil, discard)

	steps := []struct {
		score   int
		wantNew bool
		want    int
	}{
		{10, true, 10},
		{10, false, 10},
		{4, false, 10},
		{11, true, 11},
	}
	for _, st := range steps {
		if got := s.SaveHighScore(st.score); got != st.wantNew {
			t.Errorf("SaveHighScore(%d): got %v, want %v", st.score, got, st.wantNew)
		}
		if s.HighScore() != st.want {
			t.Errorf("HighScore after %d: got %d, want %d", st.score, s.HighScore(), st.want)
		}
	}
}

func TestLocalStoreLeaderboard(t *testing.T) {
	s := score.NewLocalStore(nil, discard)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		res, err := s.Submit(ctx, score.Entry{Score: i, Followers: i % 3})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if !res.Success || res.Remote || res.Entry.PlayerName != score.AnonymousName {
			t.Fatalf("Submit result: %+v", res)
		}
	}

	all := s.Leaderboard(ctx, 100)
	if len(all) != score.LocalLeaderboardSize {
		t.Fatalf("kept %d entries, want %d", len(all), score.LocalLeaderboardSize)
	}
	if all[0].Score != 59 || all[len(all)-1].Score != 10 {
		t.Errorf("range: got %d..%d, want 59..10", all[0].Score, all[len(all)-1].Score)
	}
	if got := s.Leaderboard(ctx, 3); len(got) != 3 || got[0].Score != 59 {
		t.Errorf("Leaderboard(3): got %+v", got)
	}
}

func openTestManager(t *testing.T) *gdata.Manager {
	t.Helper()
	appName := fmt.Sprintf("santa_rush_test_%d", time.Now().UnixNano())
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})
	return m
}

func TestLocalStorePersists(t *testing.T) {
	m := openTestManager(t)
	ctx := context.Background()

	s := score.NewLocalStore(m, discard)
	s.SaveHighScore(42)
	if _, err := s.Submit(ctx, score.Entry{PlayerName: "rudolph", Score: 42, Followers: 6}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	reopened := score.NewLocalStore(m, discard)
	if reopened.HighScore() != 42 {
		t.Errorf("HighScore after reopen: got %d, want 42", reopened.HighScore())
	}
	board := reopened.Leaderboard(ctx, 10)
	if len(board) != 1 || board[0].PlayerName != "rudolph" || board[0].Followers != 6 {
		t.Errorf("leaderboard after reopen: got %+v", board)
	}
}

func TestRemoteStoreUsesBackend(t *testing.T) {
	backend := api.NewServer(discard)
	ts := httptest.NewServer(backend.Handler())
	defer ts.Close()

	local := score.NewLocalStore(nil, discard)
	s := score.NewRemoteStore(ts.URL+"/api/", local, discard)
	ctx := context.Background()

	if !s.Check(ctx) || !s.Available() {
		t.Fatal("Check: backend should be available")
	}

	res, err := s.Submit(ctx, score.Entry{PlayerName: "dasher", Score: 8, Followers: 2})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Remote || res.Entry == nil || res.Entry.ID != 1 {
		t.Errorf("Submit result: %+v", res)
	}
	if len(local.Leaderboard(ctx, 10)) != 0 {
		t.Error("remote submit also went to the local store")
	}

	board := s.Leaderboard(ctx, 5)
	if len(board) != 1 || board[0].PlayerName != "dasher" {
		t.Errorf("Leaderboard: got %+v", board)
	}

	// High score never leaves the machine
	if !s.SaveHighScore(8) || local.HighScore() != 8 {
		t.Error("high score not kept locally")
	}
}

func TestRemoteStoreFallsBack(t *testing.T) {
	ctx := context.Background()

	t.Run("never checked", func(t *testing.T) {
		local := score.NewLocalStore(nil, discard)
		s := score.NewRemoteStore("http://127.0.0.1:1/api", local, discard)

		res, err := s.Submit(ctx, score.Entry{Score: 3})
		if err != nil || res.Remote {
			t.Fatalf("Submit: got %+v, %v", res, err)
		}
		if len(s.Leaderboard(ctx, 10)) != 1 {
			t.Error("local leaderboard not used")
		}
	})

	t.Run("backend unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		ts.Close()

		s := score.NewRemoteStore(ts.URL, score.NewLocalStore(nil, discard), discard)
		if s.Check(ctx) {
			t.Error("Check: closed server reported available")
		}
	})

	t.Run("backend failing", func(t *testing.T) {
		var healthy atomic.Bool
		healthy.Store(true)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/health" && healthy.Load() {
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer ts.Close()

		local := score.NewLocalStore(nil, discard)
		s := score.NewRemoteStore(ts.URL+"/api", local, discard)
		if !s.Check(ctx) {
			t.Fatal("Check: want available")
		}

		res, err := s.Submit(ctx, score.Entry{PlayerName: "comet", Score: 5})
		if err != nil || res.Remote {
			t.Fatalf("Submit: got %+v, %v", res, err)
		}
		board := s.Leaderboard(ctx, 10)
		if len(board) != 1 || board[0].PlayerName != "comet" {
			t.Errorf("Leaderboard fallback: got %+v", board)
		}

		healthy.Store(false)
		if s.Check(ctx) || s.Available() {
			t.Error("Check: 500 must mark the backend unavailable")
		}
	})
}

func TestReporter(t *testing.T) {
	store := score.NewLocalStore(nil, discard)
	r := score.NewReporter(store, discard, score.ReporterOptions{QueueSize: 2, Limit: 5})

	if len(r.Leaderboard()) != 0 {
		t.Fatal("fresh reporter has a leaderboard")
	}

	if !r.Report(score.Entry{PlayerName: "vixen", Score: 21}) {
		t.Fatal("Report: queue unexpectedly full")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(r.Leaderboard()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("leaderboard never refreshed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := r.Leaderboard()[0]; got.PlayerName != "vixen" || got.Score != 21 {
		t.Errorf("leaderboard: got %+v", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestReporterDropsWhenFull(t *testing.T) {
	r := score.NewReporter(score.NewLocalStore(nil, discard), discard, score.ReporterOptions{QueueSize: 1})

	if !r.Report(score.Entry{Score: 1}) {
		t.Fatal("first Report: want queued")
	}
	if r.Report(score.Entry{Score: 2}) {
		t.Error("second Report: want dropped while nothing drains the queue")
	}
}
