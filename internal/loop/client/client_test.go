package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/loop/server"
	"github.com/tomz197/santa-rush/internal/object"
	"github.com/tomz197/santa-rush/internal/score"
)

var discard = log.New(io.Discard)

func fixedSize(w, h int) func() (int, int, error) {
	return func() (int, int, error) { return w, h, nil }
}

type harness struct {
	c   *Client
	in  *io.PipeWriter
	out *bytes.Buffer
}

func newHarness(t *testing.T, gs server.GameServer, opts ClientOptions) *harness {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = fixedSize(100, 40)
	}
	if opts.Tuning.Width == 0 {
		opts.Tuning = config.DefaultTuning()
		opts.Tuning.Seed = 7
	}
	opts.Logger = discard

	out := &bytes.Buffer{}
	c, err := NewClient(gs, bufio.NewReader(pr), out, opts)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &harness{c: c, in: pw, out: out}
}

func (h *harness) press(t *testing.T, keys string) {
	t.Helper()
	if _, err := h.in.Write([]byte(keys)); err != nil {
		t.Fatalf("write input: %v", err)
	}
}

// stepUntil runs frames until cond holds.
func (h *harness) stepUntil(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s (state %v)", what, h.c.state.GameState)
		}
		if err := h.c.step(); err != nil {
			t.Fatalf("step: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) steps(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := h.c.step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.press(t, " ")
	h.stepUntil(t, "round start", func() bool { return h.c.state.GameState == GameStatePlaying })
}

func TestClampTermSize(t *testing.T) {
	tests := []struct {
		w, h                   int
		rw, rh, offCol, offRow int
	}{
		{80, 24, 80, 24, 0, 0},
		{160, 50, 160, 50, 0, 0},
		{200, 60, 160, 50, 20, 5},
		{161, 30, 160, 30, 0, 0},
	}
	for _, tt := range tests {
		rw, rh, oc, or := clampTermSize(tt.w, tt.h)
		if rw != tt.rw || rh != tt.rh || oc != tt.offCol || or != tt.offRow {
			t.Errorf("clampTermSize(%d, %d): got %d %d %d %d, want %d %d %d %d",
				tt.w, tt.h, rw, rh, oc, or, tt.rw, tt.rh, tt.offCol, tt.offRow)
		}
	}
}

func TestNewClientRejectsInvalidTuning(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.Height = 100
	_, err := NewClient(nil, bufio.NewReader(strings.NewReader("")), io.Discard, ClientOptions{Tuning: tuning, Logger: discard})
	if err == nil {
		t.Fatal("NewClient: want error for a canvas below the minimum")
	}
}

func TestStartScreenWaitsForBoost(t *testing.T) {
	h := newHarness(t, nil, ClientOptions{})

	h.steps(t, 30)
	if h.c.state.GameState != GameStateStart {
		t.Fatalf("state: got %v, want start", h.c.state.GameState)
	}
	if h.c.session.Frame != 0 {
		t.Error("session stepped on the title screen")
	}
	if !strings.Contains(h.out.String(), "Press SPACE to Start") && !strings.Contains(h.out.String(), "Controls") {
		t.Error("title screen not drawn")
	}

	h.start(t)
}

func TestRoundOverRecordsAndRestarts(t *testing.T) {
	store := score.NewLocalStore(nil, discard)
	reporter := score.NewReporter(store, discard, score.ReporterOptions{QueueSize: 4})
	h := newHarness(t, nil, ClientOptions{Store: store, Reporter: reporter, Username: "dasher"})
	h.start(t)

	// Nobody flies, so the sleigh eventually hits the ground or the ceiling
	h.stepUntil(t, "round over", func() bool { return h.c.state.GameState == GameStateOver })
	res := h.c.session.Result()
	if store.HighScore() != res.Score {
		t.Errorf("high score: got %d, want %d", store.HighScore(), res.Score)
	}
	if !h.c.state.NewRecord && res.Score > 0 {
		t.Error("first scoring round must be a record")
	}
	if len(h.c.particles) == 0 {
		t.Error("no particles for the crash")
	}

	// The reporter got the round
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reporter.Run(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for len(reporter.Leaderboard()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("round never reported")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := reporter.Leaderboard()[0]; got.PlayerName != "dasher" || got.Score != res.Score {
		t.Errorf("reported entry: got %+v", got)
	}

	// Auto-restart after the delay
	h.steps(t, config.RestartDelayFrames-1)
	if h.c.state.GameState != GameStateOver {
		t.Fatal("restarted before the delay")
	}
	h.steps(t, 1)
	if h.c.state.GameState != GameStatePlaying || h.c.session.Score != 0 {
		t.Errorf("after delay: state %v score %d", h.c.state.GameState, h.c.session.Score)
	}
}

func TestBoostRestartAfterLockout(t *testing.T) {
	h := newHarness(t, nil, ClientOptions{})
	h.start(t)
	h.stepUntil(t, "round over", func() bool { return h.c.state.GameState == GameStateOver })

	// Let any boost still held from the start wear off, then wait out the lockout
	time.Sleep(400 * time.Millisecond)
	h.steps(t, config.RestartLockFrames)

	h.press(t, " ")
	h.stepUntil(t, "restart", func() bool { return h.c.state.GameState == GameStatePlaying })
	if h.c.state.overFrames >= config.RestartDelayFrames {
		t.Error("restart came from the delay, not the boost press")
	}
}

func TestQuitAndClosedInput(t *testing.T) {
	t.Run("quit key", func(t *testing.T) {
		h := newHarness(t, nil, ClientOptions{})
		h.press(t, "q")
		h.stepUntil(t, "quit", func() bool { return !h.c.state.Running })
	})

	t.Run("input closed", func(t *testing.T) {
		h := newHarness(t, nil, ClientOptions{})
		h.in.Close()
		h.stepUntil(t, "stop", func() bool { return !h.c.state.Running })
	})
}

func TestTuningAppliesNextRound(t *testing.T) {
	updates := make(chan config.Tuning, 1)
	h := newHarness(t, nil, ClientOptions{TuningUpdates: updates})
	h.start(t)

	wide := config.DefaultTuning()
	wide.Width = 1000
	updates <- wide
	h.steps(t, 1)
	if h.c.session.Screen().Width != config.DefaultWidth {
		t.Fatal("tuning changed mid-round")
	}

	h.stepUntil(t, "round over", func() bool { return h.c.state.GameState == GameStateOver })
	h.steps(t, config.RestartDelayFrames)
	if got := h.c.session.Screen().Width; got != 1000 {
		t.Errorf("width after restart: got %v, want 1000", got)
	}
}

func TestHUDShowsRoundState(t *testing.T) {
	h := newHarness(t, nil, ClientOptions{})
	h.start(t)
	h.out.Reset()
	h.steps(t, 1)

	out := h.out.String()
	for _, want := range []string{"Score: 0", "Reindeer: 0", "Level: 1", "Best: "} {
		if !strings.Contains(out, want) {
			t.Errorf("HUD missing %q", want)
		}
	}
}

func TestLobbyClient(t *testing.T) {
	lobby := server.NewLobby(discard)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go lobby.Run(ctx)

	h := newHarness(t, lobby, ClientOptions{Username: "rudolph"})
	if h.c.handle == nil || h.c.username != "rudolph" {
		t.Fatalf("not registered: %+v", h.c.handle)
	}
	h.start(t)
	h.stepUntil(t, "round over", func() bool { return h.c.state.GameState == GameStateOver })

	final := h.c.session.Result().Score
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := lobby.GetSnapshot()
		if len(snap.TopScores) == 1 {
			if got := snap.TopScores[0]; got.Username != "rudolph" || got.Score != final {
				t.Errorf("lobby entry: got %+v", got)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("result never reached the lobby")
		}
		time.Sleep(5 * time.Millisecond)
	}

	go lobby.Shutdown(time.Second)
	h.stepUntil(t, "shutdown screen", func() bool { return h.c.state.GameState == GameStateShutdown })
	h.out.Reset()
	h.steps(t, 1)
	if !strings.Contains(h.out.String(), "SERVER SHUTTING DOWN") {
		t.Error("shutdown screen not drawn")
	}
}

func TestRestartClearsEffects(t *testing.T) {
	h := newHarness(t, nil, ClientOptions{})
	h.start(t)
	h.stepUntil(t, "round over", func() bool { return h.c.state.GameState == GameStateOver })

	h.c.popups = append(h.c.popups, object.NewPopup(100, 100, "+5", popupFrames))
	if len(h.c.particles) == 0 {
		t.Fatal("crash left no particles")
	}

	h.steps(t, config.RestartLockFrames)
	h.c.state.Input.Restart = true
	h.c.updateOverState()
	if h.c.state.GameState != GameStatePlaying {
		t.Fatalf("state: got %v, want playing", h.c.state.GameState)
	}
	if len(h.c.particles) != 0 || len(h.c.popups) != 0 {
		t.Errorf("carried over %d particles and %d popups", len(h.c.particles), len(h.c.popups))
	}
}
