package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/santa-rush/internal/config"
	"github.com/tomz197/santa-rush/internal/draw"
	"github.com/tomz197/santa-rush/internal/loop/client"
	loopconfig "github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/loop/server"
	"github.com/tomz197/santa-rush/internal/score"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
)

// app holds what every SSH session shares. Each session still plays its
// own round; the lobby only collects results.
type app struct {
	logger   *log.Logger
	lobby    *server.Lobby
	store    score.Store
	reporter *score.Reporter

	mu     sync.RWMutex
	tuning loopconfig.Tuning // Handed to new sessions
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger(os.Stderr, "ssh")

	host := config.GetEnv(config.EnvSSHHost, defaultHost)
	port := config.GetEnv(config.EnvSSHPort, defaultPort)
	hostKeyPath := config.GetEnv(config.EnvSSHHostKey, defaultHostKeyPath)
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sessions share one tuning; reloads are picked up by new sessions only
	tuning, updates, err := config.TuningFromEnv(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to load tuning", "err", err)
	}

	a := &app{
		logger: logger,
		lobby:  server.NewLobby(logger),
		tuning: tuning,
	}
	a.store = score.Open("santa-rush-ssh", config.GetEnv(config.EnvAPIURL, ""), logger)
	a.reporter = score.NewReporter(a.store, logger, score.ReporterOptions{
		QueueSize: loopconfig.ReportQueueSize,
		Timeout:   loopconfig.ReportTimeout,
	})
	go a.lobby.Run(ctx)
	go a.reporter.Run(ctx)
	if updates != nil {
		go a.followTuning(updates)
	}
	logger.Info("Lobby started")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			a.gameMiddleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("Failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("Server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	// Notify players and wait for them to disconnect
	a.lobby.Shutdown(15 * time.Second)
	cancel()
	logger.Info("Lobby stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error", "err", err)
	}
}

// followTuning swaps the tuning handed to new sessions.
func (a *app) followTuning(updates <-chan loopconfig.Tuning) {
	for t := range updates {
		a.setTuning(t)
	}
}

func (a *app) setTuning(t loopconfig.Tuning) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tuning = t
}

func (a *app) currentTuning() loopconfig.Tuning {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tuning
}

// gameMiddleware handles SSH sessions and runs the game client.
func (a *app) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		a.logger.Info("New game session", "user", sess.User(), "term", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		// Each session gets a fresh seed so players see different courses
		tuning := a.currentTuning()
		tuning.Seed = 0

		reader := bufio.NewReader(sess)
		c, err := client.NewClient(a.lobby, reader, sess, client.ClientOptions{
			TermSizeFunc: sizeTracker.getSize,
			Username:     sess.User(),
			Tuning:       tuning,
			Store:        a.store,
			Reporter:     a.reporter,
			Logger:       a.logger.With("user", sess.User()),
		})
		if err != nil {
			a.logger.Error("Failed to start game", "user", sess.User(), "err", err)
			fmt.Fprintln(sess, "Error: the game could not start.")
			return
		}
		if err := c.Run(); err != nil {
			a.logger.Error("Game error", "user", sess.User(), "err", err)
		}

		a.logger.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
