package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tomz197/santa-rush/internal/config"
	"github.com/tomz197/santa-rush/internal/loop"
	loopconfig "github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/score"
	"golang.org/x/term"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	logger, closeLog, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tuning, updates, err := config.TuningFromEnv(ctx, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load tuning: %v\n", err)
		os.Exit(1)
	}

	store := score.Open("santa-rush", config.GetEnv(config.EnvAPIURL, ""), logger)
	reporter := score.NewReporter(store, logger, score.ReporterOptions{
		QueueSize: loopconfig.ReportQueueSize,
		Timeout:   loopconfig.ReportTimeout,
	})
	go reporter.Run(ctx)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	err = loop.Run(reader, os.Stdout, loop.Options{
		Username:      config.GetEnv(config.EnvPlayer, loopconfig.DefaultPlayerName),
		Tuning:        tuning,
		Store:         store,
		Reporter:      reporter,
		TuningUpdates: updates,
		Logger:        logger,
	})
	if err != nil {
		_ = term.Restore(fd, oldState)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger logs to SANTA_LOG_FILE, or nowhere: the terminal is the screen.
func newLogger() (*log.Logger, func(), error) {
	path := config.GetEnv(config.EnvLogFile, "")
	if path == "" {
		return config.NewLogger(io.Discard, "game"), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return config.NewLogger(f, "game"), func() { _ = f.Close() }, nil
}
