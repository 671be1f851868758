package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tomz197/santa-rush/internal/config"
	"github.com/tomz197/santa-rush/internal/desktop"
	loopconfig "github.com/tomz197/santa-rush/internal/loop/config"
	"github.com/tomz197/santa-rush/internal/score"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger(os.Stderr, "desktop")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tuning, updates, err := config.TuningFromEnv(ctx, logger)
	if err != nil {
		logger.Fatal("Failed to load tuning", "err", err)
	}

	store := score.Open("santa-rush", config.GetEnv(config.EnvAPIURL, ""), logger)
	reporter := score.NewReporter(store, logger, score.ReporterOptions{
		QueueSize: loopconfig.ReportQueueSize,
		Timeout:   loopconfig.ReportTimeout,
	})
	go reporter.Run(ctx)

	game, err := desktop.New(desktop.Options{
		Username:      config.GetEnv(config.EnvPlayer, loopconfig.DefaultPlayerName),
		Tuning:        tuning,
		Store:         store,
		Reporter:      reporter,
		TuningUpdates: updates,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("Failed to create game", "err", err)
	}

	ebiten.SetWindowSize(int(tuning.Width), int(tuning.Height))
	ebiten.SetWindowTitle("Santa Rush")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !desktop.IsQuit(err) {
		logger.Fatal("Game error", "err", err)
	}
}
