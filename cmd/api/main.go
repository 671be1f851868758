package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomz197/santa-rush/internal/config"
	"github.com/tomz197/santa-rush/internal/score/api"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8080"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}
	logger := config.NewLogger(os.Stderr, "api")

	addr := net.JoinHostPort(config.GetEnv(config.EnvAPIHost, defaultHost), config.GetEnv(config.EnvAPIPort, defaultPort))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting leaderboard API", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down API...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", "err", err)
	}
}
