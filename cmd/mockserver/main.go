// The mockserver command runs the programmable mock HTTP server the e2e
// suite points third-party integrations at. It serves until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zhammer/scribly/internal/config"
	"github.com/zhammer/scribly/internal/logging"
	"github.com/zhammer/scribly/internal/mockhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigs
		cancel()
	}()

	srv := &http.Server{
		Addr:    cfg.MockServerBindAddr,
		Handler: mockhttp.NewServer(logger),
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	logger.Info(ctx, "mock server listening", "addr", cfg.MockServerBindAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error(ctx, err.Error())
		os.Exit(1)
	}
}
