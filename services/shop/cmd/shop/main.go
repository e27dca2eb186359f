package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/app"
	"github.com/Skotchmaster/storefront/services/shop/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	a, err := app.New(initCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("init_error", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	go func() {
		logger.Info("server_starting", "addr", addr)
		if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := a.Close(); err != nil {
		logger.Error("close_error", "error", err)
	}
	logger.Info("server_stopped")
}
