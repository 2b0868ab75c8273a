package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appconfig "github.com/wolfman30/hospital-booking/internal/config"
	"github.com/wolfman30/hospital-booking/internal/stubapi"
	"github.com/wolfman30/hospital-booking/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital stub API",
		"env", cfg.Env,
		"port", cfg.StubPort,
		"require_auth", cfg.StubRequireAuth,
	)

	stubCfg := stubapi.Config{
		Logger:         logger,
		TokenSecret:    []byte(cfg.StubTokenSecret),
		TokenTTL:       cfg.StubTokenTTL,
		RequireAuth:    cfg.StubRequireAuth,
		Credentials:    map[string]string{strings.ToLower(cfg.StubLoginEmail): cfg.StubLoginPass},
		AllowedOrigins: cfg.CORSOrigins,
	}
	if cfg.MetricsEnabled {
		stubCfg.MetricsHandler = promhttp.Handler()
	}
	stub := stubapi.New(stubCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.StubPort,
		Handler:      stub.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
