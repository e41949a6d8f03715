package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/shelfscan/backend/config"
	"github.com/shelfscan/backend/internal/app"
	httpDelivery "github.com/shelfscan/backend/internal/delivery/http"
	"github.com/shelfscan/backend/internal/infrastructure/credentials"
	"github.com/shelfscan/backend/internal/logging"
	"github.com/shelfscan/backend/internal/metrics"
	"github.com/shelfscan/backend/internal/usecase"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting ShelfScan backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("session_type", cfg.Session.Type),
		zap.Duration("session_ttl", cfg.Session.TTL),
		zap.String("vision_model", cfg.Vision.Model),
	)

	if cfg.Vision.APIKey == "" {
		logger.Warn("no server-side vision API key configured; requests must send " + httpDelivery.CredentialHeader)
	}

	// Initialize infrastructure dependencies
	store, err := app.NewScanStore(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to open session store", zap.Error(err))
	}
	defer store.Close()

	creds := credentials.Chain{credentials.FromRequest{}, credentials.Static(cfg.Vision.APIKey)}
	vision := app.NewVision(cfg, creds, logger)
	m := metrics.New("shelfscan-backend")

	// Initialize usecase layer
	scanService := usecase.NewScanService(vision.Classifier, vision.Extractor, store, m, logger, cfg.Session.TTL)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(scanService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, m, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server listening", zap.String("addr", server.Addr))
	if err := serveHTTPServer(server, shutdownTimeout, logger, nil, nil); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

// serveHTTPServer runs the server until it fails or a shutdown signal arrives.
// listener and signalCh are optional and exist for tests.
func serveHTTPServer(server *http.Server, timeout time.Duration, logger *zap.Logger, listener net.Listener, signalCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		var err error
		if listener != nil {
			err = server.Serve(listener)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	sigCh := signalCh
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigCh = ch
	}

	select {
	case err := <-errCh:
		return err
	case sig, ok := <-sigCh:
		if !ok {
			return <-errCh
		}
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return <-errCh
	}
}
