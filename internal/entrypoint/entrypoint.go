package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/config"
	http_controllers "github.com/mrlokans/coursecatalog/internal/http"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, log *logger.Logger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down server", "signal", sig.String(), "timeout", timeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

// Run wires the application from cfg and serves it.
func Run(cfg *config.Config, version string) error {
	log, err := NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting course catalog", "version", version)

	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(context.Background()); err != nil {
		return err
	}

	router := http_controllers.NewRouter(app.RouterConfig(version))

	return Serve(router, cfg, log, app.Stop)
}
