package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/osinachi-dev/voxgate/internal/app"
	"github.com/osinachi-dev/voxgate/internal/config"
	"github.com/osinachi-dev/voxgate/internal/server"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
)

// Entry point for the voice chat API server.
// Loads config, wires the pipeline, exposes the HTTP surface.
func main() {
	// fetch cfg
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	logger.Infof("Starting %s v%s", cfg.AppName, cfg.Version)

	// wire all components
	application, err := app.NewApp(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}
	application.Start()

	// compose router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	server.InitializeRoutes(router, application.ServerDeps)

	// listen with graceful exit
	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router.Handler(),
	}
	go func() {
		logger.Infof("Listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server exiting %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 5 secs then cancel
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	application.Stop()
	logger.Info("Shutdown system")
}
