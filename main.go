package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"forecastlog/pkg/api"
	"forecastlog/pkg/config"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configPath := flag.String("config", "", "Path to the TOML config file (default "+config.DefaultPath+")")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Log.ApplyLogging(*verbose); err != nil {
		log.Fatalf("Invalid logging config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := api.NewStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}
	router := api.GetRouter(api.NewServer(st, cfg.View.RecentRows))

	server := &http.Server{
		Addr:              cfg.Server.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	go startServer(server)

	<-ctx.Done()
	log.Info("Signalled, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Shutdown: %v", err)
	}
}

func startServer(server *http.Server) {
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("ListenAndServe: %v", err)
	}
}
