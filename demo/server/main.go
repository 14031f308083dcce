package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	cadastre "github.com/tingold/orb-cadastre"
	"github.com/tingold/orb-cadastre/internal/config"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "cadastre.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.NewLogger(os.Stderr)

	profiles, err := cfg.ProfileSet()
	if err != nil {
		log.Fatalf("Failed to build profiles: %v", err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		log.Fatalf("Failed to build CRS registry: %v", err)
	}

	s := newServer(&cadastre.HandlerOptions{
		Profiles:    profiles,
		Reprojector: registry,
		Logger:      logger,
	}, cadastre.CRS(cfg.CRS.Working), cfg.DefaultLanguage())

	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RequestsPerSec), cfg.Server.Burst)
	handler := withMiddleware(s.routes(), limiter, logger)

	logger.Info("server starting", "server", cfg.Server.String())
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
