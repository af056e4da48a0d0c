package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/app"
	"github.com/shrimpsizemoose/markbook/internal/handlers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Printf("No .env file loaded: %v", err)
	}

	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	mux := http.NewServeMux()
	handlers.NewMarkbookHandler(service).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting markbook server on %s", service.Config.Server.Port)
	logger.Debug.Printf("Rounding precision %d, depth encoding %s, baselines in %s",
		service.Config.Markbook.RoundingPrecision,
		service.Config.Markbook.DepthEncoding,
		service.Config.Baseline.Backend,
	)
	if service.Store == nil {
		logger.Info.Println("No database configured, stored markbooks are unavailable")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, mux); err != nil {
		logger.Error.Fatalf("Markbook server failed: %v", err)
	}
}
