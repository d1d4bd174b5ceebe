package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"optionanalyzer/advisor"
	"optionanalyzer/catalog"
	"optionanalyzer/chain"
	"optionanalyzer/config"
	"optionanalyzer/controllers"
	"optionanalyzer/session"
	"optionanalyzer/utility"
)

func handler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Option analyzer is up. Start at /screen/select.")
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "err", err)
		os.Exit(1)
	}

	var redisClient *config.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = config.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, continuing without shared cache", "err", err)
			redisClient = nil
		}
	}

	screens := &controllers.Screens{
		Config:  cfg,
		Redis:   redisClient,
		Catalog: catalog.NewCache(catalog.NewLoader(cfg.CatalogURL), catalog.DefaultTTL, redisClient),
		Chain:   chain.NewClient(),
		LTP:     utility.NewLTPClient(),
		Advisor: advisor.NewClient(cfg.GroqAPIKey),
		Session: session.New(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", handler)
	registerRoutes(mux, screens)

	slog.Info("server listening", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
