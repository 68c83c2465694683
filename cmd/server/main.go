// Command server serves the eco-speed advisor over HTTP.
//
// Environment (optionally from a .env file):
//
//	PORT          listen port (default 8080)
//	HISTORY_DSN   SQLite file for run history; empty disables history
//	DEBUG         "true" for development logging
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cxd309/ecospeed/internal/api"
	"github.com/cxd309/ecospeed/internal/log"
	"github.com/cxd309/ecospeed/internal/store"
)

type Config struct {
	Port       string
	HistoryDSN string
	Debug      bool
}

func main() {
	envErr := godotenv.Load()

	cfg := loadConfig()
	if err := log.Init(cfg.Debug); err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Debugw("no .env file found, using system environment")
	}

	var history api.History
	if cfg.HistoryDSN != "" {
		s, err := store.Open(cfg.HistoryDSN)
		if err != nil {
			log.Fatalf("opening run history: %v", err)
		}
		defer s.Close()
		history = s
		log.Infow("run history enabled", "dsn", cfg.HistoryDSN)
	}

	app := api.NewApp(history, log.GetSugaredLogger())

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warnw("server forced to shutdown", "error", err)
	}
}

func loadConfig() Config {
	return Config{
		Port:       getEnv("PORT", "8080"),
		HistoryDSN: getEnv("HISTORY_DSN", ""),
		Debug:      getEnv("DEBUG", "") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
