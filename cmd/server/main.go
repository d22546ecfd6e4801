package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/courselab/courselab-back/internal/api"
	"github.com/courselab/courselab-back/internal/config"
	"github.com/courselab/courselab-back/internal/cron"
	"github.com/courselab/courselab-back/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env")
	}

	cfg := config.Load()
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET must be set")
	}

	store, err := db.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := store.Seed(context.Background()); err != nil {
		log.Fatalf("failed to seed database: %v", err)
	}

	r := api.SetupRouter(cfg, store)

	cron.StartJobs(store)

	log.Printf("Server running on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
