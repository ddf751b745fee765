package main

import (
	"context"
	"flag"
	"log"

	"github.com/xbpneus/authgate/internal/app"
	"github.com/xbpneus/authgate/internal/config"
	"github.com/xbpneus/authgate/internal/infrastructure/auth"
	"github.com/xbpneus/authgate/internal/infrastructure/database"
	"github.com/xbpneus/authgate/internal/infrastructure/repositories"
)

// Loads the accounts listed in a seed file into the configured database
func main() {
	file := flag.String("file", "config/seed.yml", "seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed, err := app.LoadSeedFile(*file)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	db, err := database.Open(cfg.DSN, cfg.DBLogLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	res, err := app.Seed(context.Background(),
		repositories.NewPrincipalRepository(db),
		auth.NewPasswordService(cfg.BcryptCost),
		seed,
	)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seed: %d principals created, %d already present", res.Created, res.Skipped)
}
