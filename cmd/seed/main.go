package main

import (
	"os"

	"github.com/oggyb/groupmatch/internal/config"
	"github.com/oggyb/groupmatch/internal/db"
	"github.com/oggyb/groupmatch/internal/logger"
)

// Seeds demo groups, users, likes and matches into the configured database.
// Existing matching data is wiped first.
func main() {
	cfg := config.New()
	logger.InitFromConfig(cfg)
	log := logger.With("cmd", "seed")

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "driver", cfg.DB.Driver, "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
