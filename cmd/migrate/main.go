// Command migrate applies the database schema and exits. Deploys run it
// before starting the API so migrations never race across replicas.
package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/snapdish/snapdish-api/config"
	"github.com/snapdish/snapdish-api/internal/database"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}

	logrus.Info("migrations applied")
}
