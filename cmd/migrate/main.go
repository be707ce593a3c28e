package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ms-fyyur/internal/config"
	"ms-fyyur/internal/database"
	"ms-fyyur/internal/database/migrations"
	"ms-fyyur/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	command := flag.String("cmd", "up", "up, down, version or to")
	version := flag.Uint("version", 0, "target version for -cmd=to")
	seed := flag.Bool("seed", false, "load the sample venues, artists, shows and trivia questions after migrating")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(logger.Options{Service: "migrate", Color: cfg.Log.Color})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if cfg.Database.Driver != "postgres" {
		log.Fatal("MIGRATE", "migrations target postgres; sqlite databases use DB_AUTO_SCHEMA")
	}

	ctx := context.Background()
	bunDB, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}

	runner := migrations.NewRunner(bunDB.DB)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Error("MIGRATE", err.Error())
		}
	}()

	switch *command {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "to":
		err = runner.To(*version)
	case "version":
	default:
		log.Fatal("MIGRATE", fmt.Sprintf("unknown command %q", *command))
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}

	current, dirty, err := runner.Version()
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("Schema at version %d (dirty: %t)", current, dirty))

	if *seed {
		if err := database.Seed(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Failed to seed: %v", err))
		}
		log.Info("DATABASE", "✅ Sample data loaded")
	}
}
