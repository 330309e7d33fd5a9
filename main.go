package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"faktur/cmd"
	"faktur/internal/config"
	"faktur/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands report configuration errors themselves; the logger still
	// needs to come up.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting faktur")

	cmd.Execute()

	log.Debug().Msg("faktur shutdown")
	os.Exit(0)
}
