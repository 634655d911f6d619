package main

import (
	"flag"
	"log"
	"os"

	"FeatMerge/internal/di"
	"FeatMerge/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run the batch (returns early on SIGINT/SIGTERM)
	err = app.Run()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}
