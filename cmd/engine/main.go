// Command engine boots the accounts engine: load snapshot, start the wire
// front-end, wait for a shutdown signal, save snapshot, exit.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ledger-engine/internal/config"
	"ledger-engine/internal/lifecycle"
)

func main() {
	configPath := flag.String("config", os.Getenv("ENGINE_CONFIG"), "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	orchestrator, err := lifecycle.Boot(cfg)
	if err != nil {
		log.Fatalf("failed to boot engine: %v", err)
	}

	if err := orchestrator.Run(context.Background()); err != nil {
		log.Fatalf("engine exited with error: %v", err)
	}

	os.Exit(0)
}
