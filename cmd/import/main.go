package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pennywise-app/pennywise-backend/internal/cli"
	"github.com/pennywise-app/pennywise-backend/internal/infrastructure/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Configuration file path")
	flags := cli.ParseImportFlags()

	cfg := config.LoadOrEnvWithPath(*configPath)

	if err := cli.RunImport(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
