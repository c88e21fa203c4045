package main

import (
	"flag"
	"fmt"
	"os"

	"pdnsweb/internal/config"
	"pdnsweb/internal/logging"
	"pdnsweb/internal/server"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log)
	log.Info().Str("version", version).Msg("pdnsweb starting")
	log.Info().Str("pdns", cfg.PDNS.URL).Bool("recursor", cfg.Recursor.Enabled).Msg("upstream configuration")

	if err := server.Start(cfg, version, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
