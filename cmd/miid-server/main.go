// Package main is the entry point for the miid API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/miid/pkg/api"
	"github.com/james-see/miid/pkg/config"
	"github.com/james-see/miid/pkg/logger"
	"github.com/james-see/miid/pkg/pianoroll"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Config file")
	port := flag.String("port", "", "Server port (overrides config and "+config.EnvPort+")")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv(os.Getenv)
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(cfg.LogLevel, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting miid API server on port %s...\n", cfg.Server.Port)
	fmt.Printf("Swagger docs available at http://localhost:%s/swagger/index.html\n", cfg.Server.Port)

	opts := api.Options{
		Decoder: cfg.DecoderOptions(),
		PianoRoll: pianoroll.Options{
			BeatWidth: cfg.PianoRoll.BeatWidth,
			KeyHeight: cfg.PianoRoll.KeyHeight,
		},
	}
	if err := api.StartServer(cfg.Server.Port, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
