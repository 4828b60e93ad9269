// Command flicker tails a set of configured log files and ships new lines
// to their configured destinations (HTTP, syslog, Elasticsearch, or file).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flicker-logs/flicker/internal/config"
	"github.com/flicker-logs/flicker/internal/supervisor"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: flicker [--config PATH | -c PATH]\n\n")
		fmt.Fprintf(os.Stderr, "Tails configured log files and ships new lines to their destinations.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	var configPath string
	flag.StringVar(&configPath, "config", "flicker.yaml", "path to the YAML configuration file")
	flag.StringVar(&configPath, "c", "flicker.yaml", "path to the YAML configuration file (shorthand)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("loading config %s: %v", configPath, err)
		os.Exit(1)
	}

	log.Printf("starting flicker with %d log file(s) from %s", len(cfg.LogFiles), configPath)

	sup := supervisor.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	sup.Run(ctx)
}
