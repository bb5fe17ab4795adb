package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"tally/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, logger, err := bootstrap(*configPath)
	if err != nil {
		log.Fatalf("tallyd: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("tallyd shutting down")
}
