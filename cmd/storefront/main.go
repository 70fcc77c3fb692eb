package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agamariel/storefront/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	// Отменяется по SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	workersDone := app.StartWorkers(ctx)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Serve()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Printf("Server error: %v", err)
			exitCode = 1
		}
		stop()
	}

	// HTTP, затем недоставленные уведомления, брокер, трейсы и пул.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
		exitCode = 1
	}
	<-workersDone

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
