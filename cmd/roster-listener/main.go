package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"famdir/internal/config"
	"famdir/internal/listener"
	"famdir/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := listener.NewService(db, cfg)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("roster listener provider=%s label=%s every %ds\n", cfg.ListenerProvider, cfg.ListenerLabel, cfg.ListenerIntervalSec)
	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
