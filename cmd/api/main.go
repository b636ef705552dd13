package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnmradar/collector/internal/api"
	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/logging"
	"github.com/gnmradar/collector/internal/store"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gnmradar-api", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to the main config file")
	hostsPath := fs.String("hosts", "/etc/gnmradar/hosts.json", "Path to the host catalog")
	servicesPath := fs.String("services", "/etc/gnmradar/services.json", "Path to the service catalog")
	addr := fs.String("addr", "127.0.0.1:8000", "Address to serve the read API on")
	requestsPerMin := fs.Float64("requests-per-min", 60, "Per-IP request budget per minute")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := config.Load(config.ResolveConfigPath(*configPath), *hostsPath, *servicesPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New("api", "")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	reader, err := store.OpenReader(ctx, snap.Main.DB)
	if err != nil {
		return fmt.Errorf("open datastore: %w", err)
	}
	defer reader.Close()

	srv := api.New(api.Config{
		Addr:           *addr,
		RequestsPerMin: *requestsPerMin,
	}, api.Dependencies{
		Log:      log,
		Store:    reader,
		Snapshot: snap,
	})

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", "addr", *addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("api stopped")
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
