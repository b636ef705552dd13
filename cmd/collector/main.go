package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gnmradar/collector/internal/config"
	"github.com/gnmradar/collector/internal/logging"
	"github.com/gnmradar/collector/internal/runtime"
)

const defaultAPIAddr = "127.0.0.1:9311"

// Exit codes: 0 clean shutdown, 1 config/startup failure, 2 datastore
// unreachable at startup or for too many consecutive cycles
// (runtime.ErrFatalDatastore), 3 unrecoverable run-time error.
const (
	exitOK             = 0
	exitConfigError    = 1
	exitDatastoreError = 2
	exitRuntimeError   = 3
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitConfigError)
	}

	ctx := context.Background()
	cmd := os.Args[1]

	var code int
	switch cmd {
	case "run":
		code = runCollector(ctx, os.Args[2:])
	case "once":
		code = runOnce(ctx, os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		code = exitConfigError
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Println("GNMRADAR Collector CLI")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gnmradar-collector run [--config path] [--hosts path] [--services path]")
	fmt.Println("  gnmradar-collector once [--config path] [--hosts path] [--services path]")
}

func commonFlags(fs *flag.FlagSet) (configPath, hostsPath, servicesPath *string) {
	configPath = fs.String("config", "", "Path to the main config file (falls back to GNM_CONFIG, then "+config.DefaultConfigPath+")")
	hostsPath = fs.String("hosts", "/etc/gnmradar/hosts.json", "Path to the host catalog")
	servicesPath = fs.String("services", "/etc/gnmradar/services.json", "Path to the service catalog")
	return
}

func loadSnapshot(fs *flag.FlagSet, args []string) (config.Snapshot, error) {
	configPath, hostsPath, servicesPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return config.Snapshot{}, err
	}
	resolved := config.ResolveConfigPath(*configPath)
	return config.Load(resolved, *hostsPath, *servicesPath)
}

func runCollector(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	snap, err := loadSnapshot(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitConfigError
	}

	log, err := logging.New("collector", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return exitConfigError
	}
	defer log.Sync()

	rt, err := runtime.New(ctx, snap, log)
	if err != nil {
		log.Error("failed to initialize runtime", "error", err.Error())
		return exitDatastoreError
	}
	defer rt.Close()

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grp, groupCtx := errgroup.WithContext(runCtx)

	grp.Go(func() error {
		return rt.Run(groupCtx)
	})

	grp.Go(func() error {
		return serveHealth(groupCtx, defaultAPIAddr, rt, log)
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("collector stopped with error", "error", err.Error())
		if errors.Is(err, runtime.ErrFatalDatastore) {
			return exitDatastoreError
		}
		return exitRuntimeError
	}

	log.Info("collector stopped")
	return exitOK
}

func runOnce(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("once", flag.ContinueOnError)
	snap, err := loadSnapshot(fs, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitConfigError
	}

	log, err := logging.New("collector", "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		return exitConfigError
	}
	defer log.Sync()

	rt, err := runtime.New(ctx, snap, log)
	if err != nil {
		log.Error("failed to initialize runtime", "error", err.Error())
		return exitDatastoreError
	}
	defer rt.Close()

	rt.RunOnce(ctx)
	log.Info("single cycle complete")
	return exitOK
}

func serveHealth(ctx context.Context, addr string, rt *runtime.Runtime, log *logging.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ready, reasons := rt.Ready(r.Context())
		if !ready {
			http.Error(w, strings.Join(reasons, "; "), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info("health endpoint listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
