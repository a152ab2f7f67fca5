package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/award-network/pkg/analysis"
	"github.com/ritzau/award-network/pkg/config"
	"github.com/ritzau/award-network/pkg/events"
	"github.com/ritzau/award-network/pkg/geo"
	"github.com/ritzau/award-network/pkg/logging"
	"github.com/ritzau/award-network/pkg/output"
	"github.com/ritzau/award-network/pkg/pubsub"
	"github.com/ritzau/award-network/pkg/watcher"
	"github.com/ritzau/award-network/pkg/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	// Parse command-line flags
	flags := pflag.NewFlagSet("network-analyzer", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	configFile := flags.String("config", config.DefaultFile, "Optional TOML config file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(flags, *configFile)
	if err != nil {
		return err
	}
	if err := logging.Configure(cfg.Verbosity, cfg.VerboseCnt, cfg.JSONLogs); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	locator, err := loadLocator(cfg.Coordinates)
	if err != nil {
		return err
	}

	if cfg.WebMode {
		return serve(ctx, cfg, locator)
	}

	// One-shot console report
	runner, err := analysis.NewRunner(events.NewFileSource(), cfg, nil)
	if err != nil {
		return err
	}
	snap, err := runner.Refresh(ctx, "command line")
	if err != nil {
		return err
	}
	output.PrintNetworkReport(stdout, snap.Graph, snap.Report, snap.Clusters, cfg.Top)
	return nil
}

func loadLocator(path string) (*geo.Locator, error) {
	if path == "" {
		return nil, nil
	}
	locator, err := geo.LoadLocator(path)
	if err != nil {
		return nil, err
	}
	logging.Info("loaded location table", "path", path, "entries", locator.Len())
	return locator, nil
}

func serve(ctx context.Context, cfg *config.Config, locator *geo.Locator) error {
	publisher := pubsub.NewGraphPublisher()
	defer publisher.Close()

	runner, err := analysis.NewRunner(events.NewFileSource(), cfg, publisher)
	if err != nil {
		return err
	}
	server := web.NewServer(runner, publisher, locator, cfg.CacheSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(ctx, cfg.Port)
	})

	// Close streams so the server can drain on shutdown
	g.Go(func() error {
		<-ctx.Done()
		return publisher.Close()
	})

	g.Go(func() error {
		// A failed first build leaves the server up and reporting 503
		if _, err := runner.Refresh(ctx, "startup"); err != nil {
			logging.Error("initial graph build failed", "error", err)
		}
		if cfg.OpenBrowser {
			openBrowser(fmt.Sprintf("http://localhost:%d", cfg.Port))
		}
		return nil
	})

	if cfg.Watch {
		g.Go(func() error {
			return watch(ctx, cfg, runner, server)
		})
	}

	return g.Wait()
}

// watch rebuilds the graph or reloads coordinates when input files change
func watch(ctx context.Context, cfg *config.Config, runner *analysis.Runner, server *web.Server) error {
	fw, err := watcher.NewFileWatcher(map[watcher.ChangeType]string{
		watcher.ChangeTypeEvents:    cfg.Input,
		watcher.ChangeTypeLocations: cfg.Coordinates,
	})
	if err != nil {
		return err
	}
	defer fw.Stop()
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), 500*time.Millisecond, 5*time.Second)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		change := watcher.AnalyzeChanges(event)
		logging.Info("input files changed", "reason", change.Reason)

		if change.NeedLocatorReload {
			locator, err := loadLocator(cfg.Coordinates)
			if err != nil {
				logging.Error("reloading location table failed", "error", err)
			} else {
				server.SetLocator(locator)
			}
		}
		if change.NeedGraphRebuild {
			if _, err := runner.Refresh(ctx, change.Reason); err != nil {
				logging.Error("graph rebuild failed", "error", err)
			}
		}
	}
	return nil
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
