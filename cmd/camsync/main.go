package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/camsync/internal/config"
	"github.com/handiism/camsync/internal/download"
	"github.com/handiism/camsync/internal/ledger"
	"github.com/handiism/camsync/internal/sync"
	"github.com/handiism/camsync/internal/upnp"
)

func main() {
	// Command line flags
	var (
		ifnameFlag  = flag.String("ifname", "", "Network interface to search on (overrides config)")
		modelFlag   = flag.String("model", "", "Camera model description to match (overrides config)")
		configFlag  = flag.String("config", "", "Path to config file")
		daemonFlag  = flag.Bool("daemon", false, "Keep running and re-sync whenever the camera reappears")
		flatFlag    = flag.Bool("flat", false, "Use flat date directories instead of year/date")
		thumbsFlag  = flag.Bool("thumbnails", false, "Generate thumbnails alongside downloads")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	// CLI mode - require a target directory
	if flag.NArg() == 0 {
		fmt.Println("camsync - Sync photos from a UPnP camera")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  camsync [options] <target-directory>")
		fmt.Println()
		fmt.Println("For interactive mode, use: camsync-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	settings.BasePath = flag.Arg(0)
	if *ifnameFlag != "" {
		settings.InterfaceName = *ifnameFlag
	}
	if *modelFlag != "" {
		settings.CameraModel = *modelFlag
	}
	if *daemonFlag {
		settings.Daemon = true
	}
	if *flatFlag {
		settings.FlatDateDirs = true
	}
	if *thumbsFlag {
		settings.CreateThumbnails = true
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	led, err := ledger.Open(settings.LedgerPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sync ledger: %v\n", err)
		os.Exit(1)
	}
	defer led.Close()

	onProgress := func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case download.LevelError:
			prefix = "❌ "
		case download.LevelWarning:
			prefix = "⚠️  "
		case download.LevelSuccess:
			prefix = "✅ "
		case download.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}

	downloader := download.NewDownloader(settings, led, onProgress)
	controller := sync.NewController(settings.CameraModel, settings.Daemon, downloader, onProgress)
	watcher := upnp.NewWatcher(
		settings.InterfaceName,
		time.Duration(settings.DiscoverPollSecs)*time.Second,
		onProgress,
	)

	fmt.Println("📷 camsync")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Waiting for %q on %s...\n", settings.CameraModel, settings.InterfaceName)
	fmt.Println()

	g, gctx := errgroup.WithContext(ctx)

	events := make(chan sync.Device, 4)
	g.Go(func() error {
		return watcher.Watch(gctx, events)
	})
	g.Go(func() error {
		// In one-shot mode the controller finishing ends the watcher too.
		defer cancel()
		return controller.Run(gctx, events)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error during sync: %v\n", err)
		os.Exit(1)
	}
	if ctx.Err() != nil && controller.State() != sync.StateTerminated {
		fmt.Println("\nSync cancelled.")
		os.Exit(130)
	}

	received, downloaded, skipped, failed := downloader.Progress()
	fmt.Println()
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Complete! Downloaded %d files, skipped %d (%.2f MB)\n",
		downloaded, skipped, float64(received)/1024/1024)
	if failed > 0 {
		fmt.Printf("   (%d failed)\n", failed)
		os.Exit(1)
	}
}
