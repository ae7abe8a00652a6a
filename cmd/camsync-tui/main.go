package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/camsync/internal/config"
	"github.com/handiism/camsync/internal/tui"
)

func main() {
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println("camsync-tui - Sync photos from a UPnP camera")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  camsync-tui [options] <target-directory>")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	settings.BasePath = flag.Arg(0)

	if err := tui.Run(settings, *verboseFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
