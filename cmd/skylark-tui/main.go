package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/deps"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/tui"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "Settings file path (.json or .toml)")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil && !errors.Is(err, model.ErrConfigIO) {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid settings: %v\n", err)
		os.Exit(1)
	}

	if err := deps.Check(settings).Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The alternate screen owns the terminal; diagnostics go to log_file only.
	logger := logging.NewNop()
	if settings.LogFile != "" {
		if l, err := logging.New(logging.Options{
			Level:       settings.LogLevel,
			Format:      "json",
			OutputPaths: []string{settings.LogFile},
		}); err == nil {
			logger = l
		}
	}

	if err := tui.Run(settings, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
