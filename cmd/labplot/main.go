// Command labplot draws every per-channel logger CSV in a directory onto
// one combined time-series chart.
//
// It loads configuration (defaults, YAML file, environment, flags), then
// runs diagnostics (--check), the per-channel report (--analyze), or the
// plotting pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/backmassage/labplot/internal/check"
	"github.com/backmassage/labplot/internal/config"
	"github.com/backmassage/labplot/internal/display"
	"github.com/backmassage/labplot/internal/logging"
	"github.com/backmassage/labplot/internal/naming"
	"github.com/backmassage/labplot/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.Load(&cfg, os.Args[1:], version); err != nil {
		if errors.Is(err, config.ErrHelpShown) || errors.Is(err, config.ErrVersionShown) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "labplot: %v\n", err)
		return 1
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "labplot: %v\n", err)
		return 1
	}
	cfg.RunID = uuid.NewString()

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "labplot: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available. All output goes through log from here on.
	display.PrintBanner(os.Stdout, version)

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	log.Info("=== labplot v%s (%s) ===", version, commit)
	log.Info("Run:  %s", cfg.RunID)
	log.Info("Data: %s", cfg.DataDir)
	if cfg.ConfigFile != "" {
		log.Debug(cfg.Verbose, "Config file: %s", cfg.ConfigFile)
	}

	// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM so the pipeline
	// stops between files without writing a partial chart.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AnalyzeOnly {
		if err := pipeline.Analyze(ctx, &cfg, log); err != nil {
			log.Error("%v", err)
			return 1
		}
		return 0
	}

	// Fail fast before reading any data if the image cannot be written.
	if err := check.CheckDeps(&cfg); err != nil {
		if errors.Is(err, check.ErrInputDirMissing) {
			log.Error("No files found matching %s: %v", naming.FilePattern, err)
		} else {
			log.Error("%v", err)
		}
		return 1
	}

	// Phase 4: Run pipeline (discover → load → reconstruct → smooth → render).
	if _, err := pipeline.Run(ctx, &cfg, log); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Interrupted, no image written")
		} else {
			log.Error("%v", err)
		}
		return 1
	}
	return 0
}
