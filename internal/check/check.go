// Package check provides system diagnostics (--check mode) and pre-run
// validation (CheckDeps) for the data directory, the channel files, the
// smoothing parameters and the output location.
package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/labplot/internal/config"
	"github.com/backmassage/labplot/internal/loader"
	"github.com/backmassage/labplot/internal/naming"
	"github.com/backmassage/labplot/internal/render"
	"github.com/backmassage/labplot/internal/smooth"
)

// Sentinel errors returned by CheckDeps when a run cannot succeed.
var (
	ErrInputDirMissing   = errors.New("data directory not found")
	ErrInputNotDir       = errors.New("data directory is not a directory")
	ErrOutputDirMissing  = errors.New("output directory not found")
	ErrOutputNotWritable = errors.New("output directory is not writable")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// RunCheck runs the interactive --check flow: data directory, matching
// channel files and their headers, smoothing capability and the output
// location. It reports false if any check would make a run fail.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkDataDir(cfg, log)
	if ok {
		checkInputs(cfg, log)
	}
	checkSmoothing(cfg, log)
	if !checkOutput(cfg, log) {
		ok = false
	}
	return ok
}

// checkDataDir verifies the data directory exists.
func checkDataDir(cfg *config.Config, log Logger) bool {
	if err := dataDirError(cfg.DataDir); err != nil {
		log.Error("%v: %s", err, cfg.DataDir)
		return false
	}
	log.Success("Data directory: %s", cfg.DataDir)
	return true
}

// checkInputs lists matching files and reports which lack required columns.
// Files are only opened to read their header.
func checkInputs(cfg *config.Config, log Logger) {
	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		log.Error("Cannot list %s: %v", cfg.DataDir, err)
		return
	}
	var matched, usable int
	for _, e := range entries {
		if e.IsDir() || !naming.MatchesPattern(e.Name()) {
			continue
		}
		matched++
		path := filepath.Join(cfg.DataDir, e.Name())
		if err := headerError(path); err != nil {
			log.Warn("  %s: %v", e.Name(), err)
			continue
		}
		usable++
		log.Debug(cfg.Verbose, "  %s", e.Name())
	}
	switch {
	case matched == 0:
		log.Warn("No files matching %s", naming.FilePattern)
	case usable == matched:
		log.Success("Channel files: %d", matched)
	default:
		log.Warn("Channel files: %d (%d unusable)", matched, matched-usable)
	}
}

// checkSmoothing reports whether the configured filter can be designed.
func checkSmoothing(cfg *config.Config, log Logger) {
	if !cfg.Smooth {
		log.Info("Smoothing: off")
		return
	}
	f := smooth.New(cfg.SmoothWindow, cfg.SmoothPoly)
	if f.Available() {
		log.Success("Smoothing: Savitzky-Golay window %d, order %d", f.Window(), f.Poly())
	} else {
		log.Warn("Smoothing will be skipped: %v", f.Err())
	}
}

// checkOutput verifies the image path has a supported format and its
// directory is writable.
func checkOutput(cfg *config.Config, log Logger) bool {
	out := cfg.OutputPath()
	if err := outputError(out); err != nil {
		log.Error("Output %s: %v", out, err)
		return false
	}
	log.Success("Output: %s", out)
	return true
}

// CheckDeps is the pre-run validation: the data directory must exist and
// the output image must be writable in a supported format. Returns a
// sentinel error on failure.
func CheckDeps(cfg *config.Config) error {
	if err := dataDirError(cfg.DataDir); err != nil {
		return fmt.Errorf("%w: %s", err, cfg.DataDir)
	}
	return outputError(cfg.OutputPath())
}

// --- internal helpers ---

func dataDirError(dir string) error {
	fi, err := os.Stat(dir)
	if err != nil {
		return ErrInputDirMissing
	}
	if !fi.IsDir() {
		return ErrInputNotDir
	}
	return nil
}

func outputError(path string) error {
	if err := render.CheckFormat(path); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrOutputDirMissing, dir)
	}
	tmp, err := os.CreateTemp(dir, ".labplot-check-*")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOutputNotWritable, dir)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return nil
}

// headerError reports whether path lacks a required column. Row contents
// are not validated here.
func headerError(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return loader.CheckHeader(f)
}
