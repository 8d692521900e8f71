package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waldirborbajr/appstorecheck/config"
	"github.com/waldirborbajr/appstorecheck/detector"
	"github.com/waldirborbajr/appstorecheck/history"
	"github.com/waldirborbajr/appstorecheck/logger"
)

// version is set at build time using -ldflags="-X main.version=VERSION"
var version string

const (
	exitOK = iota
	exitConfig
	exitCheckFailed
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	envErr := config.LoadEnv()
	cfg := config.FromEnv(os.Getenv)

	fs := flag.NewFlagSet("appstorecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.AppID, "id", cfg.AppID, "App Store id of the application")
	fs.StringVar(&cfg.BundleID, "bundle", cfg.BundleID, "local bundle identifier")
	fs.StringVar(&cfg.CurrentVersion, "current", cfg.CurrentVersion, "installed version")
	fs.DurationVar(&cfg.CheckDelay, "delay", cfg.CheckDelay, "wait before checking")
	fs.StringVar(&cfg.LookupCountry, "country", cfg.LookupCountry, "storefront country code for the lookup")
	fs.BoolVar(&cfg.AlertAllowed, "prompt", cfg.AlertAllowed, "ask to open the store when a newer version exists")
	fs.BoolVar(&cfg.DebugMode, "debug", cfg.DebugMode, "debug logging")
	fs.StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "SQLite file recording every check")
	historyLimit := fs.Int("history", 0, "print the last N recorded checks and exit")
	asJSON := fs.Bool("json", false, "print the outcome as JSON")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}

	if *showVersion {
		fmt.Fprintf(stdout, "appstorecheck %s\n", displayVersion())
		return exitOK
	}

	log := logger.InitLogger(logger.Options{Debug: cfg.DebugMode, File: cfg.LogFile})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("Continuing with the process environment")
	}
	cfg.LogLoaded()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *history.Store
	if cfg.HistoryDB != "" {
		var err error
		store, err = history.Open(cfg.HistoryDB)
		if err != nil {
			log.Error().Err(err).Msg("Error opening check history")
			fmt.Fprintf(stderr, "Error opening history database: %v\n", err)
			return exitConfig
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing check history")
			}
		}()
	}

	if *historyLimit > 0 {
		if store == nil {
			fmt.Fprintln(stderr, "No history database configured (set HISTORY_DB or -history-db)")
			return exitConfig
		}
		return printHistory(ctx, stdout, stderr, store, *historyLimit)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		fmt.Fprintln(stderr, "Suggested action: set APP_ID, BUNDLE_ID and CURRENT_VERSION in .env, the environment, or pass -id, -bundle and -current")
		return exitConfig
	}

	d := buildDetector(cfg, store, stdout, *asJSON)

	start := time.Now()
	out, err := d.Check(ctx, d.Request(cfg.AppID, cfg.CheckDelay))
	if err != nil {
		var f *detector.Failure
		if errors.As(err, &f) {
			log.Error().Err(err).Str("kind", string(f.Kind)).Msg("Version check failed")
		} else {
			log.Error().Err(err).Msg("Version check interrupted")
		}
		printFailure(stdout, stderr, err, *asJSON)
		return exitCheckFailed
	}

	log.Debug().Dur("elapsed", time.Since(start)).Bool("has_newer", out.HasNewer).Msg("Version check completed")
	printOutcome(stdout, cfg, out, *asJSON)
	return exitOK
}

func displayVersion() string {
	if version == "" {
		return "dev"
	}
	return version
}
