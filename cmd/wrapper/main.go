//go:build wrapper
// +build wrapper

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/waldirborbajr/appstorecheck/catalog"
	"github.com/waldirborbajr/appstorecheck/config"
	"github.com/waldirborbajr/appstorecheck/history"
	"github.com/waldirborbajr/appstorecheck/logger"
)

func main() {
	// Load config
	envErr := config.LoadEnv()
	cfg := config.FromEnv(os.Getenv)

	// Init logger before reporting anything about the config
	log := logger.InitLogger(logger.Options{Debug: cfg.DebugMode, File: cfg.LogFile})
	if envErr != nil {
		log.Warn().Err(envErr).Msg("Continuing with the process environment")
	}
	cfg.LogLoaded()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		printConfigError(err)
		os.Exit(1)
	}

	// Check the lookup endpoint answers for APP_ID
	if err := checkLookup(cfg); err != nil {
		log.Error().Err(err).Msg("Catalog lookup check failed")
		printLookupTips(err)
		os.Exit(2)
	}
	log.Info().Msg("Catalog lookup check OK")

	// Optionally, check the history database
	if cfg.HistoryDB != "" {
		if err := checkHistory(cfg); err != nil {
			log.Error().Err(err).Msg("History database check failed")
			fmt.Fprintf(os.Stderr, "History database check error: %v\n", err)
			fmt.Fprintln(os.Stderr, "Suggested action: make sure the directory of HISTORY_DB exists and is writable")
			os.Exit(3)
		}
		log.Info().Msg("History database check OK")
	}

	log.Info().Msg("All startup checks passed. You're good to run the version check.")
	fmt.Println("All startup checks passed. No issues detected.")
}

func printConfigError(err error) {
	fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
	if strings.Contains(err.Error(), "APP_ID") {
		fmt.Fprintln(os.Stderr, "Suggested action: set APP_ID to the numeric App Store id of the application")
	}
	if strings.Contains(err.Error(), "BUNDLE_ID") {
		fmt.Fprintln(os.Stderr, "Suggested action: set BUNDLE_ID to the bundle identifier published for APP_ID")
	}
	if strings.Contains(err.Error(), "CURRENT_VERSION") {
		fmt.Fprintln(os.Stderr, "Suggested action: set CURRENT_VERSION to the installed version, e.g. 1.2.16")
	}
	fmt.Fprintln(os.Stderr, "Tip: run with DEBUG_MODE=true for more detailed logs.")
}

func checkLookup(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.LookupTimeout)
	defer cancel()

	client := catalog.NewClient(catalog.WithBaseURL(cfg.LookupURL), catalog.WithCountry(cfg.LookupCountry))
	rec, err := client.Fetch(ctx, cfg.AppID)
	if err != nil {
		return err
	}
	if rec.BundleID != cfg.BundleID {
		return fmt.Errorf("APP_ID %s belongs to %q, not BUNDLE_ID %q", cfg.AppID, rec.BundleID, cfg.BundleID)
	}
	return nil
}

func printLookupTips(err error) {
	fmt.Fprintf(os.Stderr, "Catalog lookup check error: %v\n", err)
	fmt.Fprintln(os.Stderr, "Suggested actions:")
	switch {
	case errors.Is(err, catalog.ErrTransport):
		fmt.Fprintln(os.Stderr, " - Verify this host can reach itunes.apple.com over HTTPS")
		fmt.Fprintln(os.Stderr, " - Check proxy settings (HTTPS_PROXY) and firewalls")
		fmt.Fprintln(os.Stderr, " - Increase LOOKUP_TIMEOUT if the network is slow")
	case errors.Is(err, catalog.ErrMalformedResponse):
		fmt.Fprintln(os.Stderr, " - Verify APP_ID is published; an unknown id returns no results")
		fmt.Fprintln(os.Stderr, " - Set LOOKUP_COUNTRY if the app is only available in one storefront")
	case errors.Is(err, catalog.ErrInvalidURL):
		fmt.Fprintln(os.Stderr, " - Verify LOOKUP_URL is an absolute URL")
	default:
		fmt.Fprintln(os.Stderr, " - Verify BUNDLE_ID matches the application published under APP_ID")
	}
}

func checkHistory(cfg config.Config) error {
	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Ping(ctx)
}
