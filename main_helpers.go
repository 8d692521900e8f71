package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/waldirborbajr/appstorecheck/catalog"
	"github.com/waldirborbajr/appstorecheck/config"
	"github.com/waldirborbajr/appstorecheck/detector"
	"github.com/waldirborbajr/appstorecheck/history"
	"github.com/waldirborbajr/appstorecheck/presenter"
)

const (
	reset     = "\033[0m"
	greenBold = "\033[1;32m"
	redBold   = "\033[1;31m"
	cyan      = "\033[1;36m"
)

// buildDetector wires the catalog client, prompt and history into a Detector
func buildDetector(cfg config.Config, store *history.Store, stdout io.Writer, quiet bool) *detector.Detector {
	client := catalog.NewClient(
		catalog.WithBaseURL(cfg.LookupURL),
		catalog.WithCountry(cfg.LookupCountry),
		catalog.WithUserAgent("appstorecheck/"+displayVersion()),
	)

	interactive := !quiet && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	opts := []detector.Option{
		detector.WithTimeout(cfg.LookupTimeout),
		detector.WithStoreRegion(cfg.StoreRegion),
		detector.WithAlertAllowed(cfg.AlertAllowed && interactive),
	}
	if interactive {
		opts = append(opts,
			detector.WithPresenter(presenter.NewTerminal(stdout, nil)),
			detector.WithOpener(presenter.NewSystemOpener(stdout)),
		)
	}
	if store != nil {
		opts = append(opts, detector.WithRecorder(store))
	}

	return detector.New(client, detector.Identity{Version: cfg.CurrentVersion, BundleID: cfg.BundleID}, opts...)
}

type jsonResult struct {
	detector.Outcome
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func printOutcome(w io.Writer, cfg config.Config, out detector.Outcome, asJSON bool) {
	if asJSON {
		_ = json.NewEncoder(w).Encode(jsonResult{Outcome: out})
		return
	}

	if !out.HasNewer {
		fmt.Fprintf(w, greenBold+"Up to date"+reset+" (v%s)\n", cfg.CurrentVersion)
		return
	}

	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "New version available: "+cyan+"%s"+reset+" (installed %s)\n", out.Info.Version, cfg.CurrentVersion)
	if out.Info.ReleaseDate != "" {
		fmt.Fprintf(w, "Released: %s\n", out.Info.ReleaseDate)
	}
	if out.Info.ReleaseNotes != "" {
		fmt.Fprintf(w, "\nRelease notes:\n%s\n", out.Info.ReleaseNotes)
	}
	fmt.Fprintf(w, "\nStore: %s\n", catalog.WebStoreURL(cfg.AppID, cfg.StoreRegion))
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func printFailure(stdout, stderr io.Writer, err error, asJSON bool) {
	kind := ""
	var f *detector.Failure
	if errors.As(err, &f) {
		kind = string(f.Kind)
	}
	if asJSON {
		_ = json.NewEncoder(stdout).Encode(jsonResult{Error: err.Error(), Kind: kind})
		return
	}
	fmt.Fprintf(stderr, redBold+"Version check failed"+reset+": %v\n", err)
	if kind == string(detector.BundleMismatch) {
		fmt.Fprintln(stderr, "Suggested action: APP_ID points to a different application than BUNDLE_ID")
	}
}

func printHistory(ctx context.Context, stdout, stderr io.Writer, store *history.Store, limit int) int {
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading history: %v\n", err)
		return exitCheckFailed
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "No checks recorded")
		return exitOK
	}
	for _, e := range entries {
		status := "up to date"
		switch {
		case e.FailureKind != "":
			status = "failed (" + e.FailureKind + "): " + e.Message
		case e.HasNewer:
			status = "newer " + e.RemoteVersion
		}
		fmt.Fprintf(stdout, "%s  %-12s  local %-10s  %s\n", e.CheckedAt.Format("2006-01-02 15:04:05"), e.AppID, e.LocalVersion, status)
	}
	return exitOK
}
