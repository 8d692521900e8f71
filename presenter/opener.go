package presenter

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/waldirborbajr/appstorecheck/logger"
)

// SystemOpener hands URLs to the platform's default handler. When the handler
// cannot be started and a fallback writer is set, the URL is printed there instead.
type SystemOpener struct {
	goos     string
	run      func(name string, args ...string) error
	fallback io.Writer
}

// NewSystemOpener returns an opener for the current platform. fallback may be nil.
func NewSystemOpener(fallback io.Writer) *SystemOpener {
	return &SystemOpener{
		goos:     runtime.GOOS,
		run:      startDetached,
		fallback: fallback,
	}
}

func (o *SystemOpener) Open(url string) error {
	name, args := openCommand(o.goos, url)
	err := o.run(name, args...)
	if err == nil {
		return nil
	}
	if o.fallback != nil {
		log := logger.GetLogger()
		log.Debug().Err(err).Str("command", name).Msg("Platform opener unavailable, printing link")
		return PrintOpener{Out: o.fallback}.Open(url)
	}
	return fmt.Errorf("error opening %s: %w", url, err)
}

// startDetached starts the command and reaps it in the background
func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// PrintOpener writes the URL instead of opening it, for headless hosts
type PrintOpener struct {
	Out io.Writer
}

func (o PrintOpener) Open(url string) error {
	_, err := fmt.Fprintf(o.Out, "Open %s to update\n", url)
	return err
}
