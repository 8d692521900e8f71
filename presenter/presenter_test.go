package presenter

import (
	"bytes"
	"errors"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestPresentUpdatePromptConfirm(t *testing.T) {
	var out bytes.Buffer
	var asked string
	term := NewTerminal(&out, func(title, description string) (bool, error) {
		asked = title
		return true, nil
	})

	var confirmed, dismissed int
	term.PresentUpdatePrompt("1.3.0", "2022-01-26 18:25:02", "fixes", func() { confirmed++ }, func() { dismissed++ })

	if confirmed != 1 || dismissed != 0 {
		t.Fatalf("confirmed=%d dismissed=%d; want 1/0", confirmed, dismissed)
	}
	if asked == "" {
		t.Error("confirm was not asked")
	}
	for _, want := range []string{"1.3.0", "2022-01-26 18:25:02", "fixes"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %q", want, out.String())
		}
	}
}

func TestPresentUpdatePromptDismiss(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
		err  error
	}{
		{"declined", false, nil},
		{"aborted", true, errors.New("user aborted")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := NewTerminal(&bytes.Buffer{}, func(string, string) (bool, error) { return tt.ok, tt.err })
			var confirmed, dismissed int
			term.PresentUpdatePrompt("1.3.0", "", "", func() { confirmed++ }, func() { dismissed++ })
			if confirmed != 0 || dismissed != 1 {
				t.Fatalf("confirmed=%d dismissed=%d; want 0/1", confirmed, dismissed)
			}
		})
	}
}

func TestSystemOpener(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"https://x"}},
		{"linux", "xdg-open", []string{"https://x"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://x"}},
	}

	for _, tt := range tests {
		var gotName string
		var gotArgs []string
		o := &SystemOpener{goos: tt.goos, run: func(name string, args ...string) error {
			gotName, gotArgs = name, args
			return nil
		}}
		if err := o.Open("https://x"); err != nil {
			t.Fatalf("%s: Open: %v", tt.goos, err)
		}
		if gotName != tt.wantName || !reflect.DeepEqual(gotArgs, tt.wantArgs) {
			t.Errorf("%s: ran %s %v; want %s %v", tt.goos, gotName, gotArgs, tt.wantName, tt.wantArgs)
		}
	}

	failing := &SystemOpener{goos: "linux", run: func(string, ...string) error { return errors.New("not found") }}
	if err := failing.Open("https://x"); err == nil {
		t.Fatal("expected error from failing opener")
	}
}

func TestSystemOpenerFallback(t *testing.T) {
	var out bytes.Buffer
	o := NewSystemOpener(&out)
	o.run = func(string, ...string) error { return errors.New("xdg-open: not found") }

	if err := o.Open("https://apps.apple.com/cn/app/id1?mt=8"); err != nil {
		t.Fatalf("Open with fallback: %v", err)
	}
	if !strings.Contains(out.String(), "https://apps.apple.com/cn/app/id1?mt=8") {
		t.Fatalf("fallback output = %q", out.String())
	}
}

func TestStartDetached(t *testing.T) {
	path, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true not available")
	}
	if err := startDetached(path); err != nil {
		t.Fatalf("startDetached(%s): %v", path, err)
	}
	if err := startDetached(filepath.Join(t.TempDir(), "no-such-opener")); err == nil {
		t.Fatal("expected error for missing command")
	}
}

func TestPrintOpener(t *testing.T) {
	var out bytes.Buffer
	if err := (PrintOpener{Out: &out}).Open("https://apps.apple.com/cn/app/id1?mt=8"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "https://apps.apple.com/cn/app/id1?mt=8") {
		t.Fatalf("output = %q", out.String())
	}
}
