package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/waldirborbajr/appstorecheck/detector"
)

func lookupServer(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func setCheckEnv(t *testing.T, lookupURL string) {
	t.Helper()
	t.Setenv("APP_ID", "1567464646")
	t.Setenv("BUNDLE_ID", "com.example.app")
	t.Setenv("CURRENT_VERSION", "1.2.16")
	t.Setenv("LOOKUP_URL", lookupURL)
	t.Setenv("ALERT_ALLOWED", "false")
	t.Setenv("HISTORY_DB", "")
}

func runJSON(t *testing.T, args ...string) (int, jsonResult) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-json"}, args...), &stdout, &stderr)

	var res jsonResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		t.Fatalf("decoding %q: %v (stderr: %s)", stdout.String(), err, stderr.String())
	}
	return code, res
}

func TestRunNewerVersion(t *testing.T) {
	setCheckEnv(t, lookupServer(t, `{"results":[{"bundleId":"com.example.app","version":"1.3.0","releaseNotes":"fixes","currentVersionReleaseDate":"2022-01-26T18:25:02Z"}]}`))

	code, res := runJSON(t)
	if code != exitOK {
		t.Fatalf("run = %d; want %d", code, exitOK)
	}
	want := detector.ReleaseInfo{Version: "1.3.0", ReleaseDate: "2022-01-26 18:25:02", ReleaseNotes: "fixes"}
	if !res.HasNewer || res.Info == nil || *res.Info != want {
		t.Fatalf("result = %+v; want newer %+v", res, want)
	}
	if res.Error != "" || res.Kind != "" {
		t.Errorf("unexpected failure fields: %+v", res)
	}
}

func TestRunUpToDate(t *testing.T) {
	setCheckEnv(t, lookupServer(t, `{"results":[{"bundleId":"com.example.app","version":"1.2.16"}]}`))

	code, res := runJSON(t)
	if code != exitOK {
		t.Fatalf("run = %d; want %d", code, exitOK)
	}
	if res.HasNewer || res.Info != nil {
		t.Fatalf("result = %+v; want up to date", res)
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind detector.FailureKind
	}{
		{"bundle mismatch", `{"results":[{"bundleId":"com.other.app","version":"1.3.0"}]}`, detector.BundleMismatch},
		{"empty results", `{"results":[]}`, detector.MalformedResponse},
		{"empty body", ``, detector.EmptyBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setCheckEnv(t, lookupServer(t, tt.body))
			code, res := runJSON(t)
			if code != exitCheckFailed {
				t.Fatalf("run = %d; want %d", code, exitCheckFailed)
			}
			if res.Kind != string(tt.wantKind) || res.Error == "" {
				t.Fatalf("result = %+v; want kind %s", res, tt.wantKind)
			}
			if res.HasNewer || res.Info != nil {
				t.Errorf("failure carries an outcome: %+v", res)
			}
		})
	}
}

func TestRunMissingConfig(t *testing.T) {
	setCheckEnv(t, "http://127.0.0.1:1")
	t.Setenv("APP_ID", "")
	t.Setenv("BUNDLE_ID", "")
	t.Setenv("CURRENT_VERSION", "")

	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != exitConfig {
		t.Fatalf("run = %d; want %d", code, exitConfig)
	}
	for _, key := range []string{"APP_ID", "BUNDLE_ID", "CURRENT_VERSION"} {
		if !strings.Contains(stderr.String(), key) {
			t.Errorf("stderr should name %s: %q", key, stderr.String())
		}
	}
	if code := run([]string{"-unknown-flag"}, &stdout, &stderr); code != exitConfig {
		t.Fatalf("run with bad flag = %d; want %d", code, exitConfig)
	}
}

func TestRunFlagsOverrideEnv(t *testing.T) {
	setCheckEnv(t, lookupServer(t, `{"results":[{"bundleId":"com.example.app","version":"1.3.0"}]}`))
	t.Setenv("APP_ID", "")

	code, res := runJSON(t, "-id", "1567464646", "-current", "2.0")
	if code != exitOK {
		t.Fatalf("run = %d; want %d", code, exitOK)
	}
	if res.HasNewer {
		t.Fatalf("result = %+v; -current 2.0 should be up to date", res)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	setCheckEnv(t, lookupServer(t, `{"results":[{"bundleId":"com.example.app","version":"1.3.0"}]}`))
	db := filepath.Join(t.TempDir(), "history.db")

	if code, _ := runJSON(t, "-history-db", db); code != exitOK {
		t.Fatalf("check run = %d; want %d", code, exitOK)
	}

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-history", "5", "-history-db", db}, &stdout, &stderr); code != exitOK {
		t.Fatalf("history run = %d; want %d", code, exitOK)
	}
	if !strings.Contains(stdout.String(), "1567464646") || !strings.Contains(stdout.String(), "newer 1.3.0") {
		t.Errorf("history output = %q", stdout.String())
	}
	if code := run([]string{"-history", "5"}, &stdout, &stderr); code != exitConfig {
		t.Fatalf("history without db = %d; want %d", code, exitConfig)
	}
}
