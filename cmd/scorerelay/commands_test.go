package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/choplin/scorerelay/internal/application"
	"github.com/choplin/scorerelay/internal/database"
)

func writeTestConfig(t *testing.T, endpoint string) string {
	t.Helper()
	tmp := t.TempDir()
	scores := filepath.Join(tmp, "scores")
	if err := os.MkdirAll(scores, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(scores, "pacman.txt"), []byte("Player: ABC Score: 100\nPlayer: XYZ Score: 90\n"), 0o600); err != nil {
		t.Fatalf("write score file: %v", err)
	}

	cfg := fmt.Sprintf(`api_endpoint: %s
log:
  level: error
state:
  persist: true
  path: %s
sources:
  - name: arcade
    directory: %s
  - name: pinball
    directory: %s
rom_names:
  pacman: Pac-Man
`, endpoint, filepath.Join(tmp, "state.db"), scores, filepath.Join(tmp, "missing"))

	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestScanThenStateCommands(t *testing.T) {
	var uploads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		uploads.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	cfgPath := writeTestConfig(t, srv.URL)

	raw := execute(t, "scan", "-c", cfgPath, "--format", "json", "--dry-run=false")
	var rep scanOutput
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		t.Fatalf("scan output is not JSON: %v\n%s", err, raw)
	}
	if uploads.Load() != 2 {
		t.Fatalf("expected 2 uploads, got %d", uploads.Load())
	}
	if len(rep.Summary) != 2 || rep.Summary[0].Accepted != 2 || rep.Summary[1].Available {
		t.Fatalf("unexpected summary %+v", rep.Summary)
	}

	raw = execute(t, "state", "list", "-c", cfgPath, "--format", "json")
	var records []database.FingerprintRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("state list output is not JSON: %v\n%s", err, raw)
	}
	if len(records) != 1 || filepath.Base(records[0].Path) != "pacman.txt" {
		t.Fatalf("unexpected fingerprints %+v", records)
	}

	// a second pass sees the persisted fingerprint
	execute(t, "scan", "-c", cfgPath, "--format", "json", "--dry-run=false")
	if uploads.Load() != 2 {
		t.Fatalf("expected no re-upload, got %d uploads", uploads.Load())
	}

	out := execute(t, "state", "forget", "-c", cfgPath, records[0].Path)
	if !strings.Contains(out, "Forgot") {
		t.Fatalf("unexpected forget output %q", out)
	}
	execute(t, "scan", "-c", cfgPath, "--format", "json", "--dry-run=false")
	if uploads.Load() != 4 {
		t.Fatalf("expected forgotten file to be uploaded again, got %d uploads", uploads.Load())
	}

	out = execute(t, "state", "clear", "-c", cfgPath)
	if !strings.Contains(out, "Removed 1 fingerprint(s)") {
		t.Fatalf("unexpected clear output %q", out)
	}
}

func TestSourcesCommandJSON(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://localhost/api")

	raw := execute(t, "sources", "-c", cfgPath, "--format", "json")
	var statuses []application.SourceStatus
	if err := json.Unmarshal([]byte(raw), &statuses); err != nil {
		t.Fatalf("sources output is not JSON: %v\n%s", err, raw)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Candidates != 1 {
		t.Fatalf("unexpected arcade status %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("expected pinball to be unavailable")
	}
}

func TestSourcesCommandTable(t *testing.T) {
	cfgPath := writeTestConfig(t, "http://localhost/api")

	out := execute(t, "sources", "-c", cfgPath, "--format", "table")
	if !strings.Contains(out, "arcade") || !strings.Contains(out, "unavailable") {
		t.Fatalf("unexpected table output:\n%s", out)
	}
}
