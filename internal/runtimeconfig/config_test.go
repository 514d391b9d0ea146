package runtimeconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, contents string) {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	dir := filepath.Join(configHome, "arena")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileIsZeroConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if path == "" {
		t.Fatalf("Load returned empty path")
	}
	if !reflect.DeepEqual(cfg, Config{}) {
		t.Fatalf("missing file produced non-zero config: %+v", cfg)
	}
}

func TestLoadReadsAllSections(t *testing.T) {
	writeConfig(t, `
log_level: " debug "
staging_dir: /srv/arena/staging
poll_interval_seconds: 7
client_memory_limit: 2g
retain_logs: false
sidecar:
  server: my_server_sidecar.py
  client_args: ["--verbose"]
replay:
  volume: my-replay
  live_dir: live
`)

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want trimmed \"debug\"", cfg.LogLevel)
	}
	if cfg.StagingDir != "/srv/arena/staging" {
		t.Fatalf("StagingDir = %q", cfg.StagingDir)
	}
	if cfg.PollIntervalSeconds != 7 {
		t.Fatalf("PollIntervalSeconds = %d", cfg.PollIntervalSeconds)
	}
	if cfg.RetainLogs == nil || *cfg.RetainLogs {
		t.Fatalf("RetainLogs = %v, want explicit false", cfg.RetainLogs)
	}
	if cfg.Sidecar.Server != "my_server_sidecar.py" {
		t.Fatalf("Sidecar.Server = %q", cfg.Sidecar.Server)
	}
	if len(cfg.Sidecar.ClientArgs) != 1 || cfg.Sidecar.ClientArgs[0] != "--verbose" {
		t.Fatalf("Sidecar.ClientArgs = %v", cfg.Sidecar.ClientArgs)
	}
	if cfg.Replay.Volume != "my-replay" {
		t.Fatalf("Replay.Volume = %q", cfg.Replay.Volume)
	}
}

func TestLoadUnsetRetainLogsStaysNil(t *testing.T) {
	writeConfig(t, "log_level: info\n")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.RetainLogs != nil {
		t.Fatalf("RetainLogs = %v, want nil when unset", cfg.RetainLogs)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	writeConfig(t, "log_level: [unclosed\n")

	if _, _, err := Load(); err == nil {
		t.Fatalf("malformed yaml accepted")
	}
}
