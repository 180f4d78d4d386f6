package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"warble/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", tempHome)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantBase := filepath.Join(tempHome, ".local", "share", "warble", "workspaces")
	if cfg.Paths.BaseDir != wantBase {
		t.Fatalf("unexpected base dir: got %q want %q", cfg.Paths.BaseDir, wantBase)
	}
	if cfg.Paths.APIBind != "127.0.0.1:8080" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Audio.Codec != "mp3" {
		t.Fatalf("unexpected default codec: %q", cfg.Audio.Codec)
	}
	if cfg.Resolver.SearchLimit != 10 {
		t.Fatalf("unexpected search limit: %d", cfg.Resolver.SearchLimit)
	}
	if cfg.Fetch.MaxConcurrent != 4 {
		t.Fatalf("unexpected max concurrent: %d", cfg.Fetch.MaxConcurrent)
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warble.toml")
	content := strings.Join([]string{
		"[paths]",
		`base_dir = "` + filepath.ToSlash(filepath.Join(dir, "ws")) + `"`,
		`log_dir = "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"`,
		"[audio]",
		`codec = "opus"`,
		"[resolver]",
		"search_limit = 5",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Audio.Codec != "opus" {
		t.Fatalf("unexpected codec: %q", cfg.Audio.Codec)
	}
	if cfg.Resolver.SearchLimit != 5 {
		t.Fatalf("unexpected search limit: %d", cfg.Resolver.SearchLimit)
	}
	if cfg.Audio.Bitrate != "192k" {
		t.Fatalf("expected bitrate default to survive overrides, got %q", cfg.Audio.Bitrate)
	}
}

func TestLoadRejectsUnknownCodec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warble.toml")
	if err := os.WriteFile(path, []byte("[audio]\ncodec = \"wav\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported codec")
	} else if !strings.Contains(err.Error(), "supported: m4a, mp3, opus") {
		t.Fatalf("expected supported codecs listed: %v", err)
	}
}

func TestValidateRejectsStaleCutoffBelowFetchTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Resolver.FetchTimeout = 600
	cfg.Workspaces.StaleAfterSeconds = 300
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when stale_after does not exceed fetch_timeout")
	} else if !strings.Contains(err.Error(), "workspaces.stale_after") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonPositiveLimits(t *testing.T) {
	cfg := config.Default()
	cfg.Fetch.MaxConcurrent = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max_concurrent")
	}
}

func TestProbeStorageFailsOnReadOnlyBase(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	dir := t.TempDir()
	base := filepath.Join(dir, "base")
	if err := os.MkdirAll(base, 0o555); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := config.Default()
	cfg.Paths.BaseDir = base

	if err := cfg.ProbeStorage(); err == nil {
		t.Fatal("expected storage probe to fail on read-only base")
	} else if !strings.Contains(err.Error(), "storage unavailable") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSampleConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if cfg.Audio.Codec != "mp3" {
		t.Fatalf("sample codec drifted from default: %q", cfg.Audio.Codec)
	}
}
