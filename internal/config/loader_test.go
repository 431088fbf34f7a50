package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func testLoader() (*Loader, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Loader{Usage: &buf}, &buf
}

func TestLoadParsesPositionals(t *testing.T) {
	l, _ := testLoader()
	cfg, err := l.Load([]string{"-", "8", "16", "25"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Threads != 8 || cfg.BlockCount != 16 || cfg.WritePct != 25 {
		t.Fatalf("positionals not applied: %+v", cfg)
	}
	if cfg.ConfigFile != "" {
		t.Fatalf("'-' should skip the config file, got %q", cfg.ConfigFile)
	}
	if cfg.RateMin != 20000 || cfg.RateMax != 600000 || cfg.RateStep != 20000 {
		t.Fatalf("sweep defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingPositionalsPrintsUsage(t *testing.T) {
	l, buf := testLoader()
	_, err := l.Load([]string{"-", "8"})
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("usage: blockfire")) {
		t.Fatalf("usage message not printed, got %q", buf.String())
	}
}

func TestLoadNonNumericPositional(t *testing.T) {
	l, _ := testLoader()
	if _, err := l.Load([]string{"-", "eight", "16", "25"}); !errors.Is(err, ErrUsage) {
		t.Fatalf("expected ErrUsage, got %v", err)
	}
}

func TestLoadConfigFileAndFlagPrecedence(t *testing.T) {
	doc := map[string]any{
		"rate_min":  1000,
		"rate_max":  5000,
		"rate_step": 1000,
		"horizon":   "2s",
		"backend": map[string]any{
			"kind": "file",
			"path": "/dev/nvme0n1",
		},
	}
	raw, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "bench.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	l, _ := testLoader()
	cfg, err := l.Load([]string{"--rate-max", "3000", path, "4", "8", "0"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RateMin != 1000 {
		t.Fatalf("file rate_min not applied: %f", cfg.RateMin)
	}
	if cfg.RateMax != 3000 {
		t.Fatalf("flag should override file rate_max: %f", cfg.RateMax)
	}
	if cfg.Horizon != 2*time.Second {
		t.Fatalf("file horizon not applied: %s", cfg.Horizon)
	}
	if cfg.Backend.Kind != BackendFile || cfg.Backend.Path != "/dev/nvme0n1" {
		t.Fatalf("file backend settings not applied: %+v", cfg.Backend)
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	l, _ := testLoader()
	if _, err := l.Load([]string{filepath.Join(t.TempDir(), "absent.yaml"), "4", "8", "0"}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidateAggregatesIssues(t *testing.T) {
	cfg := defaults()
	cfg.Threads = 0
	cfg.BlockCount = -1
	cfg.WritePct = 150
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	for _, want := range []string{"threads", "block count", "write percentage"} {
		if !bytes.Contains([]byte(err.Error()), []byte(want)) {
			t.Fatalf("error %q missing issue %q", err.Error(), want)
		}
	}
}

func TestValidateBackendRequirements(t *testing.T) {
	cfg := defaults()
	cfg.Threads, cfg.BlockCount, cfg.WritePct = 1, 1, 0
	cfg.Backend.Kind = BackendFile
	if err := cfg.Validate(); err == nil {
		t.Fatal("file backend without a path should not validate")
	}
	cfg.Backend.Kind = BackendS3
	if err := cfg.Validate(); err == nil {
		t.Fatal("s3 backend without endpoint/bucket/object should not validate")
	}
	cfg.Backend.Kind = "tape"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown backend kind should not validate")
	}
}

func TestValidateOK(t *testing.T) {
	cfg := defaults()
	cfg.Threads, cfg.BlockCount, cfg.WritePct = 8, 32, 50
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
