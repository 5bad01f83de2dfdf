package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"clipper/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

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

	wantWork := filepath.Join(tempHome, ".local", "share", "clipper", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.Downloader.Binary != "yt-dlp" {
		t.Fatalf("unexpected downloader binary: %q", cfg.Downloader.Binary)
	}
	if cfg.Transcode.OversizeFactor != 1.5 {
		t.Fatalf("unexpected oversize factor: %v", cfg.Transcode.OversizeFactor)
	}
	if cfg.Delivery.CompactLimitMB != 50 || cfg.Delivery.MaxLimitMB != 2000 {
		t.Fatalf("unexpected delivery limits: %d/%d", cfg.Delivery.CompactLimitMB, cfg.Delivery.MaxLimitMB)
	}
	if len(cfg.Hosts.Allowed) != 2 || cfg.Hosts.Allowed[0] != "youtube.com" {
		t.Fatalf("unexpected host allow-list: %v", cfg.Hosts.Allowed)
	}
	if cfg.CompactLimitBytes() != 50*1024*1024 {
		t.Fatalf("unexpected compact byte limit: %d", cfg.CompactLimitBytes())
	}
}

func TestLoadExplicitFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clipper.toml")
	body := `
[delivery]
compact_limit_mb = 25

[hosts]
allowed = ["Example.COM "]

[transcode]
crf = 30
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Delivery.CompactLimitMB != 25 {
		t.Fatalf("override lost: %d", cfg.Delivery.CompactLimitMB)
	}
	if cfg.Delivery.MaxLimitMB != 2000 {
		t.Fatalf("default lost: %d", cfg.Delivery.MaxLimitMB)
	}
	if cfg.Hosts.Allowed[0] != "example.com" {
		t.Fatalf("hosts not normalized: %v", cfg.Hosts.Allowed)
	}
	if cfg.Transcode.CRF != 30 {
		t.Fatalf("crf override lost: %d", cfg.Transcode.CRF)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"oversize below one", func(c *config.Config) { c.Transcode.OversizeFactor = 0.5 }},
		{"crf out of range", func(c *config.Config) { c.Transcode.CRF = 99 }},
		{"compact above max", func(c *config.Config) { c.Delivery.CompactLimitMB = 5000 }},
		{"zero timeout", func(c *config.Config) { c.Downloader.TimeoutSeconds = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}
}
