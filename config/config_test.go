package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.MinClips != 4 || cfg.MaxClips != 8 || cfg.MaxTotalDuration != 58 {
		t.Fatalf("unexpected limits: %d..%d / %v", cfg.MinClips, cfg.MaxClips, cfg.MaxTotalDuration)
	}
	if cfg.OutputFilename != "final_short.mp4" {
		t.Fatalf("OutputFilename = %q", cfg.OutputFilename)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shortsbot.yaml")
	yml := "min_clips: 3\nmax_clips: 5\nsearch_tags: [cats, dogs]\ntrim_policy: whole\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHORTSBOT_CONFIG", path)
	t.Setenv("MAX_CLIPS", "6")
	t.Setenv("ALLOW_CROPPING", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MinClips != 3 {
		t.Fatalf("MinClips = %d; want 3 from file", cfg.MinClips)
	}
	if cfg.MaxClips != 6 {
		t.Fatalf("MaxClips = %d; want 6 from env", cfg.MaxClips)
	}
	if len(cfg.SearchTags) != 2 || cfg.SearchTags[0] != "cats" {
		t.Fatalf("SearchTags = %v", cfg.SearchTags)
	}
	if cfg.AllowCropping {
		t.Fatalf("AllowCropping should be false")
	}
	if cfg.TrimPolicy != "whole" {
		t.Fatalf("TrimPolicy = %q", cfg.TrimPolicy)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min clips zero", func(c *Config) { c.MinClips = 0 }},
		{"max below min", func(c *Config) { c.MaxClips = 2 }},
		{"zero ceiling", func(c *Config) { c.MaxTotalDuration = 0 }},
		{"selection", func(c *Config) { c.SelectionPolicy = "best" }},
		{"recency", func(c *Config) { c.RecencyPolicy = "old" }},
		{"ledger", func(c *Config) { c.LedgerBackend = "mongo" }},
		{"caption source", func(c *Config) { c.CaptionSource = "magic" }},
		{"corner", func(c *Config) { c.CaptionCorner = "middle" }},
		{"trim", func(c *Config) { c.TrimPolicy = "random" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SB_INT", "12")
	t.Setenv("SB_BAD_INT", "twelve")
	t.Setenv("SB_LIST", " a, ,b ,c")
	t.Setenv("SB_BOOL", "true")

	if got := GetEnvInt("SB_INT", 1); got != 12 {
		t.Fatalf("GetEnvInt = %d", got)
	}
	if got := GetEnvInt("SB_BAD_INT", 7); got != 7 {
		t.Fatalf("GetEnvInt invalid = %d; want default", got)
	}
	if got := GetEnvList("SB_LIST", nil); len(got) != 3 || got[1] != "b" {
		t.Fatalf("GetEnvList = %v", got)
	}
	if got := GetEnvBool("SB_BOOL", false); !got {
		t.Fatalf("GetEnvBool = false")
	}
	if got := GetEnvOrDefault("SB_MISSING", "x"); got != "x" {
		t.Fatalf("GetEnvOrDefault = %q", got)
	}
}

func TestUploadEnabled(t *testing.T) {
	cfg := Default()
	if cfg.UploadEnabled() {
		t.Fatalf("upload should be disabled without client secrets")
	}
	path := filepath.Join(t.TempDir(), "client_secrets.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg.ClientSecretsFile = path
	if !cfg.UploadEnabled() {
		t.Fatalf("upload should be enabled when secrets file exists")
	}
}
