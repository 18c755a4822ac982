package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// No config file at the default path in the test working directory.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Provider != "grok" {
		t.Fatalf("provider=%q", cfg.Provider)
	}
	if cfg.API.Timeout != 15*time.Minute || cfg.API.MaxRetries != 3 || cfg.API.RetryDelay != 5*time.Second {
		t.Fatalf("api=%#v", cfg.API)
	}
	if cfg.Model.MaxTokens != 100000 {
		t.Fatalf("model=%#v", cfg.Model)
	}
	if cfg.Dataset.Name != "gpqa_main" {
		t.Fatalf("dataset=%#v", cfg.Dataset)
	}
	if cfg.Paths.Checkpoint == "" || cfg.Paths.LogDir == "" || cfg.Paths.HistoryDB == "" {
		t.Fatalf("paths=%#v", cfg.Paths)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
provider: claude
api:
  timeout: 2m
  max_retries: 5
model:
  name: claude-sonnet-4-5-20250929
  max_tokens: 16000
dataset:
  name: gpqa_diamond
  path: data/diamond.jsonl
paths:
  checkpoint: out/cp.json
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "claude" || cfg.API.Timeout != 2*time.Minute || cfg.API.MaxRetries != 5 {
		t.Fatalf("cfg=%#v", cfg)
	}
	if cfg.Model.Name != "claude-sonnet-4-5-20250929" || cfg.Model.MaxTokens != 16000 {
		t.Fatalf("model=%#v", cfg.Model)
	}
	if cfg.Dataset.Name != "gpqa_diamond" || cfg.Paths.Checkpoint != "out/cp.json" {
		t.Fatalf("cfg=%#v", cfg)
	}
	// Unset values still default.
	if cfg.API.RetryDelay != 5*time.Second || cfg.Paths.LogDir != "logs" {
		t.Fatalf("defaults not applied: %#v", cfg)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected error for explicit missing path")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("err=%v", err)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("XAI_API_KEY", "xk")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "")

	if key, err := APIKey("grok"); err != nil || key != "xk" {
		t.Fatalf("grok key=%q err=%v", key, err)
	}
	if key, err := APIKey("xai"); err != nil || key != "xk" {
		t.Fatalf("xai key=%q err=%v", key, err)
	}

	if _, err := APIKey("claude"); err == nil {
		t.Fatalf("claude without key: expected error")
	}
	t.Setenv("ANTHROPIC_AUTH_TOKEN", "at")
	if key, err := APIKey("claude"); err != nil || key != "at" {
		t.Fatalf("claude key=%q err=%v", key, err)
	}
	t.Setenv("ANTHROPIC_API_KEY", "ak")
	if key, err := APIKey("anthropic"); err != nil || key != "ak" {
		t.Fatalf("anthropic key=%q err=%v", key, err)
	}

	t.Setenv("XAI_API_KEY", "")
	if _, err := APIKey("grok"); err == nil || !strings.Contains(err.Error(), "XAI_API_KEY") {
		t.Fatalf("err=%v", err)
	}

	if _, err := APIKey("gemini"); err == nil {
		t.Fatalf("unknown provider: expected error")
	}
}
