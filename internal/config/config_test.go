package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "server:\n  port: \"9090\"\nquiz:\n  catalogPath: samples.yaml\n  feedbackDelay: 250ms\nlog:\n  production: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.CatalogPath != "samples.yaml" || !cfg.Log.Production {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if d := Duration(cfg.Quiz.FeedbackDelay, time.Second); d != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", d)
	}
}

func TestDurationFallback(t *testing.T) {
	if d := Duration("", time.Second); d != time.Second {
		t.Fatalf("expected fallback for empty, got %v", d)
	}
	if d := Duration("soon", time.Second); d != time.Second {
		t.Fatalf("expected fallback for invalid, got %v", d)
	}
}
