package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "WORKER_COUNT", "MAX_QUEUE_SIZE", "JOB_TTL", "PATHSTORE_URL", "STATS_WINDOW"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port %q, got %q", "8090", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 || cfg.MaxRetries != 3 {
		t.Errorf("unexpected pool defaults: %+v", cfg)
	}
	if cfg.JobTTL != time.Hour || cfg.StatsWindow != time.Hour {
		t.Errorf("unexpected durations: ttl=%v window=%v", cfg.JobTTL, cfg.StatsWindow)
	}
	if cfg.StoreEnabled() {
		t.Error("expected storage disabled without PATHSTORE_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("PATHSTORE_URL", "http://store")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port %q, got %q", "9000", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected invalid worker count to fall back to 4, got %d", cfg.WorkerCount)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("expected 30m, got %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if !cfg.StoreEnabled() {
		t.Error("expected storage enabled")
	}
}

func TestValidate(t *testing.T) {
	labels := filepath.Join(t.TempDir(), "labels.yaml")
	if err := os.WriteFile(labels, []byte("labels: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing api key", Config{}, true},
		{"minimal", Config{APIKey: "k"}, false},
		{"store without key", Config{APIKey: "k", PathstoreURL: "http://store"}, true},
		{"store with key", Config{APIKey: "k", PathstoreURL: "http://store", PathstoreAPIKey: "p"}, false},
		{"missing labels file", Config{APIKey: "k", LabelsFile: filepath.Join(t.TempDir(), "nope.yaml")}, true},
		{"labels file", Config{APIKey: "k", LabelsFile: labels}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
