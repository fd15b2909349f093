package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"docuscore-backend/internal/shared/telemetry"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "OBJECT_STORE", "CONNECTIVITY_MODE", "ANALYSIS_ENHANCED_DELAY", "EXPORT_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %s", cfg.Env)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %s", cfg.ObjectStoreType)
	}
	if cfg.ConnectivityMode != "auto" {
		t.Fatalf("expected auto connectivity, got %s", cfg.ConnectivityMode)
	}
	if cfg.EnhancedDelay != 0 {
		t.Fatalf("expected no enhanced delay, got %s", cfg.EnhancedDelay)
	}
	if cfg.ExportFormat != "json" {
		t.Fatalf("expected json export, got %s", cfg.ExportFormat)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CONNECTIVITY_MODE", "Offline")
	t.Setenv("ANALYSIS_ENHANCED_DELAY", "1500ms")
	t.Setenv("EXPORT_FORMAT", "yml")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", " http://a.test , ,http://b.test")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %s", cfg.Env)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %s", cfg.ObjectStoreType)
	}
	if cfg.ConnectivityMode != "offline" {
		t.Fatalf("expected offline, got %s", cfg.ConnectivityMode)
	}
	if cfg.EnhancedDelay != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s delay, got %s", cfg.EnhancedDelay)
	}
	if cfg.ExportFormat != "yaml" {
		t.Fatalf("expected yaml, got %s", cfg.ExportFormat)
	}
	if cfg.RateLimitBurst != 20 {
		t.Fatalf("expected invalid burst to fall back to 20, got %d", cfg.RateLimitBurst)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
}

func TestInvalidEnvLogsStructuredWarning(t *testing.T) {
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(nil) })
	t.Setenv("ANALYSIS_ENHANCED_DELAY", "soon")

	if got := getEnvDuration("ANALYSIS_ENHANCED_DELAY", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %s", got)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if line["level"] != "warn" || line["msg"] != "config.invalid_env" {
		t.Fatalf("unexpected log line %v", line)
	}
	if line["key"] != "ANALYSIS_ENHANCED_DELAY" || line["kind"] != "duration" {
		t.Fatalf("unexpected fields %v", line)
	}
}

func TestLoadEnvFilesSetsValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nDOCUSCORE_TEST_KEY=\"quoted value\"\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOCUSCORE_TEST_KEY", "")

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("DOCUSCORE_TEST_KEY"); got != "quoted value" {
		t.Fatalf("expected quoted value, got %q", got)
	}
}

func TestLoadEnvFilesKeepsProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOCUSCORE_TEST_KEEP=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DOCUSCORE_TEST_KEEP", "from-env")

	loadEnvFiles(path)

	if got := os.Getenv("DOCUSCORE_TEST_KEEP"); got != "from-env" {
		t.Fatalf("expected process env to win, got %q", got)
	}
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line string
		key  string
		val  string
		ok   bool
	}{
		{line: "PORT=9000", key: "PORT", val: "9000", ok: true},
		{line: "export ENV=prod", key: "ENV", val: "prod", ok: true},
		{line: "EXPORT_FORMAT='yaml'", key: "EXPORT_FORMAT", val: "yaml", ok: true},
		{line: "CONNECTIVITY_MODE=offline # local dev", key: "CONNECTIVITY_MODE", val: "offline", ok: true},
		{line: "EMPTY=", key: "EMPTY", val: "", ok: true},
		{line: "# comment", ok: false},
		{line: "no equals sign", ok: false},
		{line: "BAD KEY=1", ok: false},
	}
	for _, tc := range cases {
		key, val, ok := parseEnvLine(tc.line)
		if ok != tc.ok || key != tc.key || val != tc.val {
			t.Fatalf("parseEnvLine(%q) = %q, %q, %v", tc.line, key, val, ok)
		}
	}
}
