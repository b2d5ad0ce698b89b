package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DB_PATH", "PORT", "PRICEBOOK_PATH", "MARKUP", "LABOR_RATE",
		"CONTINGENCY_PERCENT", "QUOTE_NUMBERS", "NODE_ID", "INTAKE_DIR", "APP_ENV", "COMPANY_NAME"} {
		unsetenv(t, key)
	}

	cfg := Load()
	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort {
		t.Fatalf("db/port = %q/%q", cfg.DBPath, cfg.Port)
	}
	if cfg.Markup != 1.0 || cfg.LaborRate != 65 || cfg.ContingencyPercent != 10 {
		t.Fatalf("pricing defaults = %v/%v/%v", cfg.Markup, cfg.LaborRate, cfg.ContingencyPercent)
	}
	if cfg.QuoteNumbers != "uuid" || cfg.NodeID != 1 {
		t.Fatalf("numbering = %q/%d", cfg.QuoteNumbers, cfg.NodeID)
	}
	if cfg.IntakeDir != "" {
		t.Fatalf("IntakeDir = %q, want disabled", cfg.IntakeDir)
	}
	if !cfg.IsDev() {
		t.Fatal("empty APP_ENV should be dev")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MARKUP", "1.25")
	t.Setenv("LABOR_RATE", "80")
	t.Setenv("CONTINGENCY_PERCENT", "not-a-number")
	t.Setenv("QUOTE_NUMBERS", "snowflake")
	t.Setenv("NODE_ID", "7")
	t.Setenv("APP_ENV", "production")

	cfg := Load()
	if cfg.Markup != 1.25 || cfg.LaborRate != 80 {
		t.Fatalf("markup/labor = %v/%v", cfg.Markup, cfg.LaborRate)
	}
	if cfg.ContingencyPercent != 10 {
		t.Fatalf("bad CONTINGENCY_PERCENT should fall back, got %v", cfg.ContingencyPercent)
	}
	if cfg.QuoteNumbers != "snowflake" || cfg.NodeID != 7 {
		t.Fatalf("numbering = %q/%d", cfg.QuoteNumbers, cfg.NodeID)
	}
	if cfg.IsDev() {
		t.Fatal("production should not be dev")
	}
}

func TestLoadReadsDotEnvInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	unsetenv(t, "LABOR_RATE")
	if err := os.WriteFile(".env", []byte("LABOR_RATE=72.5\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if got := Load().LaborRate; got != 72.5 {
		t.Fatalf("LaborRate = %v, want 72.5", got)
	}
}
