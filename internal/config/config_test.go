package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/nutri/internal/food"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Goals != food.DefaultGoals() {
		t.Errorf("Goals = %+v, want defaults", cfg.Goals)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if len(cfg.Reminders) != 3 {
		t.Errorf("Reminders = %d, want 3", len(cfg.Reminders))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config.yaml", `
goals:
  kcal: 2500
  protein_g: 140
timezone: America/New_York
reminders:
  - name: recap
    cron: "30 22 * * *"
    kind: recap
notify:
  backend: none
web:
  enabled: true
  port: 9000
`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := food.Goals{Kcal: 2500, ProteinG: 140, FatG: 90, CarbG: 400}
	if cfg.Goals != want {
		t.Errorf("Goals = %+v, want %+v (unset goals keep defaults)", cfg.Goals, want)
	}
	if cfg.Timezone != "America/New_York" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if len(cfg.Reminders) != 1 || cfg.Reminders[0].Cron != "30 22 * * *" {
		t.Errorf("Reminders = %+v, want the file list only", cfg.Reminders)
	}
	if cfg.Notify.Backend != BackendNone {
		t.Errorf("Backend = %q", cfg.Notify.Backend)
	}
	if !cfg.Web.Enabled || cfg.Web.Addr() != "127.0.0.1:9000" {
		t.Errorf("Web = %+v", cfg.Web)
	}
}

func TestLoad_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config.json", `{"goals": {"kcal": 2000}, "db_max_open_conns": 1}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Goals.Kcal != 2000 || cfg.DBMaxOpenConns != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_YAMLWinsOverJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config.yaml", "log_level: debug\n")
	writeFile(t, tmpDir, "config.json", `{"log_level": "error"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config.json", `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "config.yaml", "goals:\n  kcal: 2500\ndisabled_tools: [food_add]\n")

	t.Setenv("NUTRI_GOAL_KCAL", "2800")
	t.Setenv("NUTRI_GOAL_PROTEIN", "150,5")
	t.Setenv("NUTRI_GOAL_FAT", "not-a-number")
	t.Setenv("NUTRI_TIMEZONE", "UTC")
	t.Setenv("NUTRI_WEB_ENABLED", "true")
	t.Setenv("NUTRI_WEB_PORT", "8080")
	t.Setenv("NUTRI_DISABLED_TOOLS", "food_undo, food_add")

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Goals.Kcal != 2800 || cfg.Goals.ProteinG != 150.5 || cfg.Goals.FatG != 90 {
		t.Errorf("Goals = %+v", cfg.Goals)
	}
	if cfg.Timezone != "UTC" || !cfg.Web.Enabled || cfg.Web.Port != 8080 {
		t.Errorf("cfg = %+v", cfg)
	}
	if strings.Join(cfg.DisabledTools, ",") != "food_add,food_undo" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, ".env", "NUTRI_TEST_DOTENV=from-file\nNUTRI_TEST_PRESET=from-file\n")

	t.Setenv("NUTRI_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("NUTRI_TEST_DOTENV") })

	if err := LoadDotEnv(filepath.Join(tmpDir, "missing.env"), filepath.Join(tmpDir, ".env")); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("NUTRI_TEST_DOTENV"); got != "from-file" {
		t.Errorf("NUTRI_TEST_DOTENV = %q", got)
	}
	if got := os.Getenv("NUTRI_TEST_PRESET"); got != "from-env" {
		t.Errorf("NUTRI_TEST_PRESET = %q, existing variables must win", got)
	}
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{
		Goals:         food.Goals{CarbG: 300},
		DisabledTools: []string{" food_add ", "food_add"},
		Reminders:     []Reminder{},
	}

	got := Merge(base, overlay)
	if got.Goals.CarbG != 300 || got.Goals.Kcal != 3100 {
		t.Errorf("Goals = %+v", got.Goals)
	}
	if len(got.DisabledTools) != 1 || got.DisabledTools[0] != "food_add" {
		t.Errorf("DisabledTools = %v", got.DisabledTools)
	}
	if len(got.Reminders) != 0 {
		t.Errorf("an explicit empty reminder list disables reminders, got %v", got.Reminders)
	}
	if got.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q", got.Timezone)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Goals.ProteinG = 0
	cfg.Timezone = "Mars/Olympus"
	cfg.RollCron = "every midnight"
	cfg.Reminders = append(cfg.Reminders, Reminder{Name: "brunch", Cron: "0 11 * * 0", Kind: "brunch"})
	cfg.Notify = NotifyConfig{Backend: BackendAMQP, AMQPURL: "http://localhost"}
	cfg.Web = WebConfig{Enabled: true, Port: 0}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	msg := err.Error()
	for _, want := range []string{
		"goal protein_g must be positive",
		"invalid timezone",
		"invalid roll_cron",
		`reminder "brunch": unknown kind`,
		"invalid AMQP URL scheme",
		"AMQP exchange name cannot be empty",
		"invalid web port 0",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Validate() error missing %q:\n%s", want, msg)
		}
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notify.Backend = "pigeon"

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown notify backend") {
		t.Errorf("Validate() error = %v", err)
	}
}
