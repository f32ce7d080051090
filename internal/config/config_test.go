package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	cfg := Default()
	if cfg.DefaultScope != 3 {
		t.Errorf("DefaultScope = %d, want 3", cfg.DefaultScope)
	}
	if cfg.DefaultSteps != 10 {
		t.Errorf("DefaultSteps = %d, want 10", cfg.DefaultSteps)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadToleratesMissingFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.DefaultScope != want.DefaultScope || cfg.DefaultSteps != want.DefaultSteps || cfg.LogLevel != want.LogLevel {
		t.Errorf("expected defaults when no files exist, got %+v", cfg)
	}
}

func TestProjectOverridesUser(t *testing.T) {
	userDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userDir)
	if err := os.MkdirAll(filepath.Join(userDir, "alloysat"), 0755); err != nil {
		t.Fatal(err)
	}
	userYAML := "defaultScope: 4\nlogging:\n  level: warn\n"
	if err := os.WriteFile(filepath.Join(userDir, "alloysat", "config.yaml"), []byte(userYAML), 0644); err != nil {
		t.Fatal(err)
	}

	projectDir := t.TempDir()
	projectYAML := "defaultScope: 8\n"
	if err := os.WriteFile(ProjectPath(projectDir), []byte(projectYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultScope != 8 {
		t.Errorf("DefaultScope = %d, want project's 8", cfg.DefaultScope)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want user's warn (not overridden by project)", cfg.LogLevel)
	}
}

func TestSolverDecayAppliesToBothFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "alloysat"), 0755); err != nil {
		t.Fatal(err)
	}
	yamlSrc := "solver:\n  decay: 0.8\n"
	if err := os.WriteFile(filepath.Join(dir, "alloysat", "config.yaml"), []byte(yamlSrc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Solver.VarDecay != 0.8 || cfg.Solver.ClauseDecay != 0.8 {
		t.Errorf("decay not applied to both fields: %+v", cfg.Solver)
	}
}
