package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"taskdeck/internal/config"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	cfg, err := config.FromYAML([]byte(config.GenerateDefault()))
	if err != nil {
		t.Fatalf("default template: %v", err)
	}
	if cfg.View.Filter != "all" || cfg.View.Sort != "created-desc" {
		t.Fatalf("unexpected view defaults: %+v", cfg.View)
	}
	if cfg.Server.Addr == "" || cfg.Server.BasePath == "" {
		t.Fatalf("unexpected server defaults: %+v", cfg.Server)
	}
	if len(cfg.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cfg.Categories))
	}
}

func TestFromYAMLRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad filter":   "view:\n  filter: urgent\n",
		"bad sort":     "view:\n  sort: random\n",
		"bad category": "categories:\n  garden:\n    description: weeds\n",
		"not yaml":     "view: [unclosed\n",
	}
	for name, doc := range cases {
		if _, err := config.FromYAML([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	if err := os.WriteFile(path, []byte("view:\n  sort: due-date\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.FromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.View.Sort != "due-date" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := config.FromFile(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	workspace := t.TempDir()
	cfg, err := config.LoadOptional(workspace)
	if err != nil || cfg != nil {
		t.Fatalf("missing config should be nil,nil; got %+v, %v", cfg, err)
	}

	path := config.Path(workspace)
	if filepath.Base(path) != "taskdeck.yml" {
		t.Fatalf("unexpected config path %q", path)
	}
	if err := os.WriteFile(path, []byte("view:\n  filter: pending\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = config.LoadOptional(workspace)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil || cfg.View.Filter != "pending" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := config.Load(t.TempDir()); err == nil {
		t.Fatalf("Load should fail when the file is missing")
	}
}
