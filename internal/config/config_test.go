package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFillDefaults(t *testing.T) {
	cfg := Config{}.FillDefaults()

	if cfg.MaxGrammarSizeMb != 10 {
		t.Errorf("MaxGrammarSizeMb = %d, want 10", cfg.MaxGrammarSizeMb)
	}
	if cfg.MaxInputSizeMb != 1 {
		t.Errorf("MaxInputSizeMb = %d, want 1", cfg.MaxInputSizeMb)
	}
	if cfg.CompilationTimeoutSeconds != 30 {
		t.Errorf("CompilationTimeoutSeconds = %d, want 30", cfg.CompilationTimeoutSeconds)
	}
	if cfg.ParseTimeoutSeconds != 5 {
		t.Errorf("ParseTimeoutSeconds = %d, want 5", cfg.ParseTimeoutSeconds)
	}
	if cfg.MaxImportDepth != 10 {
		t.Errorf("MaxImportDepth = %d, want 10", cfg.MaxImportDepth)
	}
	if cfg.Cache.MaxSize != 256 {
		t.Errorf("Cache.MaxSize = %d, want 256", cfg.Cache.MaxSize)
	}
	if cfg.Cache.TTLSeconds != 600 {
		t.Errorf("Cache.TTLSeconds = %d, want 600", cfg.Cache.TTLSeconds)
	}
	if !cfg.Cache.IsEnabled() {
		t.Error("Cache.IsEnabled() = false, want true when unset")
	}
}

func TestFillDefaultsPreservesExplicitFalse(t *testing.T) {
	disabled := false
	cfg := Config{Cache: Cache{Enabled: &disabled}}.FillDefaults()
	if cfg.Cache.IsEnabled() {
		t.Error("explicit enabled: false must survive FillDefaults")
	}
}

func TestFillDefaultsPreservesNonZero(t *testing.T) {
	cfg := Config{MaxGrammarSizeMb: 42}.FillDefaults()
	if cfg.MaxGrammarSizeMb != 42 {
		t.Errorf("MaxGrammarSizeMb = %d, want 42 (explicit value must survive)", cfg.MaxGrammarSizeMb)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	cases := []Config{
		{MaxGrammarSizeMb: -1},
		{MaxInputSizeMb: -1},
		{MaxImportDepth: -1},
		{Cache: Cache{MaxSize: -1}},
	}
	for _, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", cfg)
		}
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Config{}.FillDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaulted config = %v, want nil", err)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load(missing) = %v, want nil error", err)
	}
	if cfg.MaxGrammarSizeMb != 0 || cfg.Cache.MaxSize != 0 || cfg.Cache.Enabled != nil {
		t.Errorf("Load(missing) = %+v, want zero Config", cfg)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "antlrlens.yaml")
	content := "maxGrammarSizeMb: 20\ncache:\n  maxSize: 100\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxGrammarSizeMb != 20 {
		t.Errorf("MaxGrammarSizeMb = %d, want 20", cfg.MaxGrammarSizeMb)
	}
	if cfg.Cache.MaxSize != 100 {
		t.Errorf("Cache.MaxSize = %d, want 100", cfg.Cache.MaxSize)
	}
	if cfg.Cache.IsEnabled() {
		t.Error("Cache.IsEnabled() = true, want false (explicitly disabled in YAML)")
	}
}
