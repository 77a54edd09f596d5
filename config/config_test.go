package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadDefaults verifies the embedded defaults parse and produce the
// derived layouts.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.KeyBits != 8 || cfg.Layout.OffsetBits != 8 {
		t.Errorf("layout bits = %d/%d, want 8/8", cfg.Layout.KeyBits, cfg.Layout.OffsetBits)
	}
	if cfg.Grid.Cols != 16 || cfg.Grid.Rows != 16 {
		t.Errorf("grid = %dx%d, want 16x16", cfg.Grid.Cols, cfg.Grid.Rows)
	}

	d := cfg.Derived
	if got := d.KeyLayout.String(); got != "u8.0" {
		t.Errorf("key layout = %s, want u8.0", got)
	}
	if got := d.OffsetLayout.String(); got != "u0.8" {
		t.Errorf("offset layout = %s, want u0.8", got)
	}
	if got := d.WorldLayout.String(); got != "u8.8" {
		t.Errorf("world layout = %s, want u8.8", got)
	}
	if got := d.VelocityLayout.String(); got != "s7.8" {
		t.Errorf("velocity layout = %s, want s7.8", got)
	}
	// Defaults pick damping exactly representable in the velocity layout.
	if got := d.Damping.Float64(); got != cfg.Physics.Damping {
		t.Errorf("damping = %g, want %g", got, cfg.Physics.Damping)
	}
}

// TestLoadMerge verifies that a user file overrides only the fields it
// names.
func TestLoadMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "grid:\n  cols: 8\n  rows: 8\npopulation:\n  count: 32\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Grid.Cols != 8 || cfg.Grid.Rows != 8 {
		t.Errorf("grid = %dx%d, want 8x8", cfg.Grid.Cols, cfg.Grid.Rows)
	}
	if cfg.Population.Count != 32 {
		t.Errorf("count = %d, want 32", cfg.Population.Count)
	}
	// Untouched fields keep their defaults.
	if cfg.Layout.KeyBits != 8 {
		t.Errorf("key_bits = %d, want default 8", cfg.Layout.KeyBits)
	}
	if cfg.Physics.Cutoff != 0.75 {
		t.Errorf("cutoff = %g, want default 0.75", cfg.Physics.Cutoff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestValidation exercises computeDerived's parameter checks.
func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "zero offset bits", yaml: "layout:\n  offset_bits: 0\n"},
		{name: "world layout overflows word", yaml: "layout:\n  key_bits: 60\n"},
		{name: "grid not power of two", yaml: "grid:\n  cols: 15\n"},
		{name: "grid exceeds key range", yaml: "layout:\n  key_bits: 2\ngrid:\n  cols: 16\n  rows: 16\n"},
		{name: "grid zero", yaml: "grid:\n  cols: 0\n"},
		{name: "population zero", yaml: "population:\n  count: 0\n"},
		{name: "cutoff above cell", yaml: "physics:\n  cutoff: 1.5\n"},
		{name: "cutoff zero", yaml: "physics:\n  cutoff: 0\n"},
		{name: "damping one", yaml: "physics:\n  damping: 1\n"},
		{name: "damping negative", yaml: "physics:\n  damping: -0.5\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestWriteYAMLRoundTrip verifies a written config loads back identically.
func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.Cols = 32

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if loaded.Grid.Cols != 32 {
		t.Errorf("cols = %d, want 32", loaded.Grid.Cols)
	}
	if loaded.Physics.Damping != cfg.Physics.Damping {
		t.Errorf("damping = %g, want %g", loaded.Physics.Damping, cfg.Physics.Damping)
	}
}
