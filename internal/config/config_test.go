package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxUpwardLevels != 6 || cfg.IncludeDepth != 2 {
		t.Errorf("cfg = %+v, want shipped defaults", cfg)
	}
}

func TestLoadOverlaysAndClampsBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.yaml")
	if err := os.WriteFile(path, []byte("include_depth: -1\nmax_upward_levels: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxUpwardLevels != 3 {
		t.Errorf("max_upward_levels = %d, want 3", cfg.MaxUpwardLevels)
	}
	if cfg.IncludeDepth != 2 {
		t.Errorf("include_depth = %d, want default restored for non-positive value", cfg.IncludeDepth)
	}
}

func TestDenylistLowercasesEntries(t *testing.T) {
	cfg := Config{DenylistSelectors: []string{"Active", "HIDDEN", "custom"}}
	deny := cfg.Denylist()

	for _, want := range []string{"active", "hidden", "custom"} {
		if _, ok := deny[want]; !ok {
			t.Errorf("denylist = %v, want %q present", deny, want)
		}
	}
	if _, ok := deny["Active"]; ok {
		t.Error("denylist must not keep the mixed-case spelling")
	}
}
