package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempSources(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeTempSources(t, `
max_retained: 50
sources:
  - url: https://example.com/rss
    source: Example
    max: 3
  - url: https://other.example/feed
    source: Other
`)

	cfg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	if cfg.MaxRetained != 50 {
		t.Errorf("MaxRetained = %d, want 50", cfg.MaxRetained)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].MaxItems != 3 {
		t.Errorf("explicit max not kept: %d", cfg.Sources[0].MaxItems)
	}
	if cfg.Sources[1].MaxItems != 2 {
		t.Errorf("missing max should default to 2, got %d", cfg.Sources[1].MaxItems)
	}
}

func TestLoadSources_DefaultsMaxRetained(t *testing.T) {
	path := writeTempSources(t, `
sources:
  - url: https://example.com/rss
    source: Example
`)
	cfg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources failed: %v", err)
	}
	if cfg.MaxRetained != DefaultMaxRetained {
		t.Errorf("MaxRetained = %d, want %d", cfg.MaxRetained, DefaultMaxRetained)
	}
}

func TestLoadSources_RejectsBadEndpoint(t *testing.T) {
	path := writeTempSources(t, `
sources:
  - url: ftp://example.com/rss
    source: Example
`)
	if _, err := LoadSources(path); err == nil || !strings.Contains(err.Error(), "http") {
		t.Errorf("expected scheme error, got %v", err)
	}
}

func TestLoadSources_RejectsMissingLabel(t *testing.T) {
	path := writeTempSources(t, `
sources:
  - url: https://example.com/rss
`)
	if _, err := LoadSources(path); err == nil {
		t.Error("expected missing-label error")
	}
}

func TestDefaultSources(t *testing.T) {
	sources := DefaultSources()
	if len(sources) == 0 {
		t.Fatal("default source table is empty")
	}
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if !strings.HasPrefix(src.Endpoint, "http") {
			t.Errorf("source %s: bad endpoint %q", src.Label, src.Endpoint)
		}
		if src.MaxItems < 1 || src.MaxItems > 3 {
			t.Errorf("source %s: per-source cap %d out of range", src.Label, src.MaxItems)
		}
		if seen[src.Endpoint] {
			t.Errorf("duplicate endpoint %q", src.Endpoint)
		}
		seen[src.Endpoint] = true
	}
}
