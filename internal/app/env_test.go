package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LaterFileOverrides(t *testing.T) {
	t.Setenv("DEFAULT_CITY", "")
	t.Setenv("MAX_CONTACTS", "")

	dir := t.TempDir()
	first := filepath.Join(dir, ".env")
	second := filepath.Join(dir, ".env.local")
	if err := os.WriteFile(first, []byte("# base\nDEFAULT_CITY=Durrës\nMAX_CONTACTS=10\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("MAX_CONTACTS=25\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := LoadEnvFiles(first, filepath.Join(dir, "missing.env"), "", second); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	if got := os.Getenv("DEFAULT_CITY"); got != "Durrës" {
		t.Fatalf("DEFAULT_CITY=%q", got)
	}
	if got := os.Getenv("MAX_CONTACTS"); got != "25" {
		t.Fatalf("MAX_CONTACTS=%q, want 25", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("QKB_SEARCH_URL", "http://registry.test/search")
	t.Setenv("DEFAULT_CITY", "Shkodër")
	t.Setenv("KEYWORDS", "gaming, berber\n call center ,")
	t.Setenv("SCRAPE_DELAY", "1.5")
	t.Setenv("FETCH_CONTACTS", "po")
	t.Setenv("MAX_CONTACTS", "7")
	t.Setenv("DEDUP", "jo")
	t.Setenv("SEARCH_TIMEOUT", "15s")
	t.Setenv("EXPORT_XLSX", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("KEEPALIVE_URL", "")
	t.Setenv("RENDER_EXTERNAL_URL", "https://leads.example.org")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)

	if cfg.SearchURL != "http://registry.test/search" || cfg.City != "Shkodër" {
		t.Fatalf("string overrides not applied: %+v", cfg)
	}
	want := []string{"gaming", "berber", "call center"}
	if len(cfg.Keywords) != len(want) {
		t.Fatalf("keywords %v", cfg.Keywords)
	}
	for i := range want {
		if cfg.Keywords[i] != want[i] {
			t.Fatalf("keywords %v", cfg.Keywords)
		}
	}
	if cfg.Delay != 1500*time.Millisecond {
		t.Fatalf("delay %v", cfg.Delay)
	}
	if !cfg.Contacts || cfg.MaxContacts != 7 || cfg.Dedup {
		t.Fatalf("run flags %v %d %v", cfg.Contacts, cfg.MaxContacts, cfg.Dedup)
	}
	if cfg.SearchTimeout != 15*time.Second || !cfg.ExportXLSX {
		t.Fatalf("transport/export %v %v", cfg.SearchTimeout, cfg.ExportXLSX)
	}
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("listen %q", cfg.ListenAddr)
	}
	if cfg.KeepAliveURL != "https://leads.example.org" {
		t.Fatalf("keepalive url %q", cfg.KeepAliveURL)
	}
}

func TestApplyEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("SCRAPE_DELAY", "-2")
	t.Setenv("MAX_CONTACTS", "many")
	t.Setenv("DEDUP", "maybe")
	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if cfg.Delay != DefaultDelay || cfg.MaxContacts != DefaultMaxContacts || !cfg.Dedup {
		t.Fatalf("invalid env values should leave defaults: %+v", cfg)
	}
}

func TestParseDelay(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"0.4", 400 * time.Millisecond, true},
		{"2", 2 * time.Second, true},
		{"0", 0, true},
		{"250ms", 250 * time.Millisecond, true},
		{" 1m ", time.Minute, true},
		{"-1", 0, false},
		{"-1s", 0, false},
		{"soon", 0, false},
	}
	for _, c := range cases {
		got, err := ParseDelay(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseDelay(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseDelay(%q) expected error", c.in)
		}
	}
}
