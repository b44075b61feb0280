package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "search.json")
	body := `[
  {"nipti": "K11111111A", "emriISubjektit": "Loja", "sektoriIVeprimtarise": "Gaming lounge"},
  {"nipti": "K22222222B", "emriISubjektit": "Retro", "sektoriIVeprimtarise": "Arcade hall"},
  {"nipti": "K33333333C", "emriISubjektit": "Pa sektor"}
]`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return p
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "qkbleads ") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestScrape_OfflineFixture(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "scrape",
		"--search.file", writeFixture(t),
		"--export.dir", dir,
		"-k", "gaming,arcade",
		"--delay", "0",
		"--dedup=false",
		"--json",
	)
	if err != nil {
		t.Fatalf("scrape: %v\n%s", err, out)
	}
	var summary struct {
		Rows     int    `json:"rows"`
		Keywords int    `json:"keywords"`
		Path     string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out[strings.Index(out, "{"):]), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Keywords != 2 || summary.Rows != 4 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if filepath.Dir(summary.Path) != dir {
		t.Fatalf("export written outside export dir: %s", summary.Path)
	}
	b, err := os.ReadFile(summary.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(b), "K22222222B") {
		t.Fatalf("export missing arcade row:\n%s", b)
	}
}

func TestScrape_CityPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "qkb.yaml")
	if err := os.WriteFile(cfgPath, []byte("run:\n  city: Fier\n  dedup: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	fixture := writeFixture(t)
	t.Setenv("DEFAULT_CITY", "Korçë")

	run := func(extra ...string) string {
		dir := t.TempDir()
		args := append([]string{"scrape", "--config", cfgPath, "--search.file", fixture, "--export.dir", dir, "-k", "gaming", "--delay", "0"}, extra...)
		if out, err := execute(t, args...); err != nil {
			t.Fatalf("scrape: %v\n%s", err, out)
		}
		matches, _ := filepath.Glob(filepath.Join(dir, "qkb_export_*.csv"))
		if len(matches) != 1 {
			t.Fatalf("expected one export, got %v", matches)
		}
		return filepath.Base(matches[0])
	}

	if got := run(); !strings.HasPrefix(got, "qkb_export_Korce_") {
		t.Fatalf("env should override the config file, got %s", got)
	}
	if got := run("--city", "Vlorë"); !strings.HasPrefix(got, "qkb_export_Vlore_") {
		t.Fatalf("flag should override env, got %s", got)
	}
}

func TestScrape_RejectsInvalidInput(t *testing.T) {
	_, err := execute(t, "scrape", "--search.file", writeFixture(t), "--export.dir", t.TempDir(), "-k", "gaming", "--delay", "99")
	if err == nil || !strings.Contains(err.Error(), "delay") {
		t.Fatalf("expected delay validation error, got %v", err)
	}
	_, err = execute(t, "scrape", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected missing config error")
	}
}

func TestKeepAliveTarget(t *testing.T) {
	cases := map[string]string{
		"":                                "",
		"not a url":                       "",
		"https://leads.onrender.com":      "https://leads.onrender.com/healthz",
		"https://leads.onrender.com/":     "https://leads.onrender.com/healthz",
		"https://leads.onrender.com/ping": "https://leads.onrender.com/ping",
		" http://127.0.0.1:8000 ":         "http://127.0.0.1:8000/healthz",
	}
	for in, want := range cases {
		if got := keepAliveTarget(in); got != want {
			t.Fatalf("keepAliveTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
