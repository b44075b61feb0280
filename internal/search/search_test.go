package search

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperifyio/qkbleads/internal/fetch"
	"github.com/hyperifyio/qkbleads/internal/parse"
)

func TestPayload_HasPlaceholdersAndFilters(t *testing.T) {
	v := Payload(Query{Keyword: "gaming", City: "Tiranë", Region: "Tiranë"})
	for _, f := range placeholderFields {
		vals, ok := v[f]
		if !ok || len(vals) != 1 || vals[0] != "" {
			t.Fatalf("placeholder %s not sent empty: %v", f, vals)
		}
	}
	if v.Get("sektoriIVeprimtarise") != "gaming" || v.Get("qyteti") != "Tiranë" || v.Get("qarku") != "Tiranë" {
		t.Fatalf("filters not set: %v", v)
	}
	if v.Get("orderColumn") != "0" || v.Get("orderDir") != "asc" {
		t.Fatalf("ordering fields missing: %v", v)
	}
	if _, ok := Payload(Query{Keyword: "x"})["qarku"]; !ok {
		t.Fatalf("region must be sent even when empty")
	}
}

func TestQKB_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("sektoriIVeprimtarise") != "gaming" {
			t.Errorf("keyword not posted: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = w.Write([]byte(`<html><script>var rows = JSON.parse("[{\"nipti\":\"K12345678A\"}]");</script></html>`))
	}))
	defer srv.Close()

	p := &QKB{URL: srv.URL, Client: &fetch.Client{MaxAttempts: 1}}
	recs, err := p.Search(context.Background(), Query{Keyword: "gaming", City: "Tiranë"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 1 || recs[0]["nipti"] != "K12345678A" {
		t.Fatalf("unexpected records: %v", recs)
	}
}

func TestQKB_SearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer srv.Close()

	p := &QKB{URL: srv.URL + "/page", Client: &fetch.Client{MaxAttempts: 1}}
	if _, err := p.Search(context.Background(), Query{Keyword: "x"}); !errors.Is(err, parse.ErrUnexpectedShape) {
		t.Fatalf("expected unexpected shape, got %v", err)
	}
	p.URL = srv.URL + "/down"
	var se *fetch.StatusError
	if _, err := p.Search(context.Background(), Query{Keyword: "x"}); !errors.As(err, &se) {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := (&QKB{Client: &fetch.Client{}}).Search(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error without url")
	}
}

func TestFileProvider_FiltersBySector(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "fixture.json")
	body := `{"data":[
		{"nipti":"A1","sektoriIVeprimtarise":"Gaming dhe argetim"},
		{"nipti":"B2","sektoriIVeprimtarise":"Ndertim"},
		{"nipti":"C3"}
	]}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	fp := &FileProvider{Path: p}
	recs, err := fp.Search(context.Background(), Query{Keyword: "gaming"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 || recs[0]["nipti"] != "A1" || recs[1]["nipti"] != "C3" {
		t.Fatalf("unexpected records: %v", recs)
	}
	all, err := fp.Search(context.Background(), Query{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all records, got %v %v", all, err)
	}
	if _, err := (&FileProvider{}).Search(context.Background(), Query{}); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
