package app

import (
	"strings"
	"testing"
)

func TestParseKeywords(t *testing.T) {
	got := ParseKeywords("gaming\r\n\n  berber  \n\t\ncall center")
	want := []string{"gaming", "berber", "call center"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q", got)
	}
	if len(ParseKeywords(" \n ")) != 0 {
		t.Fatal("blank text should yield no keywords")
	}
}

func TestKeywordsOrDefault(t *testing.T) {
	if got := KeywordsOrDefault([]string{"x"}); len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	got := KeywordsOrDefault(nil)
	if len(got) != len(DefaultKeywords) || got[0] != "gaming" {
		t.Fatalf("expected default list, got %d", len(got))
	}
	got[0] = "changed"
	if DefaultKeywords[0] != "gaming" {
		t.Fatal("default list must not be aliased")
	}
}

func TestKeywordPreview(t *testing.T) {
	p := KeywordPreview(DefaultKeywordPreview)
	if !strings.HasPrefix(p, "gaming, sallë gaming") || !strings.HasSuffix(p, ", …") {
		t.Fatalf("preview %q", p)
	}
	if n := strings.Count(p, ", "); n != DefaultKeywordPreview {
		t.Fatalf("expected %d separators, got %d", DefaultKeywordPreview, n)
	}
	if strings.HasSuffix(KeywordPreview(0), "…") {
		t.Fatal("full preview should not be truncated")
	}
}
