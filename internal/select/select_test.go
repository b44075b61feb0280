package selecter

import (
	"testing"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

func rowsWithIDs(ids ...string) []registry.Row {
	out := make([]registry.Row, len(ids))
	for i, id := range ids {
		if id != "-" {
			out[i].NIPT = registry.StrPtr(id)
		}
		out[i].Keyword = "kw"
	}
	return out
}

func TestPlan_CapCountsAttempts(t *testing.T) {
	rows := rowsWithIDs("A", "B", "C", "D", "E")
	got := Plan(rows, Options{MaxTotal: 2})
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected first two rows, got %v", got)
	}
}

func TestPlan_SkipsMissingIdentifiers(t *testing.T) {
	rows := rowsWithIDs("-", "  ", "A", "-", "B", "C")
	got := Plan(rows, Options{MaxTotal: 2})
	if len(got) != 2 || got[0] != 2 || got[1] != 4 {
		t.Fatalf("expected rows 2 and 4, got %v", got)
	}
}

func TestPlan_ZeroCap(t *testing.T) {
	if got := Plan(rowsWithIDs("A", "B"), Options{}); len(got) != 0 {
		t.Fatalf("expected no attempts, got %v", got)
	}
}

func TestPlan_RepeatedIdentifiersEachCount(t *testing.T) {
	rows := rowsWithIDs("A", "A", "B", "A", "C")
	got := Plan(rows, Options{MaxTotal: 3})
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("expected rows 0..2, got %v", got)
	}
}
