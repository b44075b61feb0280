package aggregate

import (
	"sort"

	"github.com/hyperifyio/qkbleads/internal/registry"
)

type rowKey struct {
	nipt    string
	null    bool
	keyword string
}

func keyOf(r registry.Row) rowKey {
	id := r.Identifier()
	if id == "" {
		return rowKey{null: true, keyword: r.Keyword}
	}
	return rowKey{nipt: id, keyword: r.Keyword}
}

// MergeAndDedup concatenates per-keyword batches in order and drops repeated
// (identifier, keyword) pairs, keeping the first occurrence. Two rows with no
// identifier and the same keyword count as the same pair.
func MergeAndDedup(groups [][]registry.Row) []registry.Row {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	seen := make(map[rowKey]struct{}, total)
	out := make([]registry.Row, 0, total)
	for _, g := range groups {
		for _, r := range g {
			k := keyOf(r)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// DedupByIdentifier collapses rows sharing an identifier. Rows are first
// stably sorted by identifier then keyword, rows without an identifier last,
// and the first row per identifier is kept. Rows without an identifier are
// all kept since they carry no subject to collapse on.
func DedupByIdentifier(rows []registry.Row) []registry.Row {
	sorted := make([]registry.Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Identifier(), sorted[j].Identifier()
		if (a == "") != (b == "") {
			return b == ""
		}
		if a != b {
			return a < b
		}
		return sorted[i].Keyword < sorted[j].Keyword
	})
	seen := make(map[string]struct{}, len(sorted))
	out := make([]registry.Row, 0, len(sorted))
	for _, r := range sorted {
		if id := r.Identifier(); id != "" {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
