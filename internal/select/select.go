// Package selecter decides which rows of a run get a contact fetch attempt.
package selecter

import (
	"github.com/hyperifyio/qkbleads/internal/registry"
)

// Options configures selection constraints.
type Options struct {
	// MaxTotal caps the number of fetch attempts in one run. Zero or less
	// means no attempts at all.
	MaxTotal int
}

// Plan returns the indexes of rows that get a fetch attempt, in row order.
// Rows without an identifier are never selected and do not count. Once
// MaxTotal attempts are planned every later row is left out.
func Plan(rows []registry.Row, opt Options) []int {
	if opt.MaxTotal <= 0 {
		return nil
	}
	out := make([]int, 0, min(opt.MaxTotal, len(rows)))
	for i, r := range rows {
		if len(out) >= opt.MaxTotal {
			break
		}
		if r.Identifier() == "" {
			continue
		}
		out = append(out, i)
	}
	return out
}
