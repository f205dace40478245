package assemble

import (
	"sort"

	"github.com/go-cff/subr/market"
)

// bias returns the subr bias β for a table of n entries (Glossary:
// "Subr bias").
func bias(n int) int {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}

type win struct{ lo, hi int }

// clipConcat concatenates the windows of table named in wins, clipping
// each to table's actual length and skipping empty/out-of-range ones.
func clipConcat(table []*market.Substring, wins []win) []*market.Substring {
	out := make([]*market.Substring, 0, len(table))
	n := len(table)
	for _, w := range wins {
		lo, hi := w.lo, w.hi
		if lo > n {
			lo = n
		}
		if hi > n {
			hi = n
		}
		if lo < hi {
			out = append(out, table[lo:hi]...)
		}
	}
	return out
}

// reorderTable sorts table by descending usages, then — for β=1131 or
// β=32768 — permutes fixed windows of that order (§4.5 step 5) so the
// most-called subrs land at positions with the cheapest call-operand
// encoding (for β=1131 the top 216 move to positions 1024..1239). It assigns
// Position over the result and returns β.
func reorderTable(table []*market.Substring) int {
	sort.SliceStable(table, func(i, j int) bool { return table[i].Usages > table[j].Usages })
	beta := bias(len(table))

	var order []*market.Substring
	switch beta {
	case 1131:
		order = clipConcat(table, []win{{216, 1240}, {0, 216}, {1240, len(table)}})
	case 32768:
		order = clipConcat(table, []win{{2264, 33900}, {216, 1240}, {0, 216}, {1240, 2264}, {33900, len(table)}})
	default:
		order = table
	}

	for i, s := range order {
		s.Position = i
	}
	copy(table, order)
	return beta
}
