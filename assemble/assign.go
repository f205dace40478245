package assemble

import (
	"sort"

	"github.com/go-cff/subr/market"
)

// insertSorted inserts s into table, keeping it sorted by descending
// Usages. Kept incremental (O(log n) search, O(n) shift) rather than
// resorted after every insertion, because test_call_cost needs the
// table's usage order at each intermediate step of the assignment
// loop, not just its final state.
func insertSorted(table []*market.Substring, s *market.Substring) []*market.Substring {
	i := sort.Search(len(table), func(i int) bool { return table[i].Usages < s.Usages })
	table = append(table, nil)
	copy(table[i+1:], table[i:])
	table[i] = s
	return table
}

// testCallCost estimates, in bytes, the call-operand width cand would
// get if placed into table (already sorted descending by usages),
// approximating where it would land after the final bias-aware
// reorder (§4.5.1).
func testCallCost(cand *market.Substring, table []*market.Substring) int {
	if len(table) >= 2263 && table[2262].Usages >= cand.Usages {
		return 3
	}
	if len(table) >= 215 && table[214].Usages >= cand.Usages {
		return 2
	}
	return 1
}

// assign runs the budgeted placement pass: survivors sorted ascending
// by saving are popped from the tail (best first), and each is routed
// to a global table, one of fdLen local tables, or flattened if no
// table has room.
func assign(survivors []*market.Substring, fdLen int, opts Options) (globals []*market.Substring, locals [][]*market.Substring) {
	sort.SliceStable(survivors, func(i, j int) bool {
		return trueSaving(survivors[i], opts) < trueSaving(survivors[j], opts)
	})
	locals = make([][]*market.Substring, fdLen)

	for i := len(survivors) - 1; i >= 0; i-- {
		s := survivors[i]

		if len(s.FDIdx) != 1 {
			// Multi-fd: must be global.
			if len(globals) >= opts.NSubrsLimit {
				s.Flatten = true
				continue
			}
			s.Global = true
			globals = insertSorted(globals, s)
			continue
		}

		var fd int
		for k := range s.FDIdx {
			fd = k
		}
		globalFull := len(globals) >= opts.NSubrsLimit
		localFull := len(locals[fd]) >= opts.NSubrsLimit
		switch {
		case !globalFull && !localFull:
			gc := testCallCost(s, globals)
			lc := testCallCost(s, locals[fd])
			if gc < lc {
				s.Global = true
				globals = insertSorted(globals, s)
			} else {
				locals[fd] = insertSorted(locals[fd], s)
			}
		case !globalFull:
			s.Global = true
			globals = insertSorted(globals, s)
		case !localFull:
			locals[fd] = insertSorted(locals[fd], s)
		default:
			s.Flatten = true
		}
	}
	return globals, locals
}
