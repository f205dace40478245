package assemble

import "github.com/go-cff/subr/market"

// FDSelectFn maps a glyph index to its font-dict index in [0, fdLen).
// A nil FDSelectFn means a single-fd font: every glyph maps to 0.
type FDSelectFn func(glyph int) int

func fdOf(fdSelect FDSelectFn, glyph int) int {
	if fdSelect == nil {
		return 0
	}
	return fdSelect(glyph)
}

// markReachable records that s is reachable from fd, then recurses
// into its callees. A (substring, fd) visited set guards against
// revisiting the same pair — unlike the unguarded recursion the source
// uses (safe there only because its call graph is acyclic by
// construction), this stays correct even if that assumption is ever
// violated, and bounds the work to O(substrings * fds).
func markReachable(s *market.Substring, fd int, visited map[*market.Substring]map[int]bool) {
	seen := visited[s]
	if seen == nil {
		seen = make(map[int]bool)
		visited[s] = seen
	}
	if seen[fd] {
		return
	}
	seen[fd] = true
	s.FDIdx[fd] = true
	for _, cs := range s.Encoding {
		markReachable(cs.Sub, fd, visited)
	}
}

// reachability initializes every substring's FDIdx by marking each one
// reached, directly or transitively, from some glyph's encoding.
func reachability(glyphEnc [][]market.CallSite, fdSelect FDSelectFn) {
	visited := make(map[*market.Substring]map[int]bool)
	for g, enc := range glyphEnc {
		fd := fdOf(fdSelect, g)
		for _, cs := range enc {
			markReachable(cs.Sub, fd, visited)
		}
	}
}
