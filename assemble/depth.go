package assemble

import "github.com/go-cff/subr/market"

// depthOf computes s's transitive call depth, memoized in cache: a
// flattened callee is transparent and contributes its own callees'
// depth unchanged; a placed callee contributes one more than its own
// depth.
func depthOf(s *market.Substring, cache map[*market.Substring]int) int {
	if d, ok := cache[s]; ok {
		return d
	}
	cache[s] = 0 // breaks any accidental cycle defensively
	max := 0
	for _, cs := range s.Encoding {
		if d := depthOf(cs.Sub, cache); d > max {
			max = d
		}
	}
	d := max
	if !s.Flatten {
		d = max + 1
	}
	cache[s] = d
	return d
}

// removeDemoted compacts table in place, dropping and flattening any
// substring whose depth exceeds the nest limit.
func removeDemoted(table []*market.Substring, opts Options) []*market.Substring {
	out := table[:0]
	for _, s := range table {
		if s.MaxCallDepth > opts.SubrNestLimit {
			s.Flatten = true
			s.Global = false
			continue
		}
		out = append(out, s)
	}
	return out
}

// applyDepthControl computes MaxCallDepth for every placed substring
// and demotes anything too deep to Flatten. A single pass suffices: a
// demoted substring only ever overestimated its ancestors' depth
// (since it's now transparent rather than a +1 hop), so demotion can
// only make the true picture shallower than what was already checked.
func applyDepthControl(globals *[]*market.Substring, locals [][]*market.Substring, opts Options) {
	cache := make(map[*market.Substring]int)

	all := append([]*market.Substring{}, *globals...)
	for _, l := range locals {
		all = append(all, l...)
	}
	for _, s := range all {
		s.MaxCallDepth = depthOf(s, cache)
	}

	*globals = removeDemoted(*globals, opts)
	for i := range locals {
		locals[i] = removeDemoted(locals[i], opts)
	}
}
