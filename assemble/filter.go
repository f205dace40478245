package assemble

import "github.com/go-cff/subr/market"

// Options configures the assembler (§4.5 and the nsubrs_limit/
// subr_nest_limit/call_cost/subr_overhead rows of §6).
type Options struct {
	NSubrsLimit   int
	SubrNestLimit int
	CallCost      int
	SubrOverhead  int
}

// DefaultOptions returns the specification's defaults.
func DefaultOptions() Options {
	return Options{NSubrsLimit: 65533, SubrNestLimit: 10, CallCost: 5, SubrOverhead: 3}
}

// trueSaving is the byte-savings heuristic evaluated against a
// substring's un-optimized literal cost rather than its market-
// adjusted self-encoding cost — the "true_cost" variant §4.5 step 2
// uses to decide final survivorship.
func trueSaving(s *market.Substring, opts Options) float64 {
	cost := s.TrueCost()
	a := float64(s.Usages)
	return cost*a - cost - float64(opts.CallCost)*a - float64(opts.SubrOverhead)
}

// filterSurvivors keeps s iff it is used, reachable, and still worth
// its overhead; everything else is marked Flatten.
func filterSurvivors(subs []*market.Substring, opts Options) []*market.Substring {
	var out []*market.Substring
	for _, s := range subs {
		if s.Usages > 0 && len(s.FDIdx) > 0 && trueSaving(s, opts) > 0 {
			out = append(out, s)
			continue
		}
		s.Flatten = true
	}
	return out
}
