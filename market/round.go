package market

import (
	"github.com/go-cff/subr/candidate"
	"github.com/go-cff/subr/internal/pmap"
)

// Options configures a marketplace run (§4.4 and the nrounds/alpha/k/
// call_cost/subr_overhead/test_mode/single_process/processes/
// chunk_ratio rows of §6).
type Options struct {
	NRounds      int
	Alpha        float64
	K            float64
	CallCost     int
	SubrOverhead int
	TestMode     bool

	SingleProcess bool
	Processes     int
	ChunkRatio    float64
}

// DefaultOptions returns the specification's defaults.
func DefaultOptions() Options {
	return Options{
		NRounds:      4,
		Alpha:        0.1,
		K:            0.1,
		CallCost:     5,
		SubrOverhead: 3,
		Processes:    12,
		ChunkRatio:   0.1,
	}
}

func (o Options) pmapOptions() pmap.Options {
	return pmap.Options{SingleProcess: o.SingleProcess, Processes: o.Processes, ChunkRatio: o.ChunkRatio}
}

// saving is the byte-savings heuristic of §3/§4.3, lifted to the float
// adjusted_cost the marketplace tracks round to round.
func saving(cost float64, usages, callCost, subrOverhead int) float64 {
	a := float64(usages)
	return cost*a - cost - float64(callCost)*a - float64(subrOverhead)
}

// Result is the marketplace's output after its final round: the
// surviving substrings with final Usages/AdjustedCost/Price/Encoding,
// and the tentative per-glyph encodings computed in the last round.
type Result struct {
	Substrings     []*Substring
	GlyphEncodings [][]CallSite
}

// Run executes opts.NRounds marketplace rounds over corpus, starting
// from the candidates CandidateExtractor found, and returns the
// survivors plus the final round's glyph encodings for the assembler.
//
// Pruning (round step 5) is skipped in the last two rounds and under
// test mode; in those rounds a substring's final AdjustedCost still
// reflects its own most recent self-encoding, which the assembler's
// own survivor filter compares against TrueCost rather than
// AdjustedCost (an explicit, documented resolution of the source's
// ambiguous true_cost bookkeeping across the tail rounds).
func Run(corpus [][]int32, cands []candidate.Candidate, costOf func(int32) int, opts Options) Result {
	subs := newArena(cands)
	var glyphEnc [][]CallSite
	pOpts := opts.pmapOptions()

	for round := 0; round < opts.NRounds; round++ {
		for _, s := range subs {
			marginal := s.AdjustedCost / (float64(s.Usages) + opts.K)
			s.Price = opts.Alpha*marginal + (1-opts.Alpha)*s.Price
		}
		table := BuildTable(subs, corpus)

		pmap.Each(len(subs), pOpts, func(i int) {
			s := subs[i]
			enc, cost := Optimize(s.Value(corpus), table, costOf, s.Index)
			s.Encoding = enc
			s.AdjustedCost = cost
		})

		glyphEnc = make([][]CallSite, len(corpus))
		pmap.Each(len(corpus), pOpts, func(g int) {
			enc, _ := Optimize(corpus[g], table, costOf, -1)
			glyphEnc[g] = enc
		})

		for _, s := range subs {
			s.Usages = 0
		}
		for _, s := range subs {
			for _, cs := range s.Encoding {
				cs.Sub.Usages++
			}
		}
		for _, enc := range glyphEnc {
			for _, cs := range enc {
				cs.Sub.Usages++
			}
		}

		if !opts.TestMode && round < opts.NRounds-2 {
			subs = prune(subs, opts)
		}
	}

	return Result{Substrings: subs, GlyphEncodings: glyphEnc}
}

// prune removes every substring whose current saving is non-positive,
// redistributing its usages to its own callees first (§4.4 step 5),
// then reassigns Index over the survivors so the next round's table
// keys stay dense.
func prune(subs []*Substring, opts Options) []*Substring {
	keep := make([]*Substring, 0, len(subs))
	for _, s := range subs {
		if saving(s.AdjustedCost, s.Usages, opts.CallCost, opts.SubrOverhead) > 0 {
			keep = append(keep, s)
			continue
		}
		for _, cs := range s.Encoding {
			cs.Sub.Usages += s.Usages - 1
		}
	}
	for i, s := range keep {
		s.Index = i
	}
	return keep
}
