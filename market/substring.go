// Package market implements the iterative "marketplace" subroutinization
// engine: round-based pricing, per-item dynamic-programming re-encoding
// of charstrings and candidate substrings, usage recount, and pruning.
package market

import (
	"github.com/go-cff/subr/candidate"
	"github.com/go-cff/subr/token"
)

// CallSite is one entry of a substring's or glyph's chosen encoding: at
// code index Offset into the original code sequence, a call to Sub begins.
type CallSite struct {
	Offset int
	Sub    *Substring
}

// Substring is a candidate subr: a location (Glyph, Start, Length) into
// the corpus, plus the mutable attributes the marketplace and, later,
// the assembler attach to it. Substrings are arena-allocated; all
// cross-references (in Encoding, and later in the assembler) hold
// pointers into that arena rather than copies, so usage counts and
// positions stay in sync.
type Substring struct {
	Index  int // position in the current arena/table; reassigned on prune
	Glyph  int
	Start  int
	Length int
	Freq   int // initial occurrence count from extraction
	Cost   int // literal sum of per-token costs of Value, never changes

	AdjustedCost float64    // self-encoding cost from the most recent round
	Price        float64    // EMA of AdjustedCost/(Usages+K), what callers pay
	Usages       int        // call sites referencing this substring this round
	Encoding     []CallSite // this substring's own body, broken into literal runs and calls

	// Attached by the assembler.
	Flatten      bool
	Global       bool
	FDIdx        map[int]bool
	Position     int
	MaxCallDepth int
	Program      []token.Token
}

// Value returns the code slice this substring identifies, a reference
// into corpus rather than a copy.
func (s *Substring) Value(corpus [][]int32) []int32 {
	return corpus[s.Glyph][s.Start : s.Start+s.Length]
}

// TrueCost is the substring's un-optimized literal cost: the figure
// the assembler's survivor filter (§4.5 step 2) uses in place of the
// market-adjusted self-encoding cost.
func (s *Substring) TrueCost() float64 { return float64(s.Cost) }

// newArena builds the initial substring pool from extracted
// candidates, in round-0 state: adjusted_cost = price = cost,
// usages = freq (§4.4 "Initial state").
func newArena(cands []candidate.Candidate) []*Substring {
	subs := make([]*Substring, len(cands))
	for i, c := range cands {
		subs[i] = &Substring{
			Index:        i,
			Glyph:        c.Glyph,
			Start:        c.Start,
			Length:       c.Length,
			Freq:         c.Freq,
			Cost:         c.Cost,
			AdjustedCost: float64(c.Cost),
			Price:        float64(c.Cost),
			Usages:       c.Freq,
			FDIdx:        make(map[int]bool),
		}
	}
	return subs
}
