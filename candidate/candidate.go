// Package candidate walks a suffix/LCP index to enumerate repeated
// substrings (candidate subrs) together with their frequency and
// initial byte savings.
package candidate

import (
	"sort"

	"github.com/go-cff/subr/suffixidx"
)

// Candidate is a repeated substring located by (Glyph, Start, Length)
// against the immutable program corpus.
type Candidate struct {
	Glyph  int
	Start  int
	Length int
	Freq   int
	Cost   int // sum of per-code costs of Value

	rank int // original extraction rank, used only to break sort ties
}

// Value returns the code sequence this candidate identifies.
func (c Candidate) Value(corpus [][]int32) []int32 {
	return corpus[c.Glyph][c.Start : c.Start+c.Length]
}

// Options configures extraction and the savings heuristic (§4.3).
type Options struct {
	MinFreq       int
	CheckPositive bool
	CallCost      int
	SubrOverhead  int
}

// DefaultOptions returns the defaults from the specification.
func DefaultOptions() Options {
	return Options{
		MinFreq:       2,
		CheckPositive: true,
		CallCost:      5,
		SubrOverhead:  3,
	}
}

// Saving computes the byte savings of turning a substring of the
// given cost into a subr called amt times.
func Saving(cost, amt, callCost, subrOverhead int) int {
	return cost*amt - cost - callCost*amt - subrOverhead
}

type frame struct {
	height int
	start  int // rank
}

// Extract walks idx's LCP array with a monotonic stack, emitting one
// candidate per maximal repeated-LCP interval, in stable extraction
// order (by ascending rank).
func Extract(idx *suffixidx.Index, corpus [][]int32, costOf func(code int32) int, opts Options) []Candidate {
	n := len(idx.LCP)
	var out []Candidate
	rank := 0

	stack := []frame{{height: 0, start: 0}}
	emit := func(startRank, length, freqEnd int) {
		if length <= 0 {
			return
		}
		freq := freqEnd - startRank
		if freq < opts.MinFreq {
			return
		}
		loc := idx.Order[startRank]
		cost := 0
		for _, code := range corpus[loc.Glyph][loc.Start : loc.Start+length] {
			cost += costOf(code)
		}
		if opts.CheckPositive {
			if Saving(cost, freq, opts.CallCost, opts.SubrOverhead) <= 0 {
				return
			}
		}
		out = append(out, Candidate{
			Glyph:  loc.Glyph,
			Start:  loc.Start,
			Length: length,
			Freq:   freq,
			Cost:   cost,
			rank:   rank,
		})
		rank++
	}

	for i := 0; i <= n; i++ {
		h := 0
		if i < n {
			h = idx.LCP[i]
		}
		lastPoppedStart := i - 1
		for len(stack) > 1 && stack[len(stack)-1].height > h {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			emit(top.start, top.height, i)
			lastPoppedStart = top.start
		}
		if stack[len(stack)-1].height < h {
			stack = append(stack, frame{height: h, start: lastPoppedStart})
		}
	}

	return out
}

// SortBySavingDesc orders candidates by descending savings (the
// default extractor output order), breaking ties by extraction rank.
func SortBySavingDesc(cands []Candidate, callCost, subrOverhead int) {
	sort.SliceStable(cands, func(i, j int) bool {
		si := Saving(cands[i].Cost, cands[i].Freq, callCost, subrOverhead)
		sj := Saving(cands[j].Cost, cands[j].Freq, callCost, subrOverhead)
		if si != sj {
			return si > sj
		}
		return cands[i].rank < cands[j].rank
	})
}

// SortByLength orders candidates by ascending length, the order used
// by the DP stage when it needs shorter substrings resolved first.
func SortByLength(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Length != cands[j].Length {
			return cands[i].Length < cands[j].Length
		}
		return cands[i].rank < cands[j].rank
	})
}
