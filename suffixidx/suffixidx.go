// Package suffixidx builds the suffix array and LCP array over the
// concatenated, remapped glyph programs that CandidateExtractor walks
// to enumerate repeated substrings.
package suffixidx

import "sort"

// Pos identifies a suffix by its glyph and starting offset within
// that glyph's program.
type Pos struct {
	Glyph int
	Start int
}

// Index is the suffix array (Order, by rank) and LCP array (length N)
// over a corpus of code sequences.
type Index struct {
	Order []Pos // Order[r] is the suffix at rank r
	LCP   []int // LCP[r] = len(lcp(Order[r-1], Order[r])); LCP[0] = 0
}

// Build constructs the suffix array and LCP array for corpus, a slice
// of per-glyph integer-code programs. Suffixes are ordered
// lexicographically; each glyph's suffix is compared only against its
// own remaining codes (a glyph boundary is never treated as equal to
// anything, so no cross-glyph sentinel is needed). Ties among equal
// suffixes are broken arbitrarily but stably by (glyph, start).
func Build(corpus [][]int32) *Index {
	n := 0
	for _, g := range corpus {
		n += len(g)
	}

	order := make([]Pos, 0, n)
	for g, data := range corpus {
		for i := range data {
			order = append(order, Pos{Glyph: g, Start: i})
		}
	}

	less := func(a, b Pos) bool {
		da, db := corpus[a.Glyph][a.Start:], corpus[b.Glyph][b.Start:]
		for i := 0; i < len(da) && i < len(db); i++ {
			if da[i] != db[i] {
				return da[i] < db[i]
			}
		}
		if len(da) != len(db) {
			return len(da) < len(db)
		}
		if a.Glyph != b.Glyph {
			return a.Glyph < b.Glyph
		}
		return a.Start < b.Start
	}
	sort.Slice(order, func(i, j int) bool { return less(order[i], order[j]) })

	rank := make(map[Pos]int, n)
	for r, p := range order {
		rank[p] = r
	}

	lcp := make([]int, n)
	tail := func(p Pos) []int32 {
		data := corpus[p.Glyph]
		if p.Start >= len(data) {
			return nil
		}
		return data[p.Start:]
	}
	commonPrefix := func(a, b Pos) int {
		da, db := tail(a), tail(b)
		h := 0
		for h < len(da) && h < len(db) && da[h] == db[h] {
			h++
		}
		return h
	}

	// Kasai's algorithm: walk positions in the order they occur within
	// each glyph's program, using the previous suffix in rank order to
	// seed the next comparison (h only ever decreases by one per step).
	for g, data := range corpus {
		h := 0
		for i := range data {
			r := rank[Pos{Glyph: g, Start: i}]
			if r > 0 {
				prev := order[r-1]
				cur := Pos{Glyph: g, Start: i}
				h += commonPrefix(Pos{Glyph: cur.Glyph, Start: cur.Start + h}, Pos{Glyph: prev.Glyph, Start: prev.Start + h})
				lcp[r] = h
				if h > 0 {
					h--
				}
			} else {
				h = 0
			}
		}
	}

	return &Index{Order: order, LCP: lcp}
}
