package market

import "seehuhn.de/go/dag"

// optEdge is one transition of the Optimize DAG: from position i to
// position to, either a literal emission of codes[i:to] (sub == nil,
// priced at their raw token cost) or a call to sub (priced at its
// market price).
type optEdge struct {
	to    int
	price float64
	sub   *Substring
}

// optGraph exposes the position-0..n DAG described in §4.4.1 to
// seehuhn.de/go/dag's generic shortest-path solver, the same framing
// cff.encodeSubPath uses for picking the cheapest of several
// overlapping multi-token Type-2 productions.
type optGraph struct {
	codes  []int32
	costOf func(int32) int
	table  PriceTable
	skip   int // substring index that may not be used; -1 for none
}

// AppendEdges lists, in order of increasing target position, every
// edge leaving from: one per j in (from, n], literal or (if codes[from:j]
// is in the table and not skip) a call. Edges are appended smallest-j
// first so that among equal-price options the shortest-path relaxation
// (which only updates on strict improvement) keeps the smallest j, as
// the tie-break in §4.4.1 requires.
func (g *optGraph) AppendEdges(edges []optEdge, from int) []optEdge {
	n := len(g.codes)
	cur := 0
	for j := from + 1; j <= n; j++ {
		cur += g.costOf(g.codes[j-1])
		if e, ok := g.table[keyOf(g.codes[from:j])]; ok && e.Index != g.skip {
			edges = append(edges, optEdge{to: j, price: e.Price, sub: e.Sub})
			continue
		}
		edges = append(edges, optEdge{to: j, price: float64(cur)})
	}
	return edges
}

func (g *optGraph) To(_ int, e optEdge) int         { return e.to }
func (g *optGraph) Length(_ int, e optEdge) float64 { return e.price }

// Optimize re-encodes codes as a cheapest-possible mix of literal runs
// and substring calls under table's current prices, forbidding skipIdx
// (pass -1 to allow every table entry, used when the item being
// encoded is not itself a substring). It returns the chosen call sites
// in ascending offset order and the total market cost of the encoding.
func Optimize(codes []int32, table PriceTable, costOf func(int32) int, skipIdx int) ([]CallSite, float64) {
	n := len(codes)
	if n == 0 {
		return nil, 0
	}

	g := &optGraph{codes: codes, costOf: costOf, table: table, skip: skipIdx}
	path, err := dag.ShortestPath[int, optEdge, float64](g, 0, n)
	if err != nil {
		panic("market: Optimize found no path through the position DAG: " + err.Error())
	}

	var encoding []CallSite
	var cost float64
	pos := 0
	for _, e := range path {
		cost += e.price
		if e.sub != nil {
			encoding = append(encoding, CallSite{Offset: pos, Sub: e.sub})
		}
		pos = e.to
	}
	return encoding, cost
}
