package assemble

import (
	"testing"

	"github.com/go-cff/subr/market"
	"github.com/go-cff/subr/token"
)

func buildModel(n int) (*token.Model, []int32) {
	m := token.NewModel()
	prog := make([]token.Token, n)
	for i := range prog {
		prog[i] = token.Int32Token(int32(100 + i))
	}
	codes, err := m.Ingest(prog)
	if err != nil {
		panic(err)
	}
	out := make([]int32, len(codes))
	for i, c := range codes {
		out[i] = int32(c)
	}
	return m, out
}

// TestS4SingleFDTieGoesLocal: a substring used twice by fd 0 only, with
// both globals and lsubrs[0] empty; test_call_cost ties at 1 byte, so
// the tie-break lands it in the local table.
func TestS4SingleFDTieGoesLocal(t *testing.T) {
	model, body := buildModel(3)
	corpus := [][]int32{append([]int32{}, body...), append([]int32{}, body...)}

	// Cost 20, usages 2: saving = 20*2-20-5*2-3 = 7 > 0 (S3/S4's worked numbers).
	s := &market.Substring{Index: 0, Glyph: 0, Start: 0, Length: 3, Cost: 20, Usages: 2, FDIdx: map[int]bool{}}

	glyphEnc := [][]market.CallSite{
		{{Offset: 0, Sub: s}},
		{{Offset: 0, Sub: s}},
	}
	fdSelect := func(int) int { return 0 }

	out, err := Assemble(model, corpus, glyphEnc, []*market.Substring{s}, fdSelect, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(out.GSubrs) != 0 {
		t.Errorf("expected globals empty, got %d", len(out.GSubrs))
	}
	if len(out.LSubrs[0]) != 1 {
		t.Fatalf("expected the substring placed in lsubrs[0], got %d entries", len(out.LSubrs[0]))
	}
	if s.Global {
		t.Error("substring should not be marked global")
	}
}

// TestBudgetLimitFlattensOverflow is a scaled-down analogue of S5: more
// equally-valuable multi-fd survivors than NSubrsLimit allows, so the
// overflow is flattened rather than placed, and |gsubrs| never exceeds
// the limit.
func TestBudgetLimitFlattensOverflow(t *testing.T) {
	model, body := buildModel(3)
	const n = 8
	const limit = 5

	corpus := make([][]int32, 2*n)
	subs := make([]*market.Substring, n)
	glyphEnc := make([][]market.CallSite, 2*n)
	for i := 0; i < n; i++ {
		subs[i] = &market.Substring{Index: i, Glyph: i, Start: 0, Length: 3, Cost: 20, Usages: 2, FDIdx: map[int]bool{}}
	}
	for g := 0; g < 2*n; g++ {
		corpus[g] = append([]int32{}, body...)
		glyphEnc[g] = []market.CallSite{{Offset: 0, Sub: subs[g/2]}}
	}
	// two fds, and glyphs 2i and 2i+1 both call subs[i], so every
	// substring is multi-fd reachable
	fdSelect := func(g int) int { return g % 2 }

	opts := DefaultOptions()
	opts.NSubrsLimit = limit
	out, err := Assemble(model, corpus, glyphEnc, subs, fdSelect, 2, opts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(out.GSubrs) > limit {
		t.Fatalf("|gsubrs| = %d, exceeds limit %d", len(out.GSubrs), limit)
	}
	if len(out.GSubrs) != limit {
		t.Errorf("expected globals to fill to the limit, got %d", len(out.GSubrs))
	}
	flattened := 0
	for _, s := range subs {
		if s.Flatten {
			flattened++
		}
	}
	if flattened != n-limit {
		t.Errorf("expected %d flattened survivors, got %d", n-limit, flattened)
	}
}

// TestDepthLimitDemotesDeepChain builds a call chain s0->s1->...->s4 and
// checks that with SubrNestLimit=3 the deepest two subrs are demoted
// to Flatten (S6), and every remaining placed subr respects the limit
// (property 6).
func TestDepthLimitDemotesDeepChain(t *testing.T) {
	model, body := buildModel(3)
	corpus := [][]int32{append([]int32{}, body...)}

	const chainLen = 5
	subs := make([]*market.Substring, chainLen)
	for i := range subs {
		subs[i] = &market.Substring{Index: i, Glyph: 0, Start: 0, Length: 3, Cost: 20, Usages: 2, FDIdx: map[int]bool{}}
	}
	for i := 0; i < chainLen-1; i++ {
		subs[i].Encoding = []market.CallSite{{Offset: 0, Sub: subs[i+1]}}
	}

	glyphEnc := [][]market.CallSite{{{Offset: 0, Sub: subs[0]}}}

	opts := DefaultOptions()
	opts.SubrNestLimit = 3
	out, err := Assemble(model, corpus, glyphEnc, subs, nil, 1, opts)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	_ = out

	if !subs[0].Flatten || !subs[1].Flatten {
		t.Errorf("expected the two deepest subrs (depth 5,4) demoted to flatten: s0.Flatten=%v s1.Flatten=%v", subs[0].Flatten, subs[1].Flatten)
	}
	for i := 2; i < chainLen; i++ {
		if subs[i].Flatten {
			t.Errorf("subr %d unexpectedly flattened", i)
		}
		if subs[i].MaxCallDepth > opts.SubrNestLimit {
			t.Errorf("subr %d depth %d exceeds limit %d", i, subs[i].MaxCallDepth, opts.SubrNestLimit)
		}
	}
}

// TestSingleGlyphNoRepeats is the boundary case: a substring list with
// no survivors leaves the glyph program unchanged apart from the
// identity rewrite (no call sites to splice).
func TestSingleGlyphNoRepeats(t *testing.T) {
	model, body := buildModel(4)
	corpus := [][]int32{body}
	glyphEnc := [][]market.CallSite{nil}

	out, err := Assemble(model, corpus, glyphEnc, nil, nil, 1, DefaultOptions())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(out.GSubrs) != 0 || len(out.LSubrs[0]) != 0 {
		t.Errorf("expected empty subr tables, got gsubrs=%d lsubrs[0]=%d", len(out.GSubrs), len(out.LSubrs[0]))
	}
	if len(out.GlyphPrograms[0]) != len(body) {
		t.Errorf("glyph program length changed: got %d, want %d", len(out.GlyphPrograms[0]), len(body))
	}
}
