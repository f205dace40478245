package subr

import "github.com/go-cff/subr/token"

// RoundTripMismatchError reports that VerifyRoundTrip found a glyph
// whose emitted program, fully expanded, does not reproduce the
// original program.
type RoundTripMismatchError struct {
	Glyph  string
	Detail string
}

func (e *RoundTripMismatchError) Error() string {
	return "subr: round-trip mismatch for glyph " + e.Glyph + ": " + e.Detail
}

// IsRoundTripMismatch reports whether err came from VerifyRoundTrip.
func IsRoundTripMismatch(err error) bool {
	_, ok := err.(*RoundTripMismatchError)
	return ok
}

// VerifyRoundTrip checks testable property 4 (semantic equivalence):
// for every glyph, substituting every callsubr/callgsubr in the
// emitted program with the body of the referenced subr — recursively,
// omitting any trailing return — reproduces the original program.
// This is the Go counterpart of the original tool's --check mode.
func VerifyRoundTrip(glyphs GlyphSet, fdSelect FDSelectFn, out Output) error {
	for i, name := range glyphs.Names {
		fd := 0
		if fdSelect != nil {
			fd = fdSelect(i)
		}
		var localTable [][]token.Token
		localBias := 0
		if fd < len(out.LSubrs) {
			localTable = out.LSubrs[fd]
		}
		if fd < len(out.localBias) {
			localBias = out.localBias[fd]
		}

		expanded, err := expandProgram(out.GlyphEncodings[name], out.GSubrs, localTable, out.globalBias, localBias, 0)
		if err != nil {
			return &RoundTripMismatchError{Glyph: name, Detail: err.Error()}
		}

		want := glyphs.Programs[i]
		if !tokenProgramsEqual(expanded, want) {
			return &RoundTripMismatchError{Glyph: name, Detail: "expanded program differs from the original"}
		}
	}
	return nil
}

const maxExpandDepth = 64

// expandProgram walks prog, substituting each (operand, callgsubr|
// callsubr) pair with the referenced subr's body (recursively, its own
// trailing return dropped) and copying every other token unchanged.
func expandProgram(prog []token.Token, gsubrs, lsubrs [][]token.Token, globalBias, localBias, depth int) ([]token.Token, error) {
	if depth > maxExpandDepth {
		return nil, &token.MalformedError{Reason: "call chain too deep to expand (cycle?)"}
	}

	out := make([]token.Token, 0, len(prog))
	for i := 0; i < len(prog); i++ {
		t := prog[i]
		if t.Kind != token.KindInt || i+1 >= len(prog) {
			out = append(out, t)
			continue
		}
		next := prog[i+1]
		if next.Kind != token.KindOperator || (next.Op != token.OpCallGsubr && next.Op != token.OpCallSubr) {
			out = append(out, t)
			continue
		}

		table, bias := lsubrs, localBias
		if next.Op == token.OpCallGsubr {
			table, bias = gsubrs, globalBias
		}
		idx := int(t.Int) + bias
		if idx < 0 || idx >= len(table) {
			return nil, &token.MalformedError{Reason: "call operand out of range"}
		}

		body := table[idx]
		if n := len(body); n > 0 && body[n-1].IsReturn() {
			body = body[:n-1]
		}
		sub, err := expandProgram(body, gsubrs, lsubrs, globalBias, localBias, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
		i++ // consume the operator token too
	}
	return out, nil
}

func tokenProgramsEqual(a, b []token.Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !tokenEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func tokenEqual(a, b token.Token) bool {
	if a.Kind != b.Kind || a.Op != b.Op || a.Int != b.Int || a.Real != b.Real {
		return false
	}
	if len(a.Mask) != len(b.Mask) {
		return false
	}
	for i := range a.Mask {
		if a.Mask[i] != b.Mask[i] {
			return false
		}
	}
	return true
}
