package assemble

import (
	"github.com/go-cff/subr/market"
	"github.com/go-cff/subr/token"
)

// buildProgram maps codes back to tokens through model and rewrites
// them according to enc (sorted ascending by Offset, non-overlapping):
// a call to a Flatten substring splices in its already-built Program,
// a call to a placed substring is replaced by its operand/operator
// pair. globalBias prices global calls; localBias prices local calls
// made from this body's fd context. model.Token yields tokens in the
// fused hintmask/cntrmask form (as tokenize produces them), and the
// result is left in that same space: a Flatten substring's Program is
// spliced in verbatim rather than re-expanded, so nesting one flatten
// body inside another never fuses or splits a hintmask pair twice.
// Every consumer downstream (emit, VerifyRoundTrip) expects this fused
// form directly, matching the original, never-subroutinized glyph
// programs it is compared against (§4.5.2).
func buildProgram(model *token.Model, codes []int32, enc []market.CallSite, globalBias, localBias int) []token.Token {
	toks := make([]token.Token, len(codes))
	for i, c := range codes {
		toks[i] = model.Token(token.Code(c))
	}

	out := make([]token.Token, 0, len(toks))
	pos := 0
	for _, cs := range enc {
		out = append(out, toks[pos:cs.Offset]...)
		if cs.Sub.Flatten {
			out = append(out, cs.Sub.Program...)
		} else {
			bias, op := localBias, token.OpCallSubr
			if cs.Sub.Global {
				bias, op = globalBias, token.OpCallGsubr
			}
			out = append(out, token.Int32Token(int32(cs.Sub.Position-bias)), token.OpToken(op))
		}
		pos = cs.Offset + cs.Sub.Length
	}
	out = append(out, toks[pos:]...)

	return out
}

// finalizeSubrProgram appends return to a placed subr's body unless it
// already ends in endchar or return.
func finalizeSubrProgram(prog []token.Token) []token.Token {
	if len(prog) > 0 {
		last := prog[len(prog)-1]
		if last.IsEndChar() || last.IsReturn() {
			return prog
		}
	}
	return append(prog, token.OpToken(token.OpReturn))
}
