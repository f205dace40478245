// Package subr is the entry point of the CFF Type-2 charstring
// subroutinizer: it ties together the tokenized alphabet, the suffix/
// LCP index, candidate extraction, the marketplace, and the assembler
// into a single Run call.
package subr

import (
	"github.com/go-cff/subr/assemble"
	"github.com/go-cff/subr/token"
)

// GlyphSet is the input contract's glyph_set: glyph programs in
// deterministic order, each a token sequence with hintmask/cntrmask
// immediately followed by its mask-bytes token, guaranteed
// de-subroutinized by the caller (§6).
type GlyphSet struct {
	Names    []string
	Programs [][]token.Token
}

// FDSelectFn maps a glyph index to its font-dict index. Nil means a
// single-fd font.
type FDSelectFn = assemble.FDSelectFn
