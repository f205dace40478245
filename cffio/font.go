package cffio

import (
	"fmt"
	"sort"

	"github.com/go-cff/subr"
	"github.com/go-cff/subr/token"
)

// fontDict holds one private-dict-bearing font (the top-level font
// itself for a non-CID CFF, or one entry of the FDArray for a
// CID-keyed CFF).
type fontDict struct {
	privateRaw []byte // the private DICT bytes, minus the Subrs operator
	localSubrs [][]byte
}

// Font is a parsed CFF table, trimmed to the structures a
// subroutinizer reads and rewrites: the charstrings, the global and
// per-fd local subr tables, and FDSelect. Everything else (charset,
// encoding, the bulk of the top/private DICT operators) is carried
// through unchanged between Parse and Rewrite.
type Font struct {
	raw []byte

	header    []byte // the 4-byte header plus Name INDEX, verbatim
	topDict   map[int][]int32
	topOrder  []int // operator order, to keep Rewrite's re-encoding deterministic
	stringIdx []byte // String INDEX, verbatim

	charStrings [][]byte
	globalSubrs [][]byte

	fds      []fontDict
	fdSelect func(int) int // nil for a non-CID font (implicit single fd 0)
}

// Parse reads a CFF table (the contents of an OpenType font's "CFF "
// table, or a standalone .cff file).
func Parse(data []byte) (*Font, error) {
	r := newReader(data)

	hdrSize, err := func() (int, error) {
		if len(data) < 4 {
			return 0, fmt.Errorf("cffio: table too short")
		}
		return int(data[2]), nil
	}()
	if err != nil {
		return nil, err
	}
	if err := r.seek(hdrSize); err != nil {
		return nil, err
	}

	nameIdx, err := readIndex(r)
	if err != nil {
		return nil, fmt.Errorf("cffio: Name INDEX: %w", err)
	}
	headerEnd := r.pos
	_ = nameIdx

	topDictIdx, err := readIndex(r)
	if err != nil {
		return nil, fmt.Errorf("cffio: Top DICT INDEX: %w", err)
	}
	if len(topDictIdx) == 0 {
		return nil, fmt.Errorf("cffio: no top DICT")
	}

	stringIdxStart := r.pos
	if _, err := readIndex(r); err != nil {
		return nil, fmt.Errorf("cffio: String INDEX: %w", err)
	}
	stringIdxRaw := append([]byte(nil), data[stringIdxStart:r.pos]...)

	globalSubrs, err := readIndex(r)
	if err != nil {
		return nil, fmt.Errorf("cffio: Global Subr INDEX: %w", err)
	}

	topDict, err := decodeDict(topDictIdx[0])
	if err != nil {
		return nil, fmt.Errorf("cffio: top DICT: %w", err)
	}
	var topOrder []int
	for op := range topDict {
		topOrder = append(topOrder, op)
	}
	sort.Slice(topOrder, func(i, j int) bool {
		if (topOrder[i] == dictROS) != (topOrder[j] == dictROS) {
			return topOrder[i] == dictROS
		}
		return topOrder[i] < topOrder[j]
	})

	csOff, ok := topDict[dictCharStrings]
	if !ok || len(csOff) != 1 {
		return nil, fmt.Errorf("cffio: top DICT missing CharStrings")
	}
	if err := r.seek(int(csOff[0])); err != nil {
		return nil, err
	}
	charStrings, err := readIndex(r)
	if err != nil {
		return nil, fmt.Errorf("cffio: CharStrings INDEX: %w", err)
	}
	nGlyphs := len(charStrings)

	f := &Font{
		raw:         data,
		header:      append([]byte(nil), data[:headerEnd]...),
		topDict:     topDict,
		topOrder:    topOrder,
		stringIdx:   stringIdxRaw,
		charStrings: charStrings,
		globalSubrs: globalSubrs,
	}

	if fdaOff, ok := topDict[dictFDArray]; ok && len(fdaOff) == 1 {
		if err := r.seek(int(fdaOff[0])); err != nil {
			return nil, err
		}
		fdArrayIdx, err := readIndex(r)
		if err != nil {
			return nil, fmt.Errorf("cffio: FDArray INDEX: %w", err)
		}
		for _, blob := range fdArrayIdx {
			fdTopDict, err := decodeDict(blob)
			if err != nil {
				return nil, fmt.Errorf("cffio: FD DICT: %w", err)
			}
			fd, err := readFontDict(data, fdTopDict)
			if err != nil {
				return nil, err
			}
			f.fds = append(f.fds, fd)
		}

		fdsOff, ok := topDict[dictFDSelect]
		if !ok || len(fdsOff) != 1 {
			return nil, fmt.Errorf("cffio: CID font missing FDSelect")
		}
		if err := r.seek(int(fdsOff[0])); err != nil {
			return nil, err
		}
		fdSelect, err := readFDSelect(r, nGlyphs, len(f.fds))
		if err != nil {
			return nil, fmt.Errorf("cffio: FDSelect: %w", err)
		}
		f.fdSelect = fdSelect
	} else {
		fd, err := readFontDict(data, topDict)
		if err != nil {
			return nil, err
		}
		f.fds = []fontDict{fd}
	}

	return f, nil
}

func readFontDict(data []byte, dict map[int][]int32) (fontDict, error) {
	priv, ok := dict[dictPrivate]
	if !ok || len(priv) != 2 {
		return fontDict{}, nil // no private dict: no local subrs
	}
	size, offset := int(priv[0]), int(priv[1])
	if offset < 0 || offset+size > len(data) {
		return fontDict{}, fmt.Errorf("cffio: Private DICT out of range")
	}
	privData := data[offset : offset+size]
	privDict, err := decodeDict(privData)
	if err != nil {
		return fontDict{}, fmt.Errorf("cffio: Private DICT: %w", err)
	}

	fd := fontDict{privateRaw: privData}
	if subrsOff, ok := privDict[19]; ok && len(subrsOff) == 1 {
		r := newReader(data)
		if err := r.seek(offset + int(subrsOff[0])); err != nil {
			return fontDict{}, err
		}
		localSubrs, err := readIndex(r)
		if err != nil {
			return fontDict{}, fmt.Errorf("cffio: Local Subr INDEX: %w", err)
		}
		fd.localSubrs = localSubrs
	}
	return fd, nil
}

// FDLen returns the number of font dicts (1 for a non-CID font).
func (f *Font) FDLen() int { return len(f.fds) }

// FDSelect returns the per-glyph fd lookup, or a function that always
// returns 0 for a non-CID font.
func (f *Font) FDSelect() subr.FDSelectFn {
	if f.fdSelect != nil {
		return f.fdSelect
	}
	return func(int) int { return 0 }
}

// ToGlyphSet de-subroutinizes every glyph (expanding existing
// callsubr/callgsubr calls against this font's current subr tables,
// the same substitution VerifyRoundTrip performs in reverse) and
// returns the resulting token programs, ready for subr.Run.
func (f *Font) ToGlyphSet() (subr.GlyphSet, error) {
	gBias := bias(len(f.globalSubrs))
	localBias := make([]int, len(f.fds))
	localBodies := make([][][]token.Token, len(f.fds))
	for i, fd := range f.fds {
		localBias[i] = bias(len(fd.localSubrs))
		bodies, err := tokenizeAll(fd.localSubrs)
		if err != nil {
			return subr.GlyphSet{}, err
		}
		localBodies[i] = bodies
	}

	globalBodies, err := tokenizeAll(f.globalSubrs)
	if err != nil {
		return subr.GlyphSet{}, err
	}

	programs := make([][]token.Token, len(f.charStrings))
	names := make([]string, len(f.charStrings))
	for g, cs := range f.charStrings {
		names[g] = fmt.Sprintf("glyph%05d", g)
		toks, err := tokenize(cs)
		if err != nil {
			return subr.GlyphSet{}, fmt.Errorf("cffio: glyph %d: %w", g, err)
		}

		fd := 0
		if f.fdSelect != nil {
			fd = f.fdSelect(g)
		}

		expanded, err := expandCalls(toks, globalBodies, localBodies[fd], gBias, localBias[fd], 0)
		if err != nil {
			return subr.GlyphSet{}, fmt.Errorf("cffio: glyph %d: %w", g, err)
		}
		programs[g] = expanded
	}

	return subr.GlyphSet{Names: names, Programs: programs}, nil
}

func tokenizeAll(blobs [][]byte) ([][]token.Token, error) {
	out := make([][]token.Token, len(blobs))
	for i, b := range blobs {
		toks, err := tokenize(b)
		if err != nil {
			return nil, err
		}
		out[i] = toks
	}
	return out, nil
}

// expandCalls substitutes every callsubr/callgsubr in toks with the
// referenced subr's tokenized body (its own trailing return dropped),
// recursively. It is ToGlyphSet's side of the same substitution
// subr.VerifyRoundTrip performs to check an emitted program.
func expandCalls(toks []token.Token, gsubrs, lsubrs [][]token.Token, gBias, lBias, depth int) ([]token.Token, error) {
	const maxDepth = 64
	if depth > maxDepth {
		return nil, &token.MalformedError{Reason: "subr call chain too deep to expand (cycle?)"}
	}

	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != token.KindInt || i+1 >= len(toks) {
			out = append(out, t)
			continue
		}
		next := toks[i+1]
		if next.Kind != token.KindOperator || (next.Op != token.OpCallGsubr && next.Op != token.OpCallSubr) {
			out = append(out, t)
			continue
		}

		table, bias := lsubrs, lBias
		if next.Op == token.OpCallGsubr {
			table, bias = gsubrs, gBias
		}
		idx := int(t.Int) + bias
		if idx < 0 || idx >= len(table) {
			return nil, &token.MalformedError{Reason: "call operand out of range"}
		}

		body := table[idx]
		if n := len(body); n > 0 && body[n-1].IsReturn() {
			body = body[:n-1]
		}
		sub, err := expandCalls(body, gsubrs, lsubrs, gBias, lBias, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
		i++
	}
	return out, nil
}

// bias mirrors the bias a calling convention applies to subr indexes,
// the same three-tier rule package assemble's reorderTable uses.
func bias(n int) int {
	switch {
	case n < 1240:
		return 107
	case n < 33900:
		return 1131
	default:
		return 32768
	}
}
