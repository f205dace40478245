package cffio

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-cff/subr/token"
)

func toks(vals ...int32) []token.Token {
	out := make([]token.Token, len(vals))
	for i, v := range vals {
		out[i] = token.Int32Token(v)
	}
	return out
}

// TestCharstringRoundTrip checks tokenize/emit are inverses for a
// program exercising every operand width and a hintmask, the same
// property cff/t2decode.go and cff/t2encode.go preserve between each
// other for the geometry-level encoding.
func TestCharstringRoundTrip(t *testing.T) {
	prog := append(toks(0, 100, -100, 1000, -1000, 30000, -30000),
		token.OpToken(token.Op(opHStemHM)),
		token.HintMaskToken(token.Op(opHintMask), []byte{0xAA}),
		token.OpToken(token.OpEndChar),
	)
	// declare one stem pair (2 operands) ahead of hstemhm so the
	// hintmask above has a nonzero stem count to size its mask byte.
	prog = append(toks(0, 10), prog...)

	data := emit(prog)
	got, err := tokenize(data)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	if diff := cmp.Diff(prog, got); diff != "" {
		t.Errorf("tokenize(emit(prog)) differs from prog (-want +got):\n%s", diff)
	}
}

// TestIndexRoundTrip checks writeIndex/readIndex are inverses,
// including the empty-INDEX special case.
func TestIndexRoundTrip(t *testing.T) {
	cases := [][][]byte{
		nil,
		{{}},
		{[]byte("a"), []byte("bc"), []byte("def")},
	}
	for _, items := range cases {
		encoded := writeIndex(items)
		r := newReader(encoded)
		got, err := readIndex(r)
		if err != nil {
			t.Fatalf("readIndex: %v", err)
		}
		if diff := cmp.Diff(items, got); diff != "" {
			t.Errorf("readIndex(writeIndex(items)) differs (-want +got):\n%s", diff)
		}
		if r.pos != len(encoded) {
			t.Errorf("reader left at %d, want %d (whole INDEX consumed)", r.pos, len(encoded))
		}
	}
}

// TestDictRoundTrip checks encodeDict/decodeDict preserve the integer
// operands of the operators this package actually rewrites.
func TestDictRoundTrip(t *testing.T) {
	entries := map[int][]int32{
		dictCharStrings: {12345},
		dictPrivate:     {200, 67890},
		dictFDArray:     {42},
	}
	order := []int{dictCharStrings, dictPrivate, dictFDArray}

	data := encodeDict(entries, order)
	got, err := decodeDict(data)
	if err != nil {
		t.Fatalf("decodeDict: %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("decodeDict(encodeDict(entries)) differs (-want +got):\n%s", diff)
	}
}

// TestFDSelectRoundTrip checks format-3 encoding decodes back to the
// same per-glyph fd assignment, for a selection with several runs.
func TestFDSelectRoundTrip(t *testing.T) {
	assign := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 2, 2, 2, 2, 2, 2}
	fdOf := func(g int) int { return assign[g] }

	data := encodeFDSelect(fdOf, len(assign))
	r := newReader(data)
	got, err := readFDSelect(r, len(assign), 3)
	if err != nil {
		t.Fatalf("readFDSelect: %v", err)
	}
	for g, want := range assign {
		if got(g) != want {
			t.Errorf("glyph %d: got fd %d, want %d", g, got(g), want)
		}
	}
}
