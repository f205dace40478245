package token

import "testing"

func sampleProgram() []Token {
	return []Token{
		Int32Token(100),
		Int32Token(-50),
		OpToken(OpHintMask),
		{Kind: KindHintMask, Mask: []byte{0xff, 0x80}},
		RealToken(1.5),
		OpToken(OpEndChar),
	}
}

func tokensEqual(a, b Token) bool {
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

// TestCollapseExpand checks property 1: expanding the collapsed form
// reproduces the original token list.
func TestCollapseExpand(t *testing.T) {
	orig := sampleProgram()
	collapsed := Collapse(orig)
	if len(collapsed) != len(orig)-1 {
		t.Fatalf("expected hintmask pair to fuse: got %d tokens, want %d", len(collapsed), len(orig)-1)
	}
	expanded := Expand(collapsed)
	if len(expanded) != len(orig) {
		t.Fatalf("round trip changed length: got %d, want %d", len(expanded), len(orig))
	}
	for i := range orig {
		if !tokensEqual(orig[i], expanded[i]) {
			t.Errorf("token %d: got %v, want %v", i, expanded[i], orig[i])
		}
	}
}

// TestAlphabetInjective checks property 2: code->token composed with
// the forward remap is the identity.
func TestAlphabetInjective(t *testing.T) {
	m := NewModel()
	prog := sampleProgram()
	codes, err := m.Ingest(prog)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	collapsed := Collapse(prog)
	if len(codes) != len(collapsed) {
		t.Fatalf("got %d codes, want %d", len(codes), len(collapsed))
	}
	for i, c := range codes {
		got := m.Token(c)
		if !tokensEqual(got, collapsed[i]) {
			t.Errorf("code %d: got %v, want %v", c, got, collapsed[i])
		}
	}

	// ingesting the same program again must not grow the alphabet.
	n := m.Len()
	if _, err := m.Ingest(prog); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if m.Len() != n {
		t.Errorf("alphabet grew on repeat ingest: %d -> %d", n, m.Len())
	}
}

func TestIngestRejectsMidEndchar(t *testing.T) {
	m := NewModel()
	prog := []Token{OpToken(OpEndChar), Int32Token(1)}
	if _, err := m.Ingest(prog); err == nil {
		t.Fatal("expected error for non-final endchar")
	}
}

func TestIngestRejectsCallsubr(t *testing.T) {
	m := NewModel()
	prog := []Token{Int32Token(0), OpToken(OpCallSubr)}
	if _, err := m.Ingest(prog); err == nil {
		t.Fatal("expected error for callsubr in source program")
	}
}

func TestCost(t *testing.T) {
	cases := []struct {
		tok  Token
		want int
	}{
		{Int32Token(107), 1},
		{Int32Token(-107), 1},
		{Int32Token(108), 2},
		{Int32Token(-108), 2},
		{Int32Token(1131), 2},
		{Int32Token(1132), 3},
		{Int32Token(-1132), 3},
		{RealToken(1.25), 5},
		{OpToken(OpHintMask), 1},
		{OpToken(EscapeOp(35)), 2},
		{HintMaskToken(OpHintMask, []byte{1, 2, 3}), 4},
	}
	m := NewModel()
	for _, c := range cases {
		code := m.codeFor(c.tok)
		if got := m.Cost(code); got != c.want {
			t.Errorf("%v: cost=%d, want %d", c.tok, got, c.want)
		}
	}
}
