package token

import "fmt"

// MalformedError reports a token that Model.Ingest could not classify
// or accept, per the container contract (§6 of the specification):
// endchar must be final, callsubr/callgsubr/return must not appear.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "token: malformed program: " + e.Reason
}

// Code is the small non-negative integer a Token is remapped to.
type Code int32

// Model is the alphabet: a bijective Token<->Code mapping plus the
// per-code cost table, built incrementally as programs are ingested.
type Model struct {
	index map[string]Code
	toks  []Token
	costs []int
}

// NewModel returns an empty alphabet.
func NewModel() *Model {
	return &Model{index: make(map[string]Code)}
}

// Len returns the number of distinct tokens seen so far.
func (m *Model) Len() int { return len(m.toks) }

// Cost returns the number of bytes the token at code occupies.
func (m *Model) Cost(c Code) int {
	return m.costs[c]
}

// Token returns the token that code was assigned to.
func (m *Model) Token(c Code) Token {
	return m.toks[c]
}

// codeFor returns the code for t, appending a new alphabet entry on
// first sight.
func (m *Model) codeFor(t Token) Code {
	k := t.key()
	if c, ok := m.index[k]; ok {
		return c
	}
	c := Code(len(m.toks))
	m.index[k] = c
	m.toks = append(m.toks, t)
	m.costs = append(m.costs, t.cost())
	return c
}

// Collapse fuses every (hintmask|cntrmask, mask-bytes) adjacent pair
// in prog into a single KindHintMask token. The mask-bytes token must
// immediately follow its operator, per the container contract; it is
// itself represented as a KindHintMask token with Op==0 carrying only
// the bytes. Tokens that are already fused are left as they are.
func Collapse(prog []Token) []Token {
	out := make([]Token, 0, len(prog))
	for i := 0; i < len(prog); i++ {
		t := prog[i]
		if (t.Op == OpHintMask || t.Op == OpCntrMask) && t.Kind == KindOperator && i+1 < len(prog) {
			mask := prog[i+1]
			out = append(out, HintMaskToken(t.Op, mask.Mask))
			i++
			continue
		}
		out = append(out, t)
	}
	return out
}

// Expand is the inverse of Collapse: every KindHintMask token is split
// back into its operator and a raw mask-bytes token.
func Expand(prog []Token) []Token {
	out := make([]Token, 0, len(prog)*2)
	for _, t := range prog {
		if t.Kind == KindHintMask {
			out = append(out, OpToken(t.Op), Token{Kind: KindHintMask, Mask: t.Mask})
			continue
		}
		out = append(out, t)
	}
	return out
}

// Ingest fuses hintmask pairs, validates the de-subroutinized-input
// contract, and maps the result to alphabet codes, growing the
// alphabet as needed. It returns the code sequence.
func (m *Model) Ingest(prog []Token) ([]Code, error) {
	collapsed := Collapse(prog)

	for i, t := range collapsed {
		switch {
		case t.Kind == KindOperator && t.Op == OpEndChar && i != len(collapsed)-1:
			return nil, &MalformedError{Reason: fmt.Sprintf("endchar at position %d, not final", i)}
		case t.Kind == KindOperator && (t.Op == OpCallSubr || t.Op == OpCallGsubr || t.Op == OpReturn):
			return nil, &MalformedError{Reason: "program is not de-subroutinized"}
		case t.Kind > KindHintMask:
			return nil, &MalformedError{Reason: "unknown token kind"}
		}
	}

	codes := make([]Code, len(collapsed))
	for i, t := range collapsed {
		codes[i] = m.codeFor(t)
	}
	return codes, nil
}
