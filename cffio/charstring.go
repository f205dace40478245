package cffio

import (
	"fmt"

	"github.com/go-cff/subr/token"
)

// Type-2 operators this package needs to name directly, to count stem
// hints ahead of a hintmask/cntrmask (cff/t2decode.go's stage-tracking
// switch is the model this mirrors).
const (
	opHStem    = 1
	opVStem    = 3
	opHStemHM  = 18
	opHintMask = 19
	opCntrMask = 20
	opVStemHM  = 23
)

// tokenize turns a raw Type-2 charstring into the token stream package
// subr/token operates on, fusing each hintmask/cntrmask with its mask
// bytes exactly as token.HintMaskToken expects. It mirrors the operand
// decoding cff/t2decode.go performs (the 32-254/28/255 byte-prefix
// scheme) but, unlike t2decode.go, does not interpret operators into
// drawing commands: every operator is kept as an opaque token.
func tokenize(data []byte) ([]token.Token, error) {
	var out []token.Token
	nStems := 0
	pending := 0 // operand count since the last operator, for stem counting

	i := 0
	for i < len(data) {
		b0 := int(data[i])
		switch {
		case b0 >= 32 && b0 <= 246:
			out = append(out, token.Int32Token(int32(b0)-139))
			pending++
			i++
		case b0 >= 247 && b0 <= 250:
			if i+2 > len(data) {
				return nil, &token.MalformedError{Reason: "truncated charstring operand"}
			}
			v := (int32(b0)-247)*256 + int32(data[i+1]) + 108
			out = append(out, token.Int32Token(v))
			pending++
			i += 2
		case b0 >= 251 && b0 <= 254:
			if i+2 > len(data) {
				return nil, &token.MalformedError{Reason: "truncated charstring operand"}
			}
			v := -(int32(b0)-251)*256 - int32(data[i+1]) - 108
			out = append(out, token.Int32Token(v))
			pending++
			i += 2
		case b0 == 28:
			if i+3 > len(data) {
				return nil, &token.MalformedError{Reason: "truncated charstring operand"}
			}
			v := int16(data[i+1])<<8 | int16(data[i+2])
			out = append(out, token.Int32Token(int32(v)))
			pending++
			i += 3
		case b0 == 255:
			if i+5 > len(data) {
				return nil, &token.MalformedError{Reason: "truncated charstring operand"}
			}
			v := int32(data[i+1])<<24 | int32(data[i+2])<<16 | int32(data[i+3])<<8 | int32(data[i+4])
			out = append(out, token.RealToken(float64(v)/65536))
			pending++
			i += 5

		case b0 == opHintMask || b0 == opCntrMask:
			nStems += pending / 2
			pending = 0
			if nStems == 0 {
				return nil, &token.MalformedError{Reason: "hintmask with no stems declared"}
			}
			k := (nStems + 7) / 8
			if i+1+k > len(data) {
				return nil, &token.MalformedError{Reason: "truncated hintmask"}
			}
			op := token.Op(opHintMask)
			if b0 == opCntrMask {
				op = token.Op(opCntrMask)
			}
			out = append(out, token.HintMaskToken(op, data[i+1:i+1+k]))
			i += 1 + k

		case b0 == opHStem || b0 == opVStem || b0 == opHStemHM || b0 == opVStemHM:
			nStems += pending / 2
			pending = 0
			out = append(out, token.OpToken(token.Op(b0)))
			i++

		case b0 == 12:
			if i+2 > len(data) {
				return nil, &token.MalformedError{Reason: "truncated escape operator"}
			}
			out = append(out, token.OpToken(token.EscapeOp(data[i+1])))
			pending = 0
			i += 2

		case b0 >= 1 && b0 <= 31:
			out = append(out, token.OpToken(token.Op(b0)))
			pending = 0
			i++

		default:
			return nil, &token.MalformedError{Reason: fmt.Sprintf("invalid charstring byte %d", b0)}
		}
	}
	return out, nil
}

// emit is tokenize's inverse: it re-encodes a token stream (in the
// same fused hintmask/cntrmask form tokenize produces, with
// callsubr/callgsubr operands already carrying their final biased
// values) into Type-2 charstring bytes.
func emit(toks []token.Token) []byte {
	var out []byte
	for _, t := range toks {
		switch t.Kind {
		case token.KindOperator:
			out = appendOperator(out, t.Op)
		case token.KindInt:
			out = appendCharstringInt(out, t.Int)
		case token.KindReal:
			fixed := int32(t.Real * 65536)
			out = append(out, 255, byte(fixed>>24), byte(fixed>>16), byte(fixed>>8), byte(fixed))
		case token.KindHintMask:
			out = appendOperator(out, t.Op)
			out = append(out, t.Mask...)
		}
	}
	return out
}

func appendOperator(out []byte, op token.Op) []byte {
	if op.IsTwoByte() {
		return append(out, 12, byte(int(op)-1200))
	}
	return append(out, byte(op))
}

func appendCharstringInt(out []byte, v int32) []byte {
	switch {
	case v >= -107 && v <= 107:
		return append(out, byte(v+139))
	case v >= 108 && v <= 1131:
		v -= 108
		return append(out, byte(v/256+247), byte(v%256))
	case v >= -1131 && v <= -108:
		v = -v - 108
		return append(out, byte(v/256+251), byte(v%256))
	default:
		return append(out, 28, byte(v>>8), byte(v))
	}
}
