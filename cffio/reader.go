// Package cffio reads and writes the CFF table that carries Type-2
// charstrings, bridging it to the de-subroutinized token streams that
// package subr operates on. It plays the role the sfnt/cff package
// plays in a full font library, trimmed to exactly what a CFF-level
// subroutinizer needs: INDEX structures, DICTs, FDSelect, and the
// Type-2 charstring byte encoding (CFF spec, Adobe TN#5176/TN#5177).
package cffio

import (
	"encoding/binary"
	"fmt"
)

// reader is a minimal big-endian cursor over an in-memory CFF table.
// It plays the part seehuhn.de/go/sfnt/parser.Parser plays in the
// original library, trimmed to the handful of primitives a CFF table
// (rather than a whole sfnt file) needs.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return fmt.Errorf("cffio: seek out of range")
	}
	r.pos = pos
	return nil
}

func (r *reader) u8() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("cffio: unexpected end of table")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, fmt.Errorf("cffio: unexpected end of table")
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u24() (uint32, error) {
	if r.pos+3 > len(r.data) {
		return 0, fmt.Errorf("cffio: unexpected end of table")
	}
	v := uint32(r.data[r.pos])<<16 | uint32(r.data[r.pos+1])<<8 | uint32(r.data[r.pos+2])
	r.pos += 3
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("cffio: unexpected end of table")
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// offset reads an offSize-byte unsigned integer, as used throughout
// CFF INDEX structures.
func (r *reader) offset(offSize byte) (uint32, error) {
	switch offSize {
	case 1:
		v, err := r.u8()
		return uint32(v), err
	case 2:
		v, err := r.u16()
		return uint32(v), err
	case 3:
		return r.u24()
	case 4:
		return r.u32()
	default:
		return 0, fmt.Errorf("cffio: invalid offSize %d", offSize)
	}
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("cffio: unexpected end of table")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
