package cffio

import (
	"fmt"
	"sort"
)

// readFDSelect decodes an FDSelect table (format 0 or 3), mirroring
// cff/fdselect.go's readFDSelect with glyph.ID/*parser.Parser swapped
// for this package's plain ints and reader.
func readFDSelect(r *reader, nGlyphs, nFDs int) (func(int) int, error) {
	format, err := r.u8()
	if err != nil {
		return nil, err
	}

	switch format {
	case 0:
		buf, err := r.bytes(nGlyphs)
		if err != nil {
			return nil, err
		}
		for _, fd := range buf {
			if int(fd) >= nFDs {
				return nil, fmt.Errorf("cffio: FDSelect out of range")
			}
		}
		cp := append([]byte(nil), buf...)
		return func(gid int) int { return int(cp[gid]) }, nil

	case 3:
		nRanges, err := r.u16()
		if err != nil {
			return nil, err
		}
		if nGlyphs > 0 && nRanges == 0 {
			return nil, fmt.Errorf("cffio: empty FDSelect")
		}

		var ends []int
		var fdIdx []byte
		prev := 0
		for i := 0; i < int(nRanges); i++ {
			first, err := r.u16()
			if err != nil {
				return nil, err
			}
			if i > 0 && int(first) <= prev || i == 0 && first != 0 {
				return nil, fmt.Errorf("cffio: FDSelect ranges out of order")
			}
			fd, err := r.u8()
			if err != nil {
				return nil, err
			}
			if int(fd) >= nFDs {
				return nil, fmt.Errorf("cffio: FDSelect out of range")
			}
			if i > 0 {
				ends = append(ends, int(first))
			}
			fdIdx = append(fdIdx, fd)
			prev = int(first)
		}
		sentinel, err := r.u16()
		if err != nil {
			return nil, err
		}
		if int(sentinel) != nGlyphs {
			return nil, fmt.Errorf("cffio: wrong FDSelect sentinel")
		}
		ends = append(ends, nGlyphs)

		return func(gid int) int {
			idx := sort.SearchInts(ends, gid+1)
			return int(fdIdx[idx])
		}, nil

	default:
		return nil, fmt.Errorf("cffio: unsupported FDSelect format %d", format)
	}
}

// encodeFDSelect picks format 3 (range runs) unless it would be at
// least as large as format 0's flat byte-per-glyph table, exactly as
// cff/fdselect.go's (FDSelectFn).encode does.
func encodeFDSelect(fdOf func(int) int, nGlyphs int) []byte {
	format0Length := nGlyphs + 1

	buf := []byte{3, 0, 0}
	current := -1
	nSeg := 0
	for i := 0; i < nGlyphs; i++ {
		fd := fdOf(i)
		if i > 0 && fd == current {
			continue
		}
		if len(buf)+3+2 >= format0Length {
			return encodeFDSelectFormat0(fdOf, nGlyphs)
		}
		buf = append(buf, byte(i>>8), byte(i), byte(fd))
		nSeg++
		current = fd
	}
	buf = append(buf, byte(nGlyphs>>8), byte(nGlyphs))
	buf[1], buf[2] = byte(nSeg>>8), byte(nSeg)
	return buf
}

func encodeFDSelectFormat0(fdOf func(int) int, nGlyphs int) []byte {
	buf := make([]byte, nGlyphs+1)
	for i := 0; i < nGlyphs; i++ {
		buf[i+1] = byte(fdOf(i))
	}
	return buf
}
