package cffio

import "fmt"

// readIndex reads one CFF INDEX structure (count uint16, offSize
// uint8, count+1 offsets, then the concatenated data), mirroring the
// structure cff/read.go's readIndex walks, adapted to the standalone
// reader above. A count of zero is the empty INDEX (two bytes, no
// offSize or data), per the CFF spec.
func readIndex(r *reader) ([][]byte, error) {
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	offSize, err := r.u8()
	if err != nil {
		return nil, err
	}

	offsets := make([]uint32, count+1)
	for i := range offsets {
		offsets[i], err = r.offset(offSize)
		if err != nil {
			return nil, err
		}
	}
	for i := 1; i <= int(count); i++ {
		if offsets[i] < offsets[i-1] {
			return nil, fmt.Errorf("cffio: INDEX offsets out of order")
		}
	}

	base := r.pos - 1 // offsets are 1-based from the byte after the offset array
	items := make([][]byte, count)
	for i := range items {
		start := base + int(offsets[i])
		end := base + int(offsets[i+1])
		if start < 0 || end > len(r.data) || start > end {
			return nil, fmt.Errorf("cffio: INDEX data out of range")
		}
		items[i] = r.data[start:end]
	}
	if err := r.seek(base + int(offsets[count])); err != nil {
		return nil, err
	}
	return items, nil
}

// writeIndex encodes items as a CFF INDEX, choosing the smallest
// offSize that fits the total data length, mirroring cff/write.go's
// encodeIndex-style blob assembly.
func writeIndex(items [][]byte) []byte {
	if len(items) == 0 {
		return []byte{0, 0}
	}

	offsets := make([]uint32, len(items)+1)
	total := uint32(1)
	for i, item := range items {
		offsets[i] = total
		total += uint32(len(item))
	}
	offsets[len(items)] = total

	offSize := offSizeFor(total)

	out := make([]byte, 0, 3+int(offSize)*(len(items)+1)+int(total)-1)
	out = append(out, byte(len(items)>>8), byte(len(items)), offSize)
	for _, off := range offsets {
		out = appendOffset(out, off, offSize)
	}
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func offSizeFor(maxOffset uint32) byte {
	switch {
	case maxOffset <= 0xFF:
		return 1
	case maxOffset <= 0xFFFF:
		return 2
	case maxOffset <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

func appendOffset(out []byte, v uint32, offSize byte) []byte {
	switch offSize {
	case 1:
		return append(out, byte(v))
	case 2:
		return append(out, byte(v>>8), byte(v))
	case 3:
		return append(out, byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}
