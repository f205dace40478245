package cffio

import (
	"fmt"

	"github.com/go-cff/subr"
)

// Rewrite serialises out (the result of running subr.Run over
// f.ToGlyphSet()) back into a CFF table: new CharStrings, a new
// Global Subr INDEX, one new Local Subr INDEX per fd (with each fd's
// Private DICT's Subrs offset updated to match), and everything else
// — Name INDEX, top DICT operators besides CharStrings/Private/FDArray/
// FDSelect offsets, String INDEX, charset, encoding — carried through
// unchanged from the parsed font, mirroring cff/write.go's blob
// assembly and two-pass offset patching.
func (f *Font) Rewrite(out subr.Output) ([]byte, error) {
	charStrings := make([][]byte, len(f.charStrings))
	for i := range charStrings {
		charStrings[i] = emit(out.GlyphEncodings[fmt.Sprintf("glyph%05d", i)])
	}
	globalSubrs := make([][]byte, len(out.GSubrs))
	for i, prog := range out.GSubrs {
		globalSubrs[i] = emit(prog)
	}
	globalIdxBytes := writeIndex(globalSubrs)
	csIndexBytes := writeIndex(charStrings)

	privateSections, err := f.encodePrivateSections(out)
	if err != nil {
		return nil, err
	}

	// The top DICT's own length depends on the operand widths of the
	// offsets it stores, which in turn depend on where it ends — so
	// layout runs twice: a first pass with a placeholder top DICT
	// INDEX length to learn section offsets, then a real pass once
	// the top DICT has been encoded against those offsets.
	topDictLen := len(writeIndex([][]byte{encodeDict(f.topDict, f.topOrder)}))
	for pass := 0; pass < 2; pass++ {
		base := len(f.header) + topDictLen
		stringIdxAt := base
		globalSubrAt := stringIdxAt + len(f.stringIdx)
		csAt := globalSubrAt + len(globalIdxBytes)
		fdArrayAt := csAt + len(csIndexBytes)

		topDict := make(map[int][]int32, len(f.topDict)+2)
		for k, v := range f.topDict {
			topDict[k] = v
		}
		topDict[dictCharStrings] = []int32{int32(csAt)}

		var fdArrayBytes, fdSelectBytes []byte
		if len(f.fds) > 1 {
			fdArrayBytes, fdSelectBytes, _ = f.encodeCID(fdArrayAt, privateSections)
			topDict[dictFDArray] = []int32{int32(fdArrayAt)}
			topDict[dictFDSelect] = []int32{int32(fdArrayAt + len(fdArrayBytes))}
		} else if priv, ok := f.topDict[dictPrivate]; ok && len(priv) == 2 {
			privateAt := fdArrayAt
			topDict[dictPrivate] = []int32{int32(len(privateSections[0])), int32(privateAt)}
		}

		topDictBytes := encodeDict(topDict, f.topOrder)
		topDictIdxBytes := writeIndex([][]byte{topDictBytes})
		if pass == 0 {
			topDictLen = len(topDictIdxBytes)
			continue
		}

		var result []byte
		result = append(result, f.header...)
		result = append(result, topDictIdxBytes...)
		result = append(result, f.stringIdx...)
		result = append(result, globalIdxBytes...)
		result = append(result, csIndexBytes...)
		result = append(result, fdArrayBytes...)
		result = append(result, fdSelectBytes...)
		for _, p := range privateSections {
			result = append(result, p...)
		}
		return result, nil
	}
	panic("unreachable")
}

// encodePrivateSections rebuilds each fd's Private DICT (with an
// updated Subrs offset, relative to that Private DICT's own start per
// the CFF spec) followed by its new Local Subr INDEX.
func (f *Font) encodePrivateSections(out subr.Output) ([][]byte, error) {
	sections := make([][]byte, len(f.fds))
	for fd := range f.fds {
		var localSubrs [][]byte
		if fd < len(out.LSubrs) {
			localSubrs = make([][]byte, len(out.LSubrs[fd]))
			for i, prog := range out.LSubrs[fd] {
				localSubrs[i] = emit(prog)
			}
		}

		privDict, err := decodeDict(f.fds[fd].privateRaw)
		if err != nil {
			return nil, err
		}
		delete(privDict, 19)
		var order []int
		for op := range privDict {
			order = append(order, op)
		}

		subrIdx := writeIndex(localSubrs)
		var privBytes []byte
		if len(localSubrs) > 0 {
			order = append(order, 19)
			// Subrs offset is relative to the Private DICT's own
			// start, so it equals that DICT's own encoded length —
			// encode once to learn the length, then again with the
			// real value spliced in.
			privDict[19] = []int32{0}
			privBytes = encodeDict(privDict, order)
			privDict[19] = []int32{int32(len(privBytes))}
			privBytes = encodeDict(privDict, order)
		} else {
			privBytes = encodeDict(privDict, order)
		}

		sections[fd] = append(append([]byte(nil), privBytes...), subrIdx...)
	}
	return sections, nil
}

// encodeCID builds the FDArray and FDSelect tables for a CID-keyed
// font, given the absolute offset the FDArray will start at and the
// already-encoded Private DICT+Local Subr sections each FD entry
// points to (which themselves begin right after FDSelect).
func (f *Font) encodeCID(fdArrayAt int, privateSections [][]byte) (fdArrayBytes, fdSelectBytes []byte, privateAt int) {
	fdOf := func(g int) int { return f.fdSelect(g) }
	fdSelectBytes = encodeFDSelect(fdOf, len(f.charStrings))

	fdDicts := make([][]byte, len(f.fds))
	// The FDArray INDEX's own length depends on the operand widths of
	// the Private DICT offsets it stores, which in turn depend on
	// where the FDArray ends — so, as with the top DICT, this runs
	// twice: once with a placeholder offset to learn fdArrayBytes's
	// length, then again with the real offsets.
	privateAt = fdArrayAt + len(fdSelectBytes)
	for pass := 0; pass < 2; pass++ {
		offset := privateAt
		for i, sec := range privateSections {
			fdDicts[i] = encodeDict(map[int][]int32{dictPrivate: {int32(len(sec)), int32(offset)}}, []int{dictPrivate})
			offset += len(sec)
		}
		fdArrayBytes = writeIndex(fdDicts)
		privateAt = fdArrayAt + len(fdArrayBytes) + len(fdSelectBytes)
	}
	return fdArrayBytes, fdSelectBytes, privateAt
}
