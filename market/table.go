package market

import "encoding/binary"

// tableEntry is the only payload the substring table exposes to
// parallel workers: an index (for skip_idx comparisons), a price, and
// the substring itself so Optimize can attach it to a CallSite.
type tableEntry struct {
	Index int
	Price float64
	Sub   *Substring
}

// PriceTable maps a code sequence, by value, to its table entry. Keys
// are a byte-exact encoding of the []int32 value so two substrings
// with equal Value never collide with unrelated ones (§5, "hash over
// the slice").
type PriceTable map[string]tableEntry

func keyOf(codes []int32) string {
	buf := make([]byte, 4*len(codes))
	for i, c := range codes {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(c))
	}
	return string(buf)
}

// BuildTable snapshots subs into a read-only table keyed by value,
// the only state the parallel self-encoding and charstring-encoding
// stages may see.
func BuildTable(subs []*Substring, corpus [][]int32) PriceTable {
	t := make(PriceTable, len(subs))
	for _, s := range subs {
		t[keyOf(s.Value(corpus))] = tableEntry{Index: s.Index, Price: s.Price, Sub: s}
	}
	return t
}
