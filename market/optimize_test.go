package market

import "testing"

func unitCost(code int32) int { return 1 }

// TestOptimizePrefersCheaperCall checks that when a substring's price
// undercuts the literal token cost, Optimize calls it instead of
// emitting the tokens verbatim.
func TestOptimizePrefersCheaperCall(t *testing.T) {
	codes := []int32{1, 2, 3, 4, 5}
	called := &Substring{Index: 0, Length: 3}
	table := PriceTable{
		keyOf([]int32{2, 3, 4}): {Index: 0, Price: 1, Sub: called},
	}

	enc, cost := Optimize(codes, table, unitCost, -1)
	if len(enc) != 1 {
		t.Fatalf("got %d call sites, want 1: %+v", len(enc), enc)
	}
	if enc[0].Offset != 1 || enc[0].Sub != called {
		t.Errorf("call site = %+v, want offset 1 calling the substring", enc[0])
	}
	// literal(1) + call(1) + literal(5) = 1+1+1 = 3
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
}

// TestOptimizeSkipsForbiddenIndex checks that skipIdx excludes a
// substring from its own self-encoding (the skip_idx contract).
func TestOptimizeSkipsForbiddenIndex(t *testing.T) {
	codes := []int32{9, 9, 9}
	self := &Substring{Index: 7, Length: 3}
	table := PriceTable{
		keyOf([]int32{9, 9, 9}): {Index: 7, Price: 1, Sub: self},
	}

	enc, cost := Optimize(codes, table, unitCost, 7)
	if len(enc) != 0 {
		t.Fatalf("expected no call sites when the only match is skipped, got %+v", enc)
	}
	if cost != 3 {
		t.Errorf("cost = %v, want 3 (literal emission)", cost)
	}
}

// TestOptimizeEmptyInput checks the n=0 boundary.
func TestOptimizeEmptyInput(t *testing.T) {
	enc, cost := Optimize(nil, PriceTable{}, unitCost, -1)
	if enc != nil || cost != 0 {
		t.Errorf("Optimize(nil) = (%v, %v), want (nil, 0)", enc, cost)
	}
}

// TestOptimizeTieBreakSmallestJ checks that when two table entries of
// different length both produce the minimal cost, the shorter/earlier
// one wins (§4.4.1 tie-break: smallest j).
func TestOptimizeTieBreakSmallestJ(t *testing.T) {
	codes := []int32{1, 2, 3}
	short := &Substring{Index: 0, Length: 2}
	long := &Substring{Index: 1, Length: 3}
	table := PriceTable{
		keyOf([]int32{1, 2}):    {Index: 0, Price: 2, Sub: short},
		keyOf([]int32{1, 2, 3}): {Index: 1, Price: 3, Sub: long},
	}

	enc, _ := Optimize(codes, table, unitCost, -1)
	if len(enc) == 0 || enc[0].Sub != short {
		t.Errorf("expected the shorter (smaller j) tie-winner, got %+v", enc)
	}
}
