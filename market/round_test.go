package market

import (
	"testing"

	"github.com/go-cff/subr/candidate"
	"github.com/go-cff/subr/suffixidx"
)

// TestRunS3SelectsSharedSubstring runs the full marketplace over two
// glyphs sharing an identical 20-token sequence (scenario S3) and
// checks a surviving substring ends up called from both glyphs.
func TestRunS3SelectsSharedSubstring(t *testing.T) {
	seq := make([]int32, 20)
	for i := range seq {
		seq[i] = int32(i) // no repeats inside the sequence itself
	}
	corpus := [][]int32{append([]int32{}, seq...), append([]int32{}, seq...)}

	idx := suffixidx.Build(corpus)
	cands := candidate.Extract(idx, corpus, unitCost, candidate.DefaultOptions())
	if len(cands) == 0 {
		t.Fatal("expected at least one candidate")
	}

	result := Run(corpus, cands, unitCost, DefaultOptions())
	if len(result.Substrings) == 0 {
		t.Fatal("expected at least one surviving substring")
	}

	var best *Substring
	for _, s := range result.Substrings {
		if s.Length == 20 {
			best = s
		}
	}
	if best == nil {
		t.Fatalf("expected the full 20-token substring to survive, got %d survivors", len(result.Substrings))
	}
	if best.Usages != 2 {
		t.Errorf("usages = %d, want 2", best.Usages)
	}

	for g, enc := range result.GlyphEncodings {
		found := false
		for _, cs := range enc {
			if cs.Sub == best {
				found = true
			}
		}
		if !found {
			t.Errorf("glyph %d does not call the surviving substring: %+v", g, enc)
		}
	}
}

// TestRunS1NoOp checks that a program with only negative-saving
// repeats ends up with no surviving substrings and glyph encodings
// that are pure literal runs.
func TestRunS1NoOp(t *testing.T) {
	corpus := [][]int32{{0, 1, 2, 0, 1, 2}}
	idx := suffixidx.Build(corpus)
	cands := candidate.Extract(idx, corpus, unitCost, candidate.DefaultOptions())

	result := Run(corpus, cands, unitCost, DefaultOptions())
	if len(result.Substrings) != 0 {
		t.Errorf("expected no survivors, got %+v", result.Substrings)
	}
	for _, enc := range result.GlyphEncodings {
		if len(enc) != 0 {
			t.Errorf("expected no call sites, got %+v", enc)
		}
	}
}

// TestRunTestModeSkipsPruning checks that test_mode keeps non-positive
// savings substrings alive through every round.
func TestRunTestModeSkipsPruning(t *testing.T) {
	corpus := [][]int32{{0, 1, 2, 0, 1, 2}}
	idx := suffixidx.Build(corpus)

	opts := candidate.DefaultOptions()
	opts.CheckPositive = false
	cands := candidate.Extract(idx, corpus, unitCost, opts)
	if len(cands) == 0 {
		t.Fatal("expected a candidate in test mode")
	}

	mo := DefaultOptions()
	mo.TestMode = true
	result := Run(corpus, cands, unitCost, mo)
	if len(result.Substrings) != len(cands) {
		t.Errorf("test mode pruned substrings: got %d, want %d", len(result.Substrings), len(cands))
	}
}
