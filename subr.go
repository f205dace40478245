package subr

import (
	"github.com/go-cff/subr/assemble"
	"github.com/go-cff/subr/candidate"
	"github.com/go-cff/subr/market"
	"github.com/go-cff/subr/suffixidx"
	"github.com/go-cff/subr/token"
)

// Options configures a Run, collecting every knob in §6's
// configuration table.
type Options struct {
	NRounds       int
	Alpha         float64
	K             float64
	CallCost      int
	SubrOverhead  int
	MinFreq       int
	TestMode      bool
	NSubrsLimit   int
	SubrNestLimit int
	SingleProcess bool
	Processes     int
	ChunkRatio    float64
}

// DefaultOptions returns the specification's defaults.
func DefaultOptions() Options {
	return Options{
		NRounds:       4,
		Alpha:         0.1,
		K:             0.1,
		CallCost:      5,
		SubrOverhead:  3,
		MinFreq:       2,
		NSubrsLimit:   65533,
		SubrNestLimit: 10,
		Processes:     12,
		ChunkRatio:    0.1,
	}
}

// Output is Run's result: each glyph's final rewritten program by
// name, the global subr table, one local subr table per fd, and
// summary statistics.
type Output struct {
	GlyphEncodings map[string][]token.Token
	GSubrs         [][]token.Token
	LSubrs         [][][]token.Token
	Stats          Stats

	globalBias int
	localBias  []int
}

// Run compresses glyphs into subroutines: it builds the alphabet,
// extracts candidates from the suffix/LCP index, runs the marketplace
// for opts.NRounds, and assembles the survivors into final tables.
func Run(glyphs GlyphSet, fdSelect FDSelectFn, fdLen int, opts Options) (Output, error) {
	model := token.NewModel()
	corpus := make([][]int32, len(glyphs.Programs))
	glyphBytesBefore := 0
	for i, prog := range glyphs.Programs {
		codes, err := model.Ingest(prog)
		if err != nil {
			return Output{}, err
		}
		raw := make([]int32, len(codes))
		for j, c := range codes {
			raw[j] = int32(c)
			glyphBytesBefore += model.Cost(c)
		}
		corpus[i] = raw
	}

	costOf := func(code int32) int { return model.Cost(token.Code(code)) }

	idx := suffixidx.Build(corpus)
	cands := candidate.Extract(idx, corpus, costOf, candidate.Options{
		MinFreq:       opts.MinFreq,
		CheckPositive: !opts.TestMode,
		CallCost:      opts.CallCost,
		SubrOverhead:  opts.SubrOverhead,
	})

	result := market.Run(corpus, cands, costOf, market.Options{
		NRounds:       opts.NRounds,
		Alpha:         opts.Alpha,
		K:             opts.K,
		CallCost:      opts.CallCost,
		SubrOverhead:  opts.SubrOverhead,
		TestMode:      opts.TestMode,
		SingleProcess: opts.SingleProcess,
		Processes:     opts.Processes,
		ChunkRatio:    opts.ChunkRatio,
	})

	asmOut, err := assemble.Assemble(model, corpus, result.GlyphEncodings, result.Substrings, fdSelect, fdLen, assemble.Options{
		NSubrsLimit:   opts.NSubrsLimit,
		SubrNestLimit: opts.SubrNestLimit,
		CallCost:      opts.CallCost,
		SubrOverhead:  opts.SubrOverhead,
	})
	if err != nil {
		return Output{}, err
	}

	encodings := make(map[string][]token.Token, len(glyphs.Names))
	glyphBytesAfter := 0
	for i, name := range glyphs.Names {
		prog := asmOut.GlyphPrograms[i]
		encodings[name] = prog
		glyphBytesAfter += programCost(prog)
	}

	subrBytes := 0
	for _, p := range asmOut.GSubrs {
		subrBytes += programCost(p)
	}
	numL := make([]int, len(asmOut.LSubrs))
	for fd, table := range asmOut.LSubrs {
		numL[fd] = len(table)
		for _, p := range table {
			subrBytes += programCost(p)
		}
	}

	return Output{
		GlyphEncodings: encodings,
		GSubrs:         asmOut.GSubrs,
		LSubrs:         asmOut.LSubrs,
		Stats: Stats{
			GlyphBytesBefore: glyphBytesBefore,
			GlyphBytesAfter:  glyphBytesAfter,
			SubrBytes:        subrBytes,
			NumGSubrs:        len(asmOut.GSubrs),
			NumLSubrs:        numL,
		},
		globalBias: asmOut.GlobalBias,
		localBias:  asmOut.LocalBias,
	}, nil
}

func programCost(prog []token.Token) int {
	total := 0
	for _, t := range prog {
		total += t.Cost()
	}
	return total
}
