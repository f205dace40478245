// Package assemble turns the marketplace's surviving substrings and
// tentative glyph encodings into final gsubrs/lsubrs tables and
// rewritten glyph programs: reachability, survivor filtering, budgeted
// table assignment, depth control, bias-aware reordering, and program
// emission (§4.5).
package assemble

import (
	"sort"

	"github.com/go-cff/subr/market"
	"github.com/go-cff/subr/token"
)

// Output is the assembler's result: every glyph's final rewritten
// program, the global subr table, and one local subr table per fd.
// GlobalBias and LocalBias are the biases each table's calling
// convention used, needed to decode a call operand back into a table
// index (operand + bias = position).
type Output struct {
	GlyphPrograms [][]token.Token
	GSubrs        [][]token.Token
	LSubrs        [][][]token.Token
	GlobalBias    int
	LocalBias     []int
}

// Assemble runs the full assembly pipeline over substrings (as left by
// a completed market.Run) and the final round's glyph encodings.
// fdSelect may be nil for a single-fd font, in which case fdLen is
// forced to 1.
func Assemble(model *token.Model, corpus [][]int32, glyphEnc [][]market.CallSite, substrings []*market.Substring, fdSelect FDSelectFn, fdLen int, opts Options) (Output, error) {
	if fdSelect == nil {
		fdLen = 1
	}

	reachability(glyphEnc, fdSelect)
	survivors := filterSurvivors(substrings, opts)
	globals, locals := assign(survivors, fdLen, opts)
	applyDepthControl(&globals, locals, opts)

	globalBias := reorderTable(globals)
	localBias := make([]int, fdLen)
	for fd := range locals {
		localBias[fd] = reorderTable(locals[fd])
	}

	if len(globals) > opts.NSubrsLimit {
		return Output{}, &InvariantViolationError{Reason: "gsubrs exceeds nsubrs_limit"}
	}
	for _, table := range locals {
		if len(table) > opts.NSubrsLimit {
			return Output{}, &InvariantViolationError{Reason: "lsubrs table exceeds nsubrs_limit"}
		}
	}
	if err := checkInvariants(globals, locals); err != nil {
		return Output{}, err
	}

	buildFlattenPrograms(model, corpus, substrings, globalBias, localBias)

	gsubrs := make([][]token.Token, len(globals))
	for i, s := range globals {
		prog := buildProgram(model, s.Value(corpus), s.Encoding, globalBias, 0)
		gsubrs[i] = finalizeSubrProgram(prog)
	}

	lsubrs := make([][][]token.Token, fdLen)
	for fd, table := range locals {
		lsubrs[fd] = make([][]token.Token, len(table))
		for i, s := range table {
			prog := buildProgram(model, s.Value(corpus), s.Encoding, globalBias, localBias[fd])
			lsubrs[fd][i] = finalizeSubrProgram(prog)
		}
	}

	glyphPrograms := make([][]token.Token, len(corpus))
	for g := range corpus {
		fd := fdOf(fdSelect, g)
		glyphPrograms[g] = buildProgram(model, corpus[g], glyphEnc[g], globalBias, localBias[fd])
	}

	return Output{
		GlyphPrograms: glyphPrograms,
		GSubrs:        gsubrs,
		LSubrs:        lsubrs,
		GlobalBias:    globalBias,
		LocalBias:     localBias,
	}, nil
}

// buildFlattenPrograms builds Program for every substring still
// flagged Flatten, in ascending length order so that a longer flatten
// substring's callees (always shorter) already have their Program
// built when it needs to splice them in (§4.5.2).
func buildFlattenPrograms(model *token.Model, corpus [][]int32, substrings []*market.Substring, globalBias int, localBias []int) {
	var flat []*market.Substring
	for _, s := range substrings {
		if s.Flatten {
			flat = append(flat, s)
		}
	}
	sort.SliceStable(flat, func(i, j int) bool { return flat[i].Length < flat[j].Length })

	for _, s := range flat {
		fd := 0
		for k := range s.FDIdx {
			fd = k
			break
		}
		s.Program = buildProgram(model, s.Value(corpus), s.Encoding, globalBias, localBias[fd])
	}
}

// checkInvariants enforces the assertion in §4.5.2: a non-global
// substring called from some body belongs to exactly that body's fd
// (or the caller is itself global, in which case it may only call
// other globals or flatten substrings).
func checkInvariants(globals []*market.Substring, locals [][]*market.Substring) error {
	for _, s := range globals {
		if err := checkCallees(s, -1); err != nil {
			return err
		}
	}
	for fd, table := range locals {
		for _, s := range table {
			if err := checkCallees(s, fd); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkCallees(s *market.Substring, callerFD int) error {
	for _, cs := range s.Encoding {
		callee := cs.Sub
		if callee.Flatten || callee.Global {
			continue
		}
		if callerFD == -1 {
			return &InvariantViolationError{Reason: "global subr calls a local subr"}
		}
		if !(len(callee.FDIdx) == 1 && callee.FDIdx[callerFD]) {
			return &InvariantViolationError{Reason: "local subr called across fd boundary"}
		}
	}
	return nil
}
