// seehuhn.de/go/otlayout - an OpenType GPOS/GSUB layout engine
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package gtab

import (
	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/classdef"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/parser"
)

// matchChain tests the backtrack, input and lookahead predicates of a
// chained-context rule against ctx.Seq around position a, and reports
// the matched input positions (including a itself) on success.  inPreds
// covers only the input glyphs after the first, since the first is
// already fixed by whatever indexed into this rule.
func matchChain(ctx *Context, a, b int, btPreds, inPreds, laPreds []glyphPred) ([]int, bool) {
	if _, _, ok := matchGlyphs(ctx, a-1, -1, -1, btPreds); !ok {
		return nil, false
	}
	rest, next, ok := matchGlyphs(ctx, a+1, 1, b, inPreds)
	if !ok {
		return nil, false
	}
	if _, _, ok := matchGlyphs(ctx, next, 1, b, laPreds); !ok {
		return nil, false
	}
	matched := append([]int{a}, rest...)
	return matched, true
}

func readGlyphIDSlice(p *parser.Parser, n int) ([]glyph.ID, error) {
	res := make([]glyph.ID, n)
	for i := range res {
		gid, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = glyph.ID(gid)
	}
	return res, nil
}

// chainRule is one rule of a format 1 (glyph sequence) chained-context
// rule set.
type chainRule struct {
	Backtrack []glyph.ID
	Input     []glyph.ID // excludes the first glyph, fixed by coverage index
	Lookahead []glyph.ID
	Actions   SeqLookupRecords
}

func readChainRuleSet(p *parser.Parser, pos int64) ([]chainRule, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	rules := make([]chainRule, len(offsets))
	for i, offs := range offsets {
		err = p.SeekPos(pos + int64(offs))
		if err != nil {
			return nil, err
		}
		backtrackCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		backtrack, err := readGlyphIDSlice(p, int(backtrackCount))
		if err != nil {
			return nil, err
		}
		inputCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if inputCount == 0 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "chained sequence rule with zero input glyphs",
			}
		}
		input, err := readGlyphIDSlice(p, int(inputCount)-1)
		if err != nil {
			return nil, err
		}
		lookaheadCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookahead, err := readGlyphIDSlice(p, int(lookaheadCount))
		if err != nil {
			return nil, err
		}
		seqLookupCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		actions, err := readSeqLookupRecords(p, int(seqLookupCount))
		if err != nil {
			return nil, err
		}
		rules[i] = chainRule{
			Backtrack: backtrack,
			Input:     input,
			Lookahead: lookahead,
			Actions:   actions,
		}
	}
	return rules, nil
}

// ChainedSeqContext1 is the format 1 (glyph sequence) chained-context
// subtable shared by GPOS lookup type 8 and GSUB lookup type 6.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-1-simple-glyph-contexts
type ChainedSeqContext1 struct {
	Cov      coverage.Table
	RuleSets [][]chainRule // indexed by coverage index
}

func readChainedSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	// The format field (2 bytes) has already been consumed by the caller.
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	err = p.SeekPos(subtablePos + 4)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	ruleSets := make([][]chainRule, len(offsets))
	for i, offs := range offsets {
		if offs == 0 {
			continue
		}
		ruleSets[i], err = readChainRuleSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return &ChainedSeqContext1{Cov: cov, RuleSets: ruleSets}, nil
}

func (l *ChainedSeqContext1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.RuleSets) {
		return -1
	}
	for _, rule := range l.RuleSets[idx] {
		btPreds := make([]glyphPred, len(rule.Backtrack))
		for i, gid := range rule.Backtrack {
			btPreds[i] = glyphEqual(gid)
		}
		inPreds := make([]glyphPred, len(rule.Input))
		for i, gid := range rule.Input {
			inPreds[i] = glyphEqual(gid)
		}
		laPreds := make([]glyphPred, len(rule.Lookahead))
		for i, gid := range rule.Lookahead {
			laPreds[i] = glyphEqual(gid)
		}
		matched, ok := matchChain(ctx, a, b, btPreds, inPreds, laPreds)
		if !ok {
			continue
		}
		return runRule(ctx, matched, rule.Actions)
	}
	return -1
}

// chainClassRule is one rule of a format 2 (class-based) chained-context
// rule set.
type chainClassRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Actions   SeqLookupRecords
}

func readUint16SliceN(p *parser.Parser, n int) ([]uint16, error) {
	res := make([]uint16, n)
	for i := range res {
		v, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

func readChainClassRuleSet(p *parser.Parser, pos int64) ([]chainClassRule, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	rules := make([]chainClassRule, len(offsets))
	for i, offs := range offsets {
		err = p.SeekPos(pos + int64(offs))
		if err != nil {
			return nil, err
		}
		backtrackCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		backtrack, err := readUint16SliceN(p, int(backtrackCount))
		if err != nil {
			return nil, err
		}
		inputCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if inputCount == 0 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "chained class sequence rule with zero input glyphs",
			}
		}
		input, err := readUint16SliceN(p, int(inputCount)-1)
		if err != nil {
			return nil, err
		}
		lookaheadCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookahead, err := readUint16SliceN(p, int(lookaheadCount))
		if err != nil {
			return nil, err
		}
		seqLookupCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		actions, err := readSeqLookupRecords(p, int(seqLookupCount))
		if err != nil {
			return nil, err
		}
		rules[i] = chainClassRule{
			Backtrack: backtrack,
			Input:     input,
			Lookahead: lookahead,
			Actions:   actions,
		}
	}
	return rules, nil
}

// ChainedSeqContext2 is the format 2 (class-based) chained-context
// subtable shared by GPOS lookup type 8 and GSUB lookup type 6.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-2-class-based-glyph-contexts
type ChainedSeqContext2 struct {
	Cov               coverage.Table
	BacktrackClassDef classdef.Table
	InputClassDef     classdef.Table
	LookaheadClassDef classdef.Table
	ClassRuleSet      map[uint16][]chainClassRule
}

func readChainedSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	// The format field (2 bytes) has already been consumed by the caller.
	buf, err := p.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	backtrackClassDefOffset := int64(buf[2])<<8 | int64(buf[3])
	inputClassDefOffset := int64(buf[4])<<8 | int64(buf[5])
	lookaheadClassDefOffset := int64(buf[6])<<8 | int64(buf[7])

	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	backtrackCD, err := classdef.Read(p, subtablePos+backtrackClassDefOffset)
	if err != nil {
		return nil, err
	}
	inputCD, err := classdef.Read(p, subtablePos+inputClassDefOffset)
	if err != nil {
		return nil, err
	}
	lookaheadCD, err := classdef.Read(p, subtablePos+lookaheadClassDefOffset)
	if err != nil {
		return nil, err
	}

	err = p.SeekPos(subtablePos + 10)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	classRuleSet := make(map[uint16][]chainClassRule)
	for class, offs := range offsets {
		if offs == 0 {
			continue
		}
		rules, err := readChainClassRuleSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		classRuleSet[uint16(class)] = rules
	}
	return &ChainedSeqContext2{
		Cov:               cov,
		BacktrackClassDef: backtrackCD,
		InputClassDef:     inputCD,
		LookaheadClassDef: lookaheadCD,
		ClassRuleSet:      classRuleSet,
	}, nil
}

func (l *ChainedSeqContext2) apply(ctx *Context, a, b int) int {
	if !l.Cov.Contains(ctx.Seq[a].GID) {
		return -1
	}
	firstClass := l.InputClassDef.Class(ctx.Seq[a].GID)
	for _, rule := range l.ClassRuleSet[firstClass] {
		btPreds := make([]glyphPred, len(rule.Backtrack))
		for i, class := range rule.Backtrack {
			btPreds[i] = classEqual(l.BacktrackClassDef, class)
		}
		inPreds := make([]glyphPred, len(rule.Input))
		for i, class := range rule.Input {
			inPreds[i] = classEqual(l.InputClassDef, class)
		}
		laPreds := make([]glyphPred, len(rule.Lookahead))
		for i, class := range rule.Lookahead {
			laPreds[i] = classEqual(l.LookaheadClassDef, class)
		}
		matched, ok := matchChain(ctx, a, b, btPreds, inPreds, laPreds)
		if !ok {
			continue
		}
		return runRule(ctx, matched, rule.Actions)
	}
	return -1
}

// ChainedSeqContext3 is the format 3 (coverage array) chained-context
// subtable shared by GPOS lookup type 8 and GSUB lookup type 6: the
// backtrack, input and lookahead coverage arrays name the rule
// directly, with no per-first-glyph indirection.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-3-coverage-based-glyph-contexts
type ChainedSeqContext3 struct {
	Backtrack []coverage.Table
	Input     []coverage.Table
	Lookahead []coverage.Table
	Actions   SeqLookupRecords
}

func readChainedSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	// The format field (2 bytes) has already been consumed by the caller.
	backtrackCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrackOffsets, err := readUint16SliceN(p, int(backtrackCount))
	if err != nil {
		return nil, err
	}
	inputCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	inputOffsets, err := readUint16SliceN(p, int(inputCount))
	if err != nil {
		return nil, err
	}
	lookaheadCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookaheadOffsets, err := readUint16SliceN(p, int(lookaheadCount))
	if err != nil {
		return nil, err
	}
	seqLookupCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	actions, err := readSeqLookupRecords(p, int(seqLookupCount))
	if err != nil {
		return nil, err
	}

	readAll := func(offsets []uint16) ([]coverage.Table, error) {
		res := make([]coverage.Table, len(offsets))
		for i, offs := range offsets {
			res[i], err = coverage.Read(p, subtablePos+int64(offs))
			if err != nil {
				return nil, err
			}
		}
		return res, nil
	}
	backtrack, err := readAll(backtrackOffsets)
	if err != nil {
		return nil, err
	}
	input, err := readAll(inputOffsets)
	if err != nil {
		return nil, err
	}
	lookahead, err := readAll(lookaheadOffsets)
	if err != nil {
		return nil, err
	}

	return &ChainedSeqContext3{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

func (l *ChainedSeqContext3) apply(ctx *Context, a, b int) int {
	if len(l.Input) == 0 {
		return -1
	}
	btPreds := make([]glyphPred, len(l.Backtrack))
	for i, cov := range l.Backtrack {
		btPreds[i] = coverageContains(cov)
	}
	inPreds := make([]glyphPred, len(l.Input))
	for i, cov := range l.Input {
		inPreds[i] = coverageContains(cov)
	}
	laPreds := make([]glyphPred, len(l.Lookahead))
	for i, cov := range l.Lookahead {
		laPreds[i] = coverageContains(cov)
	}

	if _, _, ok := matchGlyphs(ctx, a-1, -1, -1, btPreds); !ok {
		return -1
	}
	matched, next, ok := matchGlyphs(ctx, a, 1, b, inPreds)
	if !ok {
		return -1
	}
	if _, _, ok := matchGlyphs(ctx, next, 1, b, laPreds); !ok {
		return -1
	}
	return runRule(ctx, matched, l.Actions)
}
