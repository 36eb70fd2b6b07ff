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

// glyphPred tests whether a glyph satisfies one position of a
// contextual or chained-context rule.
type glyphPred func(glyph.ID) bool

// matchGlyphs walks ctx.Seq from pos in steps of dir, skipping over
// glyphs excluded by the active lookup flags, and tests each kept
// glyph against the next predicate in preds.  It stops and reports
// failure as soon as a predicate is not satisfied or the walk would
// cross limit (an exclusive bound: len(ctx.Seq) when walking forward,
// -1 when walking backward).  On success it returns the matched
// positions, in the order visited, and the position immediately past
// the last match.
func matchGlyphs(ctx *Context, pos, dir, limit int, preds []glyphPred) ([]int, int, bool) {
	if len(preds) == 0 {
		return nil, pos, true
	}
	positions := make([]int, 0, len(preds))
	for _, pred := range preds {
		for pos != limit && !ctx.Keep.Keep(ctx.Seq[pos].GID) {
			pos += dir
		}
		if pos == limit || !pred(ctx.Seq[pos].GID) {
			return nil, 0, false
		}
		positions = append(positions, pos)
		pos += dir
	}
	return positions, pos, true
}

func glyphEqual(gid glyph.ID) glyphPred {
	return func(g glyph.ID) bool { return g == gid }
}

func classEqual(cd classdef.Table, class uint16) glyphPred {
	return func(g glyph.ID) bool { return cd.Class(g) == class }
}

func coverageContains(cov coverage.Table) glyphPred {
	return func(g glyph.ID) bool { return cov.Contains(g) }
}

// runRule invokes the nested lookups of a matched contextual rule and
// returns the position to continue scanning from.  matched holds the
// absolute positions of every input glyph, in ascending order.
func runRule(ctx *Context, matched []int, actions SeqLookupRecords) int {
	delta := ctx.runNestedActions(matched, actions)
	last := matched[len(matched)-1] + 1 + delta
	if last < 0 {
		last = 0
	}
	return last
}

// seqRule is one rule of a format 1 (glyph sequence) contextual rule
// set: the glyphs after the first (which is already fixed by the
// rule set's coverage index) plus the lookups to invoke on a match.
type seqRule struct {
	Input   []glyph.ID
	Actions SeqLookupRecords
}

func readSeqRuleSet(p *parser.Parser, pos int64) ([]seqRule, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	rules := make([]seqRule, len(offsets))
	for i, offs := range offsets {
		err = p.SeekPos(pos + int64(offs))
		if err != nil {
			return nil, err
		}
		glyphCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		seqLookupCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if glyphCount == 0 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "sequence rule with zero glyphs",
			}
		}
		input := make([]glyph.ID, glyphCount-1)
		for j := range input {
			gid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			input[j] = glyph.ID(gid)
		}
		actions, err := readSeqLookupRecords(p, int(seqLookupCount))
		if err != nil {
			return nil, err
		}
		rules[i] = seqRule{Input: input, Actions: actions}
	}
	return rules, nil
}

// SeqContext1 is the format 1 (glyph sequence) contextual subtable
// shared by GPOS lookup type 7 and GSUB lookup type 5.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-1-simple-glyph-contexts
type SeqContext1 struct {
	Cov      coverage.Table
	RuleSets [][]seqRule // indexed by coverage index
}

func readSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	// The caller has already consumed the format field (2 bytes); only
	// the coverage offset remains before the rule set offset array.
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
	ruleSets := make([][]seqRule, len(offsets))
	for i, offs := range offsets {
		if offs == 0 {
			continue
		}
		ruleSets[i], err = readSeqRuleSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return &SeqContext1{Cov: cov, RuleSets: ruleSets}, nil
}

func (l *SeqContext1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.RuleSets) {
		return -1
	}
	for _, rule := range l.RuleSets[idx] {
		preds := make([]glyphPred, len(rule.Input))
		for i, gid := range rule.Input {
			preds[i] = glyphEqual(gid)
		}
		rest, _, ok := matchGlyphs(ctx, a+1, 1, b, preds)
		if !ok {
			continue
		}
		matched := append([]int{a}, rest...)
		return runRule(ctx, matched, rule.Actions)
	}
	return -1
}

// classSeqRule is one rule of a format 2 (class-based) contextual rule
// set.
type classSeqRule struct {
	Input   []uint16
	Actions SeqLookupRecords
}

func readClassSeqRuleSet(p *parser.Parser, pos int64) ([]classSeqRule, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	rules := make([]classSeqRule, len(offsets))
	for i, offs := range offsets {
		err = p.SeekPos(pos + int64(offs))
		if err != nil {
			return nil, err
		}
		glyphCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		seqLookupCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if glyphCount == 0 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "class sequence rule with zero glyphs",
			}
		}
		input := make([]uint16, glyphCount-1)
		for j := range input {
			input[j], err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}
		actions, err := readSeqLookupRecords(p, int(seqLookupCount))
		if err != nil {
			return nil, err
		}
		rules[i] = classSeqRule{Input: input, Actions: actions}
	}
	return rules, nil
}

// SeqContext2 is the format 2 (class-based) contextual subtable shared
// by GPOS lookup type 7 and GSUB lookup type 5.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-2-class-based-glyph-contexts
type SeqContext2 struct {
	Cov          coverage.Table
	ClassDef     classdef.Table
	ClassRuleSet map[uint16][]classSeqRule
}

func readSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	// The caller has already consumed the format field (2 bytes); the
	// coverage and class-def offsets follow directly.
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	classDefOffset := int64(buf[2])<<8 | int64(buf[3])

	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	cd, err := classdef.Read(p, subtablePos+classDefOffset)
	if err != nil {
		return nil, err
	}
	err = p.SeekPos(subtablePos + 6)
	if err != nil {
		return nil, err
	}
	offsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	classRuleSet := make(map[uint16][]classSeqRule)
	for class, offs := range offsets {
		if offs == 0 {
			continue
		}
		rules, err := readClassSeqRuleSet(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
		classRuleSet[uint16(class)] = rules
	}
	return &SeqContext2{Cov: cov, ClassDef: cd, ClassRuleSet: classRuleSet}, nil
}

func (l *SeqContext2) apply(ctx *Context, a, b int) int {
	if !l.Cov.Contains(ctx.Seq[a].GID) {
		return -1
	}
	firstClass := l.ClassDef.Class(ctx.Seq[a].GID)
	for _, rule := range l.ClassRuleSet[firstClass] {
		preds := make([]glyphPred, len(rule.Input))
		for i, class := range rule.Input {
			preds[i] = classEqual(l.ClassDef, class)
		}
		rest, _, ok := matchGlyphs(ctx, a+1, 1, b, preds)
		if !ok {
			continue
		}
		matched := append([]int{a}, rest...)
		return runRule(ctx, matched, rule.Actions)
	}
	return -1
}

// SeqContext3 is the format 3 (coverage array) contextual subtable
// shared by GPOS lookup type 7 and GSUB lookup type 5: unlike formats
// 1 and 2 it names the rule directly, with no per-first-glyph
// indirection.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-3-coverage-based-glyph-contexts
type SeqContext3 struct {
	Cov     []coverage.Table
	Actions SeqLookupRecords
}

func readSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	glyphCount := int(buf[0])<<8 | int(buf[1])
	seqLookupCount := int(buf[2])<<8 | int(buf[3])

	coverageOffsets := make([]uint16, glyphCount)
	for i := range coverageOffsets {
		coverageOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	actions, err := readSeqLookupRecords(p, seqLookupCount)
	if err != nil {
		return nil, err
	}
	cov := make([]coverage.Table, glyphCount)
	for i, offs := range coverageOffsets {
		cov[i], err = coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return &SeqContext3{Cov: cov, Actions: actions}, nil
}

func (l *SeqContext3) apply(ctx *Context, a, b int) int {
	if len(l.Cov) == 0 {
		return -1
	}
	preds := make([]glyphPred, len(l.Cov))
	for i, cov := range l.Cov {
		preds[i] = coverageContains(cov)
	}
	matched, _, ok := matchGlyphs(ctx, a, 1, b, preds)
	if !ok {
		return -1
	}
	return runRule(ctx, matched, l.Actions)
}
