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
	"fmt"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/parser"
)

// gsubReverseChainType is the GSUB lookup type for reverse-chaining
// single substitution: unlike every other GSUB type it is swept
// right-to-left across the glyph sequence and never recurses into
// nested lookups, so LayoutEngine.Substitute special-cases it instead
// of running it through the usual left-to-right step loop.
const gsubReverseChainType uint16 = 8

// readGsubSubtable reads a GSUB subtable.
// This function is used as the subtableReader argument to readLookupList().
func readGsubSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	reader, ok := gsubReaders[10*meta.LookupType+format]
	if !ok {
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/gtab",
			Feature:   fmt.Sprintf("GSUB subtable format %d.%d", meta.LookupType, format),
		}
	}
	return reader(p, pos)
}

var gsubReaders = map[uint16]func(p *parser.Parser, pos int64) (Subtable, error){
	1_1: readGsub1_1,
	1_2: readGsub1_2,
	2_1: readGsub2_1,
	3_1: readGsub3_1,
	4_1: readGsub4_1,
	5_1: readSeqContext1,
	5_2: readSeqContext2,
	5_3: readSeqContext3,
	6_1: readChainedSeqContext1,
	6_2: readChainedSeqContext2,
	6_3: readChainedSeqContext3,
	7_1: func(p *parser.Parser, pos int64) (Subtable, error) {
		return readExtensionSubtable(p, pos, nil)
	},
	8_1: readGsub8_1,
}

func readGIDSlice(p *parser.Parser) ([]glyph.ID, error) {
	raw, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	res := make([]glyph.ID, len(raw))
	for i, gid := range raw {
		res[i] = glyph.ID(gid)
	}
	return res, nil
}

// Gsub1_1 is a Single Substitution subtable (GSUB type 1, format 1):
// every covered glyph is replaced by gid+Delta.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#11-single-substitution-format-1
type Gsub1_1 struct {
	Cov   coverage.Set
	Delta glyph.ID
}

func readGsub1_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	delta := glyph.ID(buf[2])<<8 | glyph.ID(buf[3])
	cov, err := coverage.ReadSet(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	return &Gsub1_1{Cov: cov, Delta: delta}, nil
}

func (l *Gsub1_1) apply(ctx *Context, a, b int) int {
	gid := ctx.Seq[a].GID
	if !l.Cov.Contains(gid) {
		return -1
	}
	ctx.Seq[a].GID = gid + l.Delta
	return a + 1
}

// Gsub1_2 is a Single Substitution subtable (GSUB type 1, format 2):
// each covered glyph has its own replacement, indexed by coverage
// index.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#12-single-substitution-format-2
type Gsub1_2 struct {
	Cov                coverage.Table
	SubstituteGlyphIDs []glyph.ID // indexed by coverage index
}

func readGsub1_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	substituteGlyphIDs, err := readGIDSlice(p)
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	return &Gsub1_2{Cov: cov, SubstituteGlyphIDs: substituteGlyphIDs}, nil
}

func (l *Gsub1_2) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.SubstituteGlyphIDs) {
		return -1
	}
	ctx.Seq[a].GID = l.SubstituteGlyphIDs[idx]
	return a + 1
}

// Gsub2_1 is a Multiple Substitution subtable (GSUB type 2, format 1):
// a single covered glyph is replaced by a sequence of one or more
// glyphs. Conformant fonts never give a zero-length replacement.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#21-multiple-substitution-format-1
type Gsub2_1 struct {
	Cov  coverage.Table
	Repl [][]glyph.ID // indexed by coverage index
}

func readGsub2_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	sequenceOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	repl := make([][]glyph.ID, len(sequenceOffsets))
	for i, offs := range sequenceOffsets {
		err = p.SeekPos(subtablePos + int64(offs))
		if err != nil {
			return nil, err
		}
		repl[i], err = readGIDSlice(p)
		if err != nil {
			return nil, err
		}
		if len(repl[i]) == 0 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "multiple substitution with empty replacement",
			}
		}
	}
	return &Gsub2_1{Cov: cov, Repl: repl}, nil
}

func (l *Gsub2_1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.Repl) {
		return -1
	}
	repl := l.Repl[idx]
	out := make([]glyph.Info, len(repl))
	for i, gid := range repl {
		out[i] = glyph.Info{GID: gid}
	}
	ctx.Seq = replaceRange(ctx.Seq, []int{a}, out)
	return a + len(repl)
}

// Gsub3_1 is an Alternate Substitution subtable (GSUB type 3, format
// 1): a covered glyph may be replaced by any of a set of alternates;
// absent an alternate-selection feature parameter this engine always
// picks the first.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#31-alternate-substitution-format-1
type Gsub3_1 struct {
	Cov        coverage.Table
	Alternates [][]glyph.ID // indexed by coverage index
}

func readGsub3_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	alternateSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	alt := make([][]glyph.ID, len(alternateSetOffsets))
	for i, offs := range alternateSetOffsets {
		err = p.SeekPos(subtablePos + int64(offs))
		if err != nil {
			return nil, err
		}
		alt[i], err = readGIDSlice(p)
		if err != nil {
			return nil, err
		}
	}
	return &Gsub3_1{Cov: cov, Alternates: alt}, nil
}

func (l *Gsub3_1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.Alternates) || len(l.Alternates[idx]) == 0 {
		return -1
	}
	ctx.Seq[a].GID = l.Alternates[idx][0]
	return a + 1
}

// Gsub4_1 is a Ligature Substitution subtable (GSUB type 4, format 1):
// a sequence of glyphs is replaced by a single glyph. The ligature set
// for a covered first glyph is stored longest-match-first in
// conformant fonts, so trying rules in the stored order and accepting
// the first whose tail matches is correct.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#41-ligature-substitution-format-1
type Gsub4_1 struct {
	Cov  coverage.Table
	Repl [][]glyph.Ligature // indexed by coverage index
}

func readGsub4_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	ligatureSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	repl := make([][]glyph.Ligature, len(ligatureSetOffsets))
	for i, ligatureSetOffset := range ligatureSetOffsets {
		ligatureSetPos := subtablePos + int64(ligatureSetOffset)
		err = p.SeekPos(ligatureSetPos)
		if err != nil {
			return nil, err
		}
		ligatureOffsets, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}

		var ligs []glyph.Ligature
		for _, ligatureOffset := range ligatureOffsets {
			err = p.SeekPos(ligatureSetPos + int64(ligatureOffset))
			if err != nil {
				return nil, err
			}
			ligatureGlyph, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			componentCount, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if componentCount == 0 {
				return nil, &parser.InvalidFontError{
					SubSystem: "opentype/gtab",
					Reason:    "ligature with zero components",
				}
			}
			tail, err := readGlyphIDSlice(p, int(componentCount)-1)
			if err != nil {
				return nil, err
			}
			if len(tail)+1 > glyph.MaxLigatureComponents {
				// Ligatures with more components than this engine's
				// fixed-capacity component array can hold are skipped.
				continue
			}
			var lig glyph.Ligature
			lig.NumComponents = len(tail) + 1
			copy(lig.Components[1:], tail)
			lig.Substitute = glyph.ID(ligatureGlyph)
			ligs = append(ligs, lig)
		}
		repl[i] = ligs
	}
	// The first component of every ligature equals the coverage glyph
	// that selected its ligature set; fill it in now that every set
	// has been read and the coverage table's reverse mapping is
	// available.
	glyphs := cov.Glyphs()
	for i, ligs := range repl {
		if i >= len(glyphs) {
			continue
		}
		for j := range ligs {
			ligs[j].Components[0] = glyphs[i]
		}
	}

	return &Gsub4_1{Cov: cov, Repl: repl}, nil
}

func (l *Gsub4_1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.Repl) {
		return -1
	}

ligLoop:
	for _, lig := range l.Repl[idx] {
		tail := lig.Components[1:lig.NumComponents]
		rest, _, ok := matchGlyphs(ctx, a+1, 1, b, predsForGIDs(tail))
		if !ok {
			continue ligLoop
		}
		matched := append([]int{a}, rest...)
		ctx.Seq = replaceRange(ctx.Seq, matched, []glyph.Info{{GID: lig.Substitute}})
		return a + 1
	}
	return -1
}

func predsForGIDs(gids []glyph.ID) []glyphPred {
	preds := make([]glyphPred, len(gids))
	for i, gid := range gids {
		preds[i] = glyphEqual(gid)
	}
	return preds
}

// Gsub8_1 is a Reverse Chaining Contextual Single Substitution subtable
// (GSUB type 8, format 1): a single covered glyph, constrained by
// backtrack and lookahead coverage, is replaced in place. Lookups of
// this type are swept right-to-left and never recurse.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#81-reverse-chaining-contextual-single-substitution-format-1-coverage-based-glyph-contexts
type Gsub8_1 struct {
	Input              coverage.Table
	Backtrack          []coverage.Table
	Lookahead          []coverage.Table
	SubstituteGlyphIDs []glyph.ID // indexed by input coverage index
}

func readGsub8_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	backtrackCoverageOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	lookaheadCoverageOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}
	substituteGlyphIDs, err := readGIDSlice(p)
	if err != nil {
		return nil, err
	}

	input, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	backtrack := make([]coverage.Table, len(backtrackCoverageOffsets))
	for i, offs := range backtrackCoverageOffsets {
		backtrack[i], err = coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	lookahead := make([]coverage.Table, len(lookaheadCoverageOffsets))
	for i, offs := range lookaheadCoverageOffsets {
		lookahead[i], err = coverage.Read(p, subtablePos+int64(offs))
		if err != nil {
			return nil, err
		}
	}

	return &Gsub8_1{
		Input:              input,
		Backtrack:          backtrack,
		Lookahead:          lookahead,
		SubstituteGlyphIDs: substituteGlyphIDs,
	}, nil
}

func (l *Gsub8_1) apply(ctx *Context, a, b int) int {
	idx, ok := l.Input.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.SubstituteGlyphIDs) {
		return -1
	}

	btPreds := make([]glyphPred, len(l.Backtrack))
	for i, cov := range l.Backtrack {
		btPreds[i] = coverageContains(cov)
	}
	if _, _, ok := matchGlyphs(ctx, a-1, -1, -1, btPreds); !ok {
		return -1
	}

	laPreds := make([]glyphPred, len(l.Lookahead))
	for i, cov := range l.Lookahead {
		laPreds[i] = coverageContains(cov)
	}
	if _, _, ok := matchGlyphs(ctx, a+1, 1, len(ctx.Seq), laPreds); !ok {
		return -1
	}

	ctx.Seq[a].GID = l.SubstituteGlyphIDs[idx]
	return a + 1
}

// applyReverseChain applies a reverse-chaining single-substitution
// lookup to seq, sweeping right-to-left as required by the OpenType
// specification for GSUB type 8. Unlike every other GSUB lookup type
// this one never changes the sequence length and never recurses into
// nested lookups.
func applyReverseChain(ctx *Context, lookup *LookupTable) []glyph.Info {
	for pos := len(ctx.Seq) - 1; pos >= 0; pos-- {
		if !ctx.Keep.Keep(ctx.Seq[pos].GID) {
			continue
		}
		for _, sub := range lookup.Subtables {
			if rc, ok := sub.(*Gsub8_1); ok && rc.apply(ctx, pos, len(ctx.Seq)) >= 0 {
				break
			}
		}
	}
	return ctx.Seq
}
