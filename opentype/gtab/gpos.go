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
	"seehuhn.de/go/otlayout/opentype/anchor"
	"seehuhn.de/go/otlayout/opentype/classdef"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/parser"
)

// readGposSubtable reads a GPOS subtable.
// This function is used as the subtableReader argument to readLookupList().
func readGposSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	reader, ok := gposReaders[10*meta.LookupType+format]
	if !ok {
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/gtab",
			Feature:   fmt.Sprintf("GPOS subtable format %d.%d", meta.LookupType, format),
		}
	}
	return reader(p, pos)
}

// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#gsubLookupTypeEnum
var gposReaders = map[uint16]func(p *parser.Parser, pos int64) (Subtable, error){
	1_1: readGpos1_1,
	1_2: readGpos1_2,
	2_1: readGpos2_1,
	2_2: readGpos2_2,
	3_1: readGpos3_1,
	4_1: readGpos4_1,
	5_1: readGpos5_1,
	6_1: readGpos6_1,
	7_1: readSeqContext1,
	7_2: readSeqContext2,
	7_3: readSeqContext3,
	8_1: readChainedSeqContext1,
	8_2: readChainedSeqContext2,
	8_3: readChainedSeqContext3,
	9_1: func(p *parser.Parser, pos int64) (Subtable, error) {
		return readExtensionSubtable(p, pos, nil)
	},
}

// Gpos1_1 is a Single Adjustment Positioning Subtable (GPOS type 1,
// format 1): one adjustment applied to every covered glyph.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-1-single-positioning-value
type Gpos1_1 struct {
	Cov    coverage.Table
	Adjust glyph.Adjustment
}

func readGpos1_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	adjust, err := readValueRecord(p, valueFormat)
	if err != nil {
		return nil, err
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	return &Gpos1_1{Cov: cov, Adjust: adjust}, nil
}

func (l *Gpos1_1) apply(ctx *Context, a, b int) int {
	if !l.Cov.Contains(ctx.Seq[a].GID) {
		return -1
	}
	ctx.addAdjustment(a, l.Adjust)
	return a + 1
}

// Gpos1_2 is a Single Adjustment Positioning Subtable (GPOS type 1,
// format 2): one adjustment per covered glyph.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#single-adjustment-positioning-format-2-array-of-positioning-values
type Gpos1_2 struct {
	Cov    coverage.Table
	Adjust []glyph.Adjustment // indexed by coverage index
}

func readGpos1_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	adjust := make([]glyph.Adjustment, valueCount)
	for i := range adjust {
		adjust[i], err = readValueRecord(p, valueFormat)
		if err != nil {
			return nil, err
		}
	}
	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	return &Gpos1_2{Cov: cov, Adjust: adjust}, nil
}

func (l *Gpos1_2) apply(ctx *Context, a, b int) int {
	idx, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx >= len(l.Adjust) {
		return -1
	}
	ctx.addAdjustment(a, l.Adjust[idx])
	return a + 1
}

// PairAdjust is the pair of optional adjustments stored for one glyph
// pair by a Pair Adjustment subtable (GPOS type 2).  Second is the
// zero adjustment when valueFormat2 was 0 in the font, meaning the
// subtable does not constrain the second glyph's positioning at all.
type PairAdjust struct {
	First, Second glyph.Adjustment
	HasSecond     bool
}

// Gpos2_1 is a Pair Adjustment Positioning Subtable (GPOS type 2,
// format 1): glyph-pair adjustments keyed directly by the pair of
// glyph ids.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-1-adjustments-for-glyph-pairs
type Gpos2_1 map[glyph.Pair]PairAdjust

func readGpos2_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat1, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat2, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	pairSetOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	res := Gpos2_1{}
	for firstGid, idx := range cov {
		if idx < 0 || idx >= len(pairSetOffsets) {
			continue
		}
		err := p.SeekPos(subtablePos + int64(pairSetOffsets[idx]))
		if err != nil {
			return nil, err
		}
		pairValueCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		for j := 0; j < int(pairValueCount); j++ {
			secondGid, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			first, err := readValueRecord(p, valueFormat1)
			if err != nil {
				return nil, err
			}
			second, err := readValueRecord(p, valueFormat2)
			if err != nil {
				return nil, err
			}
			res[glyph.Pair{Left: firstGid, Right: glyph.ID(secondGid)}] = PairAdjust{
				First:     first,
				Second:    second,
				HasSecond: valueFormat2 != 0,
			}
		}
	}
	return res, nil
}

func (l Gpos2_1) apply(ctx *Context, a, b int) int {
	p := a + 1
	for p < b && !ctx.Keep.Keep(ctx.Seq[p].GID) {
		p++
	}
	if p >= b {
		return -1
	}

	adj, ok := l[glyph.Pair{Left: ctx.Seq[a].GID, Right: ctx.Seq[p].GID}]
	if !ok {
		return -1
	}

	ctx.addAdjustment(a, adj.First)
	if !adj.HasSecond {
		return p
	}
	ctx.addAdjustment(p, adj.Second)
	return p + 1
}

// Gpos2_2 is a Pair Adjustment Positioning Subtable (GPOS type 2,
// format 2): adjustments keyed by the glyph classes of the two glyphs.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#pair-adjustment-positioning-format-2-class-pair-adjustment
type Gpos2_2 struct {
	Cov            coverage.Table
	Class1, Class2 classdef.Table
	Class2Count    int
	Adjust         []PairAdjust // row-major, class1*Class2Count + class2
}

func readGpos2_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat1, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	valueFormat2, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	classDef1Offset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	classDef2Offset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	class1Count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	class2Count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	numRecords := int(class1Count) * int(class2Count)
	if numRecords >= 1<<20 {
		return nil, &parser.InvalidFontError{
			SubSystem: "opentype/gtab",
			Reason:    "GPOS 2.2 table too large",
		}
	}
	records := make([]PairAdjust, numRecords)
	for i := range records {
		first, err := readValueRecord(p, valueFormat1)
		if err != nil {
			return nil, err
		}
		second, err := readValueRecord(p, valueFormat2)
		if err != nil {
			return nil, err
		}
		records[i] = PairAdjust{First: first, Second: second, HasSecond: valueFormat2 != 0}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	class1, err := classdef.Read(p, subtablePos+int64(classDef1Offset))
	if err != nil {
		return nil, err
	}
	class2, err := classdef.Read(p, subtablePos+int64(classDef2Offset))
	if err != nil {
		return nil, err
	}

	return &Gpos2_2{
		Cov:         cov,
		Class1:      class1,
		Class2:      class2,
		Class2Count: int(class2Count),
		Adjust:      records,
	}, nil
}

func (l *Gpos2_2) apply(ctx *Context, a, b int) int {
	if !l.Cov.Contains(ctx.Seq[a].GID) {
		return -1
	}

	p := a + 1
	for p < b && !ctx.Keep.Keep(ctx.Seq[p].GID) {
		p++
	}
	if p >= b {
		return -1
	}

	class1 := int(l.Class1.Class(ctx.Seq[a].GID))
	class2 := int(l.Class2.Class(ctx.Seq[p].GID))
	idx := class1*l.Class2Count + class2
	if class2 >= l.Class2Count || idx < 0 || idx >= len(l.Adjust) {
		return -1
	}
	adj := l.Adjust[idx]

	ctx.addAdjustment(a, adj.First)
	if !adj.HasSecond {
		return p
	}
	ctx.addAdjustment(p, adj.Second)
	return p + 1
}

// Gpos3_1 is a Cursive Attachment Positioning Subtable (GPOS type 3,
// format 1).  Each covered glyph has an optional entry anchor and exit
// anchor; the exit anchor of one glyph is aligned with the entry
// anchor of the next, producing connected cursive script shaping.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#cursive-attachment-positioning-format1-cursive-attachment
type Gpos3_1 struct {
	Cov     coverage.Table
	Records []EntryExitRecord // indexed by coverage index
}

// EntryExitRecord gives the entry and exit anchors of one glyph in a
// cursive attachment subtable.  Either anchor may be empty.
type EntryExitRecord struct {
	Entry, Exit anchor.Table
}

func readGpos3_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	entryExitCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type offsets struct{ entry, exit uint16 }
	raw := make([]offsets, entryExitCount)
	for i := range raw {
		raw[i].entry, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
		raw[i].exit, err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	records := make([]EntryExitRecord, len(raw))
	for i, r := range raw {
		var rec EntryExitRecord
		if r.entry != 0 {
			rec.Entry, err = anchor.Read(p, subtablePos+int64(r.entry))
			if err != nil {
				return nil, err
			}
		}
		if r.exit != 0 {
			rec.Exit, err = anchor.Read(p, subtablePos+int64(r.exit))
			if err != nil {
				return nil, err
			}
		}
		records[i] = rec
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	return &Gpos3_1{Cov: cov, Records: records}, nil
}

// apply connects the exit anchor of the glyph at a with the entry
// anchor of the next covered, kept glyph: the second glyph is shifted
// by the difference between the two anchors, so that, overlaid on the
// first glyph's origin, its entry anchor coincides with the first
// glyph's exit anchor.  This engine has no access to the glyphs'
// default advance widths (hmtx decoding is out of scope for this
// engine), so unlike a full shaping pipeline it cannot also
// rewrite the first glyph's advance to thread a multi-glyph cursive
// chain through the baseline; each cursively attached pair is
// positioned independently.
func (l *Gpos3_1) apply(ctx *Context, a, b int) int {
	idx1, ok := l.Cov.Index(ctx.Seq[a].GID)
	if !ok || idx1 >= len(l.Records) {
		return -1
	}
	exit := l.Records[idx1].Exit
	if exit.IsEmpty() {
		return -1
	}

	p := a + 1
	for p < b && !ctx.Keep.Keep(ctx.Seq[p].GID) {
		p++
	}
	if p >= b {
		return -1
	}

	idx2, ok := l.Cov.Index(ctx.Seq[p].GID)
	if !ok || idx2 >= len(l.Records) {
		return -1
	}
	entry := l.Records[idx2].Entry
	if entry.IsEmpty() {
		return -1
	}

	dx := exit.X - entry.X
	dy := exit.Y - entry.Y

	ctx.addAdjustment(p, glyph.Adjustment{XPlacement: dx, YPlacement: dy})
	return p
}
