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
	"seehuhn.de/go/otlayout/opentype/anchor"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/opentype/markarray"
	"seehuhn.de/go/otlayout/parser"
)

// readMarkArrayHeader reads the common prefix shared by GPOS lookup
// types 4, 5 and 6: mark coverage, attaching-glyph coverage, mark class
// count, and the two array offsets.
func readMarkArrayHeader(p *parser.Parser, subtablePos int64) (markCov, otherCov coverage.Table, markClassCount int, markArrayOffset, otherArrayOffset int64, err error) {
	buf, err := p.ReadBytes(10)
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	markCoverageOffset := int64(buf[0])<<8 | int64(buf[1])
	otherCoverageOffset := int64(buf[2])<<8 | int64(buf[3])
	markClassCount = int(buf[4])<<8 | int(buf[5])
	markArrayOffset = int64(buf[6])<<8 | int64(buf[7])
	otherArrayOffset = int64(buf[8])<<8 | int64(buf[9])

	markCov, err = coverage.Read(p, subtablePos+markCoverageOffset)
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	otherCov, err = coverage.Read(p, subtablePos+otherCoverageOffset)
	if err != nil {
		return nil, nil, 0, 0, 0, err
	}
	return markCov, otherCov, markClassCount, markArrayOffset, otherArrayOffset, nil
}

// readAnchorRows decodes a table of row-offset-prefixed anchor rows:
// a count, followed by that many offsets (relative to arrayPos) to a
// row of rowWidth 16-bit anchor offsets each (relative to the start of
// the row).
func readAnchorRows(p *parser.Parser, arrayPos int64, rowWidth int) ([][]anchor.Table, error) {
	err := p.SeekPos(arrayPos)
	if err != nil {
		return nil, err
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	rowOffsets := make([]uint16, count)
	for i := range rowOffsets {
		rowOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	rows := make([][]anchor.Table, count)
	for i, rowOffset := range rowOffsets {
		rowPos := arrayPos + int64(rowOffset)
		err = p.SeekPos(rowPos)
		if err != nil {
			return nil, err
		}
		anchorOffsets := make([]uint16, rowWidth)
		for j := range anchorOffsets {
			anchorOffsets[j], err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}
		row := make([]anchor.Table, rowWidth)
		for j, ofs := range anchorOffsets {
			if ofs == 0 {
				continue
			}
			row[j], err = anchor.Read(p, rowPos+int64(ofs))
			if err != nil {
				return nil, err
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// seekBackward finds the nearest position < a whose glyph is kept and
// returns it with its coverage index if that glyph is covered by cov.
// It returns -1 if there is no kept glyph before a, or if the nearest
// kept glyph is not covered; glyphs further back are not examined.
func seekBackward(ctx *Context, cov coverage.Table, a int) (pos, idx int) {
	for p := a - 1; p >= 0; p-- {
		if !ctx.Keep.Keep(ctx.Seq[p].GID) {
			continue
		}
		if idx, ok := cov.Index(ctx.Seq[p].GID); ok {
			return p, idx
		}
		return -1, -1
	}
	return -1, -1
}

// Gpos4_1 is a Mark-to-Base Attachment Positioning Subtable (format 1):
// it attaches a mark glyph to an anchor point on the nearest preceding
// base glyph.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#lookup-type-4-mark-to-base-attachment-positioning-subtable
type Gpos4_1 struct {
	MarkCov   coverage.Table
	BaseCov   coverage.Table
	MarkArray []markarray.Record // indexed by mark coverage index
	BaseArray [][]anchor.Table   // indexed by base coverage index, then by mark class
}

func readGpos4_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	markCov, baseCov, markClassCount, markArrayOffset, baseArrayOffset, err := readMarkArrayHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}
	markArray, err := markarray.Read(p, subtablePos+markArrayOffset)
	if err != nil {
		return nil, err
	}
	baseArray, err := readAnchorRows(p, subtablePos+baseArrayOffset, markClassCount)
	if err != nil {
		return nil, err
	}
	return &Gpos4_1{
		MarkCov:   markCov,
		BaseCov:   baseCov,
		MarkArray: markArray,
		BaseArray: baseArray,
	}, nil
}

// apply implements the [Subtable] interface.
func (l *Gpos4_1) apply(ctx *Context, a, b int) int {
	markIdx, ok := l.MarkCov.Index(ctx.Seq[a].GID)
	if !ok || markIdx >= len(l.MarkArray) {
		return -1
	}
	mark := l.MarkArray[markIdx]

	p, baseIdx := seekBackward(ctx, l.BaseCov, a)
	if p < 0 || baseIdx >= len(l.BaseArray) {
		return -1
	}
	row := l.BaseArray[baseIdx]
	if int(mark.Class) >= len(row) {
		return -1
	}
	base := row[mark.Class]
	if base.IsEmpty() {
		return -1
	}

	dx := base.X - mark.Anchor.X
	dy := base.Y - mark.Anchor.Y
	ctx.addAdjustment(a, glyph.Adjustment{XPlacement: dx, YPlacement: dy})
	return a + 1
}

// Gpos5_1 is a Mark-to-Ligature Attachment Positioning Subtable
// (format 1): it attaches a mark glyph to the anchor point of one
// component of the nearest preceding ligature glyph, chosen by the
// mark's class.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#lookup-type-5-mark-to-ligature-attachment-positioning-subtable
type Gpos5_1 struct {
	MarkCov   coverage.Table
	LigCov    coverage.Table
	MarkArray []markarray.Record   // indexed by mark coverage index
	LigArray  [][][]anchor.Table // indexed by ligature coverage index, then component, then mark class
}

func readGpos5_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	markCov, ligCov, markClassCount, markArrayOffset, ligArrayOffset, err := readMarkArrayHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}
	markArray, err := markarray.Read(p, subtablePos+markArrayOffset)
	if err != nil {
		return nil, err
	}

	ligArrayPos := subtablePos + ligArrayOffset
	err = p.SeekPos(ligArrayPos)
	if err != nil {
		return nil, err
	}
	ligCount, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	attachOffsets := make([]uint16, ligCount)
	for i := range attachOffsets {
		attachOffsets[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}

	ligArray := make([][][]anchor.Table, ligCount)
	for i, attachOffset := range attachOffsets {
		ligAttachPos := ligArrayPos + int64(attachOffset)
		// A LigatureAttach table stores its rows (one per ligature
		// component) inline rather than via a row-offset array, so it
		// cannot share readAnchorRows and is decoded directly here.
		err = p.SeekPos(ligAttachPos)
		if err != nil {
			return nil, err
		}
		componentCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		rows := make([][]anchor.Table, componentCount)
		for c := range rows {
			anchorOffsets := make([]uint16, markClassCount)
			for j := range anchorOffsets {
				anchorOffsets[j], err = p.ReadUint16()
				if err != nil {
					return nil, err
				}
			}
			row := make([]anchor.Table, markClassCount)
			for j, ofs := range anchorOffsets {
				if ofs == 0 {
					continue
				}
				row[j], err = anchor.Read(p, ligAttachPos+int64(ofs))
				if err != nil {
					return nil, err
				}
			}
			rows[c] = row
		}
		ligArray[i] = rows
	}

	return &Gpos5_1{
		MarkCov:   markCov,
		LigCov:    ligCov,
		MarkArray: markArray,
		LigArray:  ligArray,
	}, nil
}

// apply implements the [Subtable] interface.  The anchor is always
// taken from the nearest preceding ligature's last component: since
// glyphs making up a ligature are no longer present once the ligature has been substituted, this engine
// has no component-boundary information left at the point a GPOS
// lookup runs, so it always attaches to the ligature's last component.
// This matches the common case of trailing diacritics and is the same
// approximation most shaping engines fall back to when component
// association has not been tracked explicitly alongside the glyph run.
func (l *Gpos5_1) apply(ctx *Context, a, b int) int {
	markIdx, ok := l.MarkCov.Index(ctx.Seq[a].GID)
	if !ok || markIdx >= len(l.MarkArray) {
		return -1
	}
	mark := l.MarkArray[markIdx]

	p, ligIdx := seekBackward(ctx, l.LigCov, a)
	if p < 0 || ligIdx >= len(l.LigArray) {
		return -1
	}
	components := l.LigArray[ligIdx]
	if len(components) == 0 {
		return -1
	}
	row := components[len(components)-1]
	if int(mark.Class) >= len(row) {
		return -1
	}
	lig := row[mark.Class]
	if lig.IsEmpty() {
		return -1
	}

	dx := lig.X - mark.Anchor.X
	dy := lig.Y - mark.Anchor.Y
	ctx.addAdjustment(a, glyph.Adjustment{XPlacement: dx, YPlacement: dy})
	return a + 1
}

// Gpos6_1 is a Mark-to-Mark Attachment Positioning Subtable (format 1):
// it attaches a mark glyph to an anchor point on the nearest preceding
// mark glyph, for example to stack a second diacritic on a base letter
// plus diacritic pair.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#lookup-type-6-mark-to-mark-attachment-positioning-subtable
type Gpos6_1 struct {
	Mark1Cov   coverage.Table
	Mark2Cov   coverage.Table
	Mark1Array []markarray.Record // indexed by mark1 coverage index
	Mark2Array [][]anchor.Table   // indexed by mark2 coverage index, then by mark class
}

func readGpos6_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	mark1Cov, mark2Cov, markClassCount, mark1ArrayOffset, mark2ArrayOffset, err := readMarkArrayHeader(p, subtablePos)
	if err != nil {
		return nil, err
	}
	mark1Array, err := markarray.Read(p, subtablePos+mark1ArrayOffset)
	if err != nil {
		return nil, err
	}
	mark2Array, err := readAnchorRows(p, subtablePos+mark2ArrayOffset, markClassCount)
	if err != nil {
		return nil, err
	}
	return &Gpos6_1{
		Mark1Cov:   mark1Cov,
		Mark2Cov:   mark2Cov,
		Mark1Array: mark1Array,
		Mark2Array: mark2Array,
	}, nil
}

// apply implements the [Subtable] interface.
func (l *Gpos6_1) apply(ctx *Context, a, b int) int {
	mark1Idx, ok := l.Mark1Cov.Index(ctx.Seq[a].GID)
	if !ok || mark1Idx >= len(l.Mark1Array) {
		return -1
	}
	mark1 := l.Mark1Array[mark1Idx]

	p, mark2Idx := seekBackward(ctx, l.Mark2Cov, a)
	if p < 0 || mark2Idx >= len(l.Mark2Array) {
		return -1
	}
	row := l.Mark2Array[mark2Idx]
	if int(mark1.Class) >= len(row) {
		return -1
	}
	mark2 := row[mark1.Class]
	if mark2.IsEmpty() {
		return -1
	}

	dx := mark2.X - mark1.Anchor.X
	dy := mark2.Y - mark1.Anchor.Y
	ctx.addAdjustment(a, glyph.Adjustment{XPlacement: dx, YPlacement: dy})
	return a + 1
}
