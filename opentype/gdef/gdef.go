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

// Package gdef reads the OpenType Glyph Definition (GDEF) table.  GDEF
// classifies glyphs (base/ligature/mark/component) and records mark
// attachment classes and mark glyph sets, all of which feed into the
// lookup-flag filtering used while applying GSUB/GPOS lookups.
package gdef

import (
	"seehuhn.de/go/otlayout/opentype/classdef"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/parser"
)

// Glyph classes as recorded in the GlyphClassDef subtable.
const (
	GlyphClassBase      uint16 = 1
	GlyphClassLigature  uint16 = 2
	GlyphClassMark      uint16 = 3
	GlyphClassComponent uint16 = 4
)

// Table holds the parts of GDEF that this package's callers need: the
// overall glyph classification, the per-mark attachment class, and the
// mark glyph sets used by UseMarkFilteringSet lookups.  AttachList,
// LigCaretList and the italic-correction/variation-store tables added in
// later GDEF versions are out of scope and are not retained.
type Table struct {
	GlyphClass      classdef.Table
	MarkAttachClass classdef.Table
	MarkGlyphSets   []coverage.Set
}

// Read decodes a GDEF table occupying the whole of p.
func Read(p *parser.Parser) (*Table, error) {
	err := p.SeekPos(0)
	if err != nil {
		return nil, err
	}

	major, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	minor, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if major != 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/gdef",
			Feature:   "GDEF table major version",
		}
	}

	glyphClassDefOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	_, err = p.ReadUint16() // attachListOffset
	if err != nil {
		return nil, err
	}
	_, err = p.ReadUint16() // ligCaretListOffset
	if err != nil {
		return nil, err
	}
	markAttachClassDefOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	table := &Table{}

	if glyphClassDefOffset != 0 {
		table.GlyphClass, err = classdef.Read(p, int64(glyphClassDefOffset))
		if err != nil {
			return nil, err
		}
	}
	if markAttachClassDefOffset != 0 {
		table.MarkAttachClass, err = classdef.Read(p, int64(markAttachClassDefOffset))
		if err != nil {
			return nil, err
		}
	}

	if minor >= 2 {
		err = p.SeekPos(12) // markGlyphSetsDefOffset follows the 1.0 header
		if err != nil {
			return nil, err
		}
		markGlyphSetsDefOffset, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		if markGlyphSetsDefOffset != 0 {
			sets, err := readMarkGlyphSets(p, int64(markGlyphSetsDefOffset))
			if err != nil {
				return nil, err
			}
			table.MarkGlyphSets = sets
		}
	}

	return table, nil
}

func readMarkGlyphSets(p *parser.Parser, pos int64) ([]coverage.Set, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/gdef",
			Feature:   "mark glyph sets table format",
		}
	}

	offsets, err := readUint32Slice(p)
	if err != nil {
		return nil, err
	}

	sets := make([]coverage.Set, len(offsets))
	for i, ofs := range offsets {
		if ofs == 0 {
			continue
		}
		set, err := coverage.ReadSet(p, pos+int64(ofs))
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}
	return sets, nil
}

func readUint32Slice(p *parser.Parser) ([]uint32, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	res := make([]uint32, n)
	for i := range res {
		res[i], err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
