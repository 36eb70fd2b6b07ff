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

// Package classdef reads OpenType Class Definition tables.
//
// A ClassDef table assigns a small integer class to some or all of a
// font's glyphs.  Glyphs not listed belong to class 0.  Class
// definitions come in two on-disk formats: format 1 gives a class for
// each glyph in a contiguous range, format 2 lists sorted,
// non-overlapping glyph ranges each tagged with one class.
package classdef

import (
	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/parser"
)

// Table maps glyphs to their class.  A glyph not present in the map has
// class 0.
type Table map[glyph.ID]uint16

// Read decodes a ClassDef table at the given offset (relative to the
// start of p).
func Read(p *parser.Parser, pos int64) (Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	table := Table{}
	switch format {
	case 1:
		startGlyph, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		classes, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		for i, class := range classes {
			if class == 0 {
				continue
			}
			table[glyph.ID(int(startGlyph)+i)] = class
		}

	case 2:
		numRanges, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(numRanges); i++ {
			start, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			end, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			class, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, &parser.InvalidFontError{
					SubSystem: "opentype/classdef",
					Reason:    "range end before start",
				}
			}
			if class == 0 {
				continue
			}
			for gid := int(start); gid <= int(end); gid++ {
				table[glyph.ID(gid)] = class
			}
		}

	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/classdef",
			Feature:   "class definition table format",
		}
	}

	return table, nil
}

// Class returns the class of gid, or 0 if gid is not listed.
func (table Table) Class(gid glyph.ID) uint16 {
	return table[gid]
}

// Glyphs returns all glyphs assigned to the given class.  Class 0 is
// special: it contains every glyph not listed explicitly in the table,
// an unbounded set, so Glyphs returns nil for it.
func (table Table) Glyphs(class uint16) []glyph.ID {
	if class == 0 {
		return nil
	}
	var res []glyph.ID
	for gid, c := range table {
		if c == class {
			res = append(res, gid)
		}
	}
	return res
}

// MaxClass returns the largest class value used in the table.
func (table Table) MaxClass() uint16 {
	var max uint16
	for _, c := range table {
		if c > max {
			max = c
		}
	}
	return max
}
