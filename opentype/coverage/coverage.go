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

// Package coverage reads OpenType Coverage tables.
//
// A Coverage table lists a set of glyphs and, for each, the "coverage
// index" used to look up a parallel array elsewhere in the subtable
// (for example PairSet or BaseArray entries in GPOS).  Coverage tables
// come in two on-disk formats: format 1 enumerates the glyphs directly,
// format 2 lists sorted, non-overlapping glyph ranges.
package coverage

import (
	"golang.org/x/exp/slices"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/parser"
)

// Table maps covered glyphs to their coverage index.  The zero value is
// an empty table.
type Table map[glyph.ID]int

// Read decodes a Coverage table at the given offset (relative to the
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
		glyphs, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}
		for i, gid := range glyphs {
			table[glyph.ID(gid)] = i
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
			startIdx, err := p.ReadUint16()
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, &parser.InvalidFontError{
					SubSystem: "opentype/coverage",
					Reason:    "range end before start",
				}
			}
			idx := int(startIdx)
			for gid := int(start); gid <= int(end); gid++ {
				table[glyph.ID(gid)] = idx
				idx++
			}
		}
		for _, idx := range table {
			if idx < 0 || idx >= len(table) {
				return nil, &parser.InvalidFontError{
					SubSystem: "opentype/coverage",
					Reason:    "coverage indices are not dense",
				}
			}
		}

	default:
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/coverage",
			Feature:   "coverage table format",
		}
	}

	return table, nil
}

// Contains reports whether gid is covered.
func (table Table) Contains(gid glyph.ID) bool {
	_, ok := table[gid]
	return ok
}

// Index returns the coverage index for gid, and whether gid is covered.
func (table Table) Index(gid glyph.ID) (int, bool) {
	idx, ok := table[gid]
	return idx, ok
}

// Glyphs returns the covered glyphs, sorted by their coverage index.
func (table Table) Glyphs() []glyph.ID {
	res := make([]glyph.ID, len(table))
	for gid, idx := range table {
		res[idx] = gid
	}
	return res
}

// Set is a Coverage table used only as a membership test, for example a
// mark glyph set referenced by GDEF.  Unlike Table, a Set does not need
// to preserve coverage indices.
type Set map[glyph.ID]bool

// ReadSet decodes a Coverage table at pos, keeping only membership.
func ReadSet(p *parser.Parser, pos int64) (Set, error) {
	table, err := Read(p, pos)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(table))
	for gid := range table {
		set[gid] = true
	}
	return set, nil
}

// Contains reports whether gid is a member of the set.
func (set Set) Contains(gid glyph.ID) bool {
	return set[gid]
}

// sortedGlyphs returns the glyphs of table in ascending order.  This is
// used by tests which need a deterministic enumeration.
func sortedGlyphs(table Table) []glyph.ID {
	res := make([]glyph.ID, 0, len(table))
	for gid := range table {
		res = append(res, gid)
	}
	slices.Sort(res)
	return res
}
