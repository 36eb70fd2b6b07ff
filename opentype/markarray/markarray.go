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

// Package markarray reads OpenType MarkArray tables, the structure
// shared by GPOS lookup types 4, 5 and 6 to record, for every glyph in
// a lookup's mark coverage table, which mark class it belongs to and
// where its attachment anchor is.
package markarray

import (
	"seehuhn.de/go/otlayout/opentype/anchor"
	"seehuhn.de/go/otlayout/parser"
)

// Record is one entry of a MarkArray, giving the mark class and
// attachment anchor of a single covered mark glyph.
type Record struct {
	Class  uint16
	Anchor anchor.Table
}

// Read decodes a MarkArray table at the given offset (relative to the
// start of p).  The returned slice is indexed in parallel with the
// lookup's mark coverage table.
func Read(p *parser.Parser, pos int64) ([]Record, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	type rawRecord struct {
		class     uint16
		anchorOfs uint16
	}
	raw := make([]rawRecord, count)
	for i := range raw {
		class, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		ofs, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		raw[i] = rawRecord{class: class, anchorOfs: ofs}
	}

	res := make([]Record, count)
	for i, r := range raw {
		a, err := anchor.Read(p, pos+int64(r.anchorOfs))
		if err != nil {
			return nil, err
		}
		res[i] = Record{Class: r.class, Anchor: a}
	}
	return res, nil
}
