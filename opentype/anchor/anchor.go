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

// Package anchor reads OpenType Anchor tables, used by the attachment
// lookups (GPOS 3, 4, 5, 6) to describe a point on a glyph's outline.
package anchor

import (
	"seehuhn.de/go/otlayout/parser"
	"seehuhn.de/go/postscript/funit"
)

// Table gives the coordinates of an attachment point, in font design
// units.  Formats 2 (contour point index) and 3 (device tables for
// hinted rendering) carry additional data that affects only rasterized
// rendering; this package records the X/Y design-unit coordinates from
// all three formats and otherwise ignores the format-specific fields,
// consistent with this engine's scope of producing design-space
// adjustments rather than hinted/rasterized output.
type Table struct {
	X, Y funit.Int16
}

// IsEmpty reports whether the anchor is the zero anchor, used by the
// mark-attachment lookups to mean "no anchor at this index".
func (a Table) IsEmpty() bool {
	return a == Table{}
}

// Read decodes an Anchor table at the given offset (relative to the
// start of p).  A pos of 0 denotes a null offset and returns the zero
// Table.
func Read(p *parser.Parser, pos int64) (Table, error) {
	if pos == 0 {
		return Table{}, nil
	}

	err := p.SeekPos(pos)
	if err != nil {
		return Table{}, err
	}

	format, err := p.ReadUint16()
	if err != nil {
		return Table{}, err
	}

	x, err := p.ReadInt16()
	if err != nil {
		return Table{}, err
	}
	y, err := p.ReadInt16()
	if err != nil {
		return Table{}, err
	}

	switch format {
	case 1:
		// no further fields
	case 2:
		// AnchorPoint: contour point index, not used for design-space
		// adjustments.
		_, err = p.ReadUint16()
		if err != nil {
			return Table{}, err
		}
	case 3:
		// Device tables for X and Y; parsed past but not applied, since
		// hinted/rasterized output is outside this engine's scope.
		_, err = p.ReadUint16()
		if err != nil {
			return Table{}, err
		}
		_, err = p.ReadUint16()
		if err != nil {
			return Table{}, err
		}
	default:
		return Table{}, &parser.NotSupportedError{
			SubSystem: "opentype/anchor",
			Feature:   "anchor table format",
		}
	}

	return Table{X: funit.Int16(x), Y: funit.Int16(y)}, nil
}
