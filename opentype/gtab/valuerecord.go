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
	"seehuhn.de/go/otlayout/parser"
	"seehuhn.de/go/postscript/funit"
)

// valueFormat bits, selecting which fields of a GPOS ValueRecord are
// present on disk.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
const (
	vfXPlacement uint16 = 1 << iota
	vfYPlacement
	vfXAdvance
	vfYAdvance
	vfXPlaDevice
	vfYPlaDevice
	vfXAdvDevice
	vfYAdvDevice
)

// valueRecordLen returns the number of bytes a ValueRecord with the
// given format occupies.
func valueRecordLen(format uint16) int {
	n := 0
	for f := format; f != 0; f &= f - 1 {
		n += 2
	}
	return n
}

// readValueRecord decodes a GPOS ValueRecord with the given format
// into a glyph.Adjustment.  Device tables (used only for hinted
// rendering) are parsed past but not applied.
func readValueRecord(p *parser.Parser, format uint16) (glyph.Adjustment, error) {
	var adj glyph.Adjustment

	if format&vfXPlacement != 0 {
		v, err := p.ReadInt16()
		if err != nil {
			return adj, err
		}
		adj.XPlacement = funit.Int16(v)
	}
	if format&vfYPlacement != 0 {
		v, err := p.ReadInt16()
		if err != nil {
			return adj, err
		}
		adj.YPlacement = funit.Int16(v)
	}
	if format&vfXAdvance != 0 {
		v, err := p.ReadInt16()
		if err != nil {
			return adj, err
		}
		adj.XAdvance = funit.Int16(v)
	}
	if format&vfYAdvance != 0 {
		v, err := p.ReadInt16()
		if err != nil {
			return adj, err
		}
		adj.YAdvance = funit.Int16(v)
	}
	for _, bit := range []uint16{vfXPlaDevice, vfYPlaDevice, vfXAdvDevice, vfYAdvDevice} {
		if format&bit != 0 {
			// Device/variation-index table offset, relative to the
			// start of the enclosing subtable.  Applying hinting
			// device deltas is outside this engine's scope.
			_, err := p.ReadUint16()
			if err != nil {
				return adj, err
			}
		}
	}

	return adj, nil
}
