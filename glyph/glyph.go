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

// Package glyph contains types for representing glyphs and the
// per-position adjustments produced by GPOS lookups.
package glyph

import "seehuhn.de/go/postscript/funit"

// ID enumerates the glyphs in a font.  Glyph 0 is reserved for the
// "missing glyph" (.notdef).  The font format stores glyph ids as
// unsigned 16-bit values; the engine widens them to this type so that
// callers cannot overflow it while composing glyph runs.
type ID uint32

// Pair represents two consecutive glyphs.  This is used as the map key
// for glyph-pair kerning tables (GPOS lookup type 2, format 1).
type Pair struct {
	Left, Right ID
}

// Info carries one glyph through substitution.  Text, if set, records
// which input runes produced this glyph, so that after a ligature
// substitution the merged glyph still remembers the runes it replaced.
type Info struct {
	GID  ID
	Text []rune
}

// Adjustment is the per-glyph output of GPOS: placement and advance
// corrections, in font design units.  The zero value applies no
// adjustment.  Adjustments from different lookups, and from the two
// glyphs of a pair, accumulate additively.
type Adjustment struct {
	XPlacement funit.Int16
	YPlacement funit.Int16
	XAdvance   funit.Int16
	YAdvance   funit.Int16
}

// Add accumulates other into a, in place.
func (a *Adjustment) Add(other Adjustment) {
	a.XPlacement += other.XPlacement
	a.YPlacement += other.YPlacement
	a.XAdvance += other.XAdvance
	a.YAdvance += other.YAdvance
}

// IsZero reports whether the adjustment has no effect.
func (a Adjustment) IsZero() bool {
	return a == Adjustment{}
}

// MaxLigatureComponents bounds the number of component glyphs a Ligature
// can record, including the first component (the glyph selected by the
// coverage table), so a ligature replaces at most this many input
// glyphs.  Fonts occasionally list longer ligatures; those are skipped
// during decoding rather than rejecting the whole subtable.
const MaxLigatureComponents = 8

// Ligature is a single entry of a GSUB Ligature Substitution subtable: a
// fixed-capacity run of component glyphs (starting with the glyph that
// is covered by the subtable's coverage table) that together substitute
// to Substitute.
type Ligature struct {
	Components    [MaxLigatureComponents]ID
	NumComponents int
	Substitute    ID
}
