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

// Package otlayout parses the OpenType GPOS and GSUB tables and applies
// them to a glyph sequence.  It is the top-level entry point for the
// engine implemented by the opentype/* subpackages: callers hand it a
// byte window onto a GPOS or GSUB table plus an optional GDEF table,
// resolve a FeatureSet into lookups, and drive positioning or
// substitution over a glyph run.
package otlayout

import (
	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/gdef"
	"seehuhn.de/go/otlayout/opentype/gtab"
	"seehuhn.de/go/otlayout/parser"
)

// ParseGPOS decodes an OpenType "GPOS" table from r.
func ParseGPOS(r parser.ReadSeekSizer) (*gtab.Info, error) {
	return gtab.Read(r, gtab.TypeGpos)
}

// ParseGSUB decodes an OpenType "GSUB" table from r.
func ParseGSUB(r parser.ReadSeekSizer) (*gtab.Info, error) {
	return gtab.Read(r, gtab.TypeGsub)
}

// ParseGDEF decodes an OpenType "GDEF" table from r.  The result feeds
// the gdefTable argument of PositionGlyphs and SubstituteGlyphs; callers
// without a GDEF table may pass nil to both.
func ParseGDEF(r parser.ReadSeekSizer) (*gdef.Table, error) {
	return gdef.Read(parser.New(r))
}

// PositionGlyphs applies every GPOS lookup selected by fs to seq, in
// ascending lookup-index order, and returns the accumulated per-position
// adjustments.  info must come from ParseGPOS; gdefTable may be nil if
// the font carries no GDEF table or the caller does not need
// lookup-flag glyph filtering.
func PositionGlyphs(info *gtab.Info, gdefTable *gdef.Table, seq []glyph.Info, fs gtab.FeatureSet) map[int]glyph.Adjustment {
	lookups := info.FindLookups(fs)
	engine := info.LookupList.NewEngine(lookups, gdefTable)
	return engine.Position(seq)
}

// SubstituteGlyphs applies every GSUB lookup selected by fs to seq, in
// ascending lookup-index order, and returns the rewritten glyph
// sequence. info must come from ParseGSUB; gdefTable may be nil under
// the same conditions as in PositionGlyphs.
func SubstituteGlyphs(info *gtab.Info, gdefTable *gdef.Table, seq []glyph.Info, fs gtab.FeatureSet) []glyph.Info {
	lookups := info.FindLookups(fs)
	engine := info.LookupList.NewEngine(lookups, gdefTable)
	return engine.Substitute(seq)
}
