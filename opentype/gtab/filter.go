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
	"seehuhn.de/go/otlayout/opentype/gdef"
)

// A KeepFunc decides which glyphs to consider while applying a lookup.
// Glyphs where Keep returns false are skipped over: they stay in the
// glyph sequence unchanged, but are invisible to coverage/class
// matching for this lookup.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type KeepFunc struct {
	Gdef *gdef.Table
	Meta *LookupMetaInfo
}

func newKeepFunc(meta *LookupMetaInfo, gdefTable *gdef.Table) *KeepFunc {
	if gdefTable == nil || gdefTable.GlyphClass == nil || meta.LookupFlags == 0 {
		return nil
	}

	return &KeepFunc{
		Gdef: gdefTable,
		Meta: meta,
	}
}

// Keep returns true if the glyph with the given ID should be considered
// when applying the lookup.
func (k *KeepFunc) Keep(gid glyph.ID) bool {
	if k == nil {
		return true
	}

	flags := k.Meta.LookupFlags
	switch k.Gdef.GlyphClass[gid] {
	case gdef.GlyphClassBase:
		if flags&IgnoreBaseGlyphs != 0 {
			return false
		}
	case gdef.GlyphClassLigature:
		if flags&IgnoreLigatures != 0 {
			return false
		}
	case gdef.GlyphClassMark:
		if flags&IgnoreMarks != 0 {
			// IGNORE_MARKS supersedes any mark filtering set or mark
			// attachment type indication.
			return false
		} else if flags&UseMarkFilteringSet != 0 {
			// A mark filtering set supersedes any mark attachment type
			// indication in the lookup flags.
			set := k.Meta.MarkFilteringSet
			if k.Gdef.MarkGlyphSets == nil || int(set) >= len(k.Gdef.MarkGlyphSets) ||
				!k.Gdef.MarkGlyphSets[set].Contains(gid) {
				return false
			}
		} else if m := flags & MarkAttachTypeMask; m != 0 {
			if k.Gdef.MarkAttachClass == nil || k.Gdef.MarkAttachClass.Class(gid) != uint16(m>>8) {
				return false
			}
		}
	}
	return true
}
