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
	"seehuhn.de/go/otlayout/parser"
)

// LookupIndex enumerates lookups.
// It is used as an index into a [LookupList].
type LookupIndex uint16

// LookupList contains the information from an OpenType "Lookup List Table".
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*LookupTable

// LookupTable represents a lookup table inside a "GSUB" or "GPOS" table of a
// font.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
type LookupTable struct {
	Meta *LookupMetaInfo

	// Subtables contains the subtables to try for this lookup.  The
	// subtables are tried in order, until one of them can be applied.
	//
	// The type of the subtables must match Meta.LookupType, but the
	// subtables may use any format within that type.
	Subtables []Subtable
}

// LookupMetaInfo contains information associated with a [LookupTable].
// Only information which is not specific to a particular subtable is
// included here.
type LookupMetaInfo struct {
	// LookupType identifies the type of the lookups inside a lookup table.
	// Different numbering schemes are used for GSUB and GPOS tables.
	LookupType uint16

	// LookupFlags contains flags which modify application of the lookup to a
	// glyph string.
	LookupFlags LookupFlags

	// MarkFilteringSet is an index into the MarkGlyphSets slice in the
	// corresponding GDEF table.  It is only used if the
	// UseMarkFilteringSet flag is set; in that case all marks not
	// present in the specified mark glyph set are skipped.
	MarkFilteringSet uint16
}

// LookupFlags contains bits which modify application of a lookup to a glyph
// string.
//
// LookupFlags can specify glyphs to be ignored in a variety of ways:
//   - all base glyphs
//   - all ligature glyphs
//   - all mark glyphs
//   - a subset of mark glyphs, specified by a mark filtering set
//   - a subset of mark glyphs, specified by a mark attachment type
//
// When this is used, the lookup is applied as if the ignored glyphs
// were not present in the input sequence.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlags.
const (
	// RightToLeft indicates that for GPOS lookup type 3 (cursive
	// attachment), the last glyph in the sequence (rather than the
	// first) is positioned on the baseline.
	RightToLeft LookupFlags = 0x0001

	// IgnoreBaseGlyphs indicates that the lookup ignores glyphs which
	// are classified as base glyphs in the GDEF table.
	IgnoreBaseGlyphs LookupFlags = 0x0002

	// IgnoreLigatures indicates that the lookup ignores glyphs which
	// are classified as ligatures in the GDEF table.
	IgnoreLigatures LookupFlags = 0x0004

	// IgnoreMarks indicates that the lookup ignores glyphs which are
	// classified as marks in the GDEF table.
	IgnoreMarks LookupFlags = 0x0008

	// UseMarkFilteringSet indicates that the lookup ignores all
	// glyphs classified as marks in the GDEF table, except for those
	// in the specified mark filtering set.
	UseMarkFilteringSet LookupFlags = 0x0010

	// MarkAttachTypeMask, if not zero, skips over all marks that are not
	// of the specified type.  Mark attachment classes are defined in the
	// MarkAttachClass table of the GDEF table.
	MarkAttachTypeMask LookupFlags = 0xFF00
)

// Subtable represents a subtable of a "GSUB" or "GPOS" lookup table.
//
// The following types are GSUB subtables:
//
//   - [*Gsub1_1]
//   - [*Gsub1_2]
//   - [*Gsub2_1]
//   - [*Gsub3_1]
//   - [*Gsub4_1]
//   - [*Gsub8_1]
//
// The following types are GPOS subtables:
//   - [*Gpos1_1]
//   - [*Gpos1_2]
//   - [*Gpos2_1]
//   - [*Gpos2_2]
//   - [*Gpos3_1]
//   - [*Gpos4_1]
//   - [*Gpos5_1]
//   - [*Gpos6_1]
//
// The following types are used both in GSUB and GPOS tables:
//
//   - [*SeqContext1]
//   - [*SeqContext2]
//   - [*SeqContext3]
//   - [*ChainedSeqContext1]
//   - [*ChainedSeqContext2]
//   - [*ChainedSeqContext3]
type Subtable interface {
	// apply attempts to apply the subtable at position a.  The function
	// returns the new position after the match.  If the subtable cannot
	// be applied, a negative position is returned.  Matching the input
	// sequence is restricted to positions a to b-1.
	//
	// ctx.Keep represents the lookup flags: glyphs for which
	// keep(seq[i].GID) is false must be ignored.  The caller already
	// checks the glyph at location a, so only subsequent glyphs need to
	// be tested by the Subtable implementation.
	apply(ctx *Context, a, b int) int
}

// subtableReader is a function that can decode a subtable.
// Different functions are required for "GSUB" and "GPOS" tables.
type subtableReader func(*parser.Parser, int64, *LookupMetaInfo) (Subtable, error)

func readLookupList(p *parser.Parser, pos int64, sr subtableReader) (LookupList, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	lookupOffsets, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	res := make(LookupList, len(lookupOffsets))

	numLookups := 0
	numSubTables := 0

	for i, offs := range lookupOffsets {
		lookupTablePos := pos + int64(offs)
		err := p.SeekPos(lookupTablePos)
		if err != nil {
			return nil, err
		}
		lookupType, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookupFlagRaw, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookupFlag := LookupFlags(lookupFlagRaw)
		subTableCount, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}

		numLookups++
		numSubTables += int(subTableCount)
		if numLookups+numSubTables > 6000 {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    "too many lookup (sub-)tables",
			}
		}

		subtableOffsets := make([]uint16, subTableCount)
		for j := range subtableOffsets {
			subtableOffsets[j], err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}
		var markFilteringSet uint16
		if lookupFlag&UseMarkFilteringSet != 0 {
			markFilteringSet, err = p.ReadUint16()
			if err != nil {
				return nil, err
			}
		}

		meta := &LookupMetaInfo{
			LookupType:       lookupType,
			LookupFlags:      lookupFlag,
			MarkFilteringSet: markFilteringSet,
		}

		subtables := make([]Subtable, subTableCount)
		for j, subtableOffset := range subtableOffsets {
			subtable, err := sr(p, lookupTablePos+int64(subtableOffset), meta)
			if err != nil {
				return nil, err
			}
			subtables[j] = subtable
		}

		if tp, ok := isExtension(subtables); ok {
			if tp == meta.LookupType {
				return nil, &parser.InvalidFontError{
					SubSystem: "opentype/gtab",
					Reason:    "invalid extension subtable",
				}
			}
			meta.LookupType = tp
			for j, subtable := range subtables {
				l, ok := subtable.(*extensionSubtable)
				if !ok || l.ExtensionLookupType != tp {
					return nil, &parser.InvalidFontError{
						SubSystem: "opentype/gtab",
						Reason:    "inconsistent extension subtables",
					}
				}
				realPos := lookupTablePos + int64(subtableOffsets[j]) + l.ExtensionOffset
				subtable, err := sr(p, realPos, meta)
				if err != nil {
					return nil, err
				}
				subtables[j] = subtable
			}
		}

		res[i] = &LookupTable{
			Meta:      meta,
			Subtables: subtables,
		}
	}
	return res, nil
}

func isExtension(ss []Subtable) (uint16, bool) {
	if len(ss) == 0 {
		return 0, false
	}
	l, ok := ss[0].(*extensionSubtable)
	if !ok {
		return 0, false
	}
	return l.ExtensionLookupType, true
}

// Lookup types used for extension lookup records.
const (
	gposExtensionLookupType uint16 = 9
	gsubExtensionLookupType uint16 = 7
)

// extensionSubtable is the decoded form of GPOS lookup type 9 / GSUB
// lookup type 7: an indirection that points at the real subtable,
// elsewhere in the table, together with its real lookup type.
// readLookupList re-dispatches through it transparently, so no other
// code in this package ever sees an *extensionSubtable survive past
// decode time.
//
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#71-extension-substitution-subtable-format-1
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#lookuptype-9-extension-positioning
type extensionSubtable struct {
	ExtensionLookupType uint16
	ExtensionOffset     int64
}

func readExtensionSubtable(p *parser.Parser, pos int64, _ *LookupMetaInfo) (Subtable, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	_, err = p.ReadUint16() // format, always 1
	if err != nil {
		return nil, err
	}
	extensionLookupType, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	extensionOffset, err := p.ReadUint32()
	if err != nil {
		return nil, err
	}
	if extensionLookupType == gposExtensionLookupType || extensionLookupType == gsubExtensionLookupType {
		return nil, &parser.InvalidFontError{
			SubSystem: "opentype/gtab",
			Reason:    "extension subtable must not point at another extension subtable",
		}
	}
	return &extensionSubtable{
		ExtensionLookupType: extensionLookupType,
		ExtensionOffset:     int64(extensionOffset),
	}, nil
}

func (l *extensionSubtable) apply(*Context, int, int) int {
	panic("unreachable: extension subtables are resolved at decode time")
}
