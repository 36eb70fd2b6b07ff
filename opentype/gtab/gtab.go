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

// Package gtab decodes and applies OpenType "GPOS" and "GSUB" tables:
// glyph positioning and glyph substitution, the two tables that drive
// font-level text shaping.
package gtab

import (
	"fmt"

	"seehuhn.de/go/otlayout/parser"
)

// Info contains the information from an OpenType "GSUB" or "GPOS" table.
type Info struct {
	// ScriptList lists the font features available for each natural
	// language.  Features are given as indices into FeatureList.
	ScriptList ScriptListInfo

	// FeatureList enumerates all font features available in the font.
	// Features are implemented by lookups from LookupList.
	FeatureList FeatureListInfo

	// LookupList enumerates all the OpenType lookups used to implement
	// the font features.
	LookupList LookupList

	// HasFeatureVariations records whether the table included a
	// non-zero feature-variations offset (GPOS/GSUB version 1.1).
	// Feature variation application is out of scope for this engine;
	// the field exists so that callers can detect and report on
	// variable fonts that rely on it.
	HasFeatureVariations bool
}

// Type chooses between "GSUB" and "GPOS" tables.
// The possible values are [TypeGsub] and [TypeGpos].
type Type byte

func (tp Type) String() string {
	switch tp {
	case TypeGsub:
		return "GSUB"
	case TypeGpos:
		return "GPOS"
	default:
		return fmt.Sprintf("Type(%d)", tp)
	}
}

// These are the allowed types for use in the [Read] function.
const (
	// TypeGsub is an OpenType "GSUB" table.
	TypeGsub Type = iota + 1

	// TypeGpos is an OpenType "GPOS" table.
	TypeGpos
)

// Read reads and decodes an OpenType "GSUB" or "GPOS" table from r.
// The tp argument must be one of [TypeGsub] or [TypeGpos].
//
// The format of the data read is defined here:
//   - https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#gsub-header
//   - https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#gpos-header
func Read(r parser.ReadSeekSizer, tp Type) (*Info, error) {
	var sr subtableReader
	switch tp {
	case TypeGsub:
		sr = readGsubSubtable
	case TypeGpos:
		sr = readGposSubtable
	default:
		return nil, fmt.Errorf("unsupported gtab table type %d", tp)
	}
	return readGtab(r, tp, sr)
}

func readGtab(r parser.ReadSeekSizer, tp Type, sr subtableReader) (*Info, error) {
	p := parser.New(r)

	err := p.SeekPos(0)
	if err != nil {
		return nil, err
	}
	majorVersion, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	minorVersion, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	if majorVersion != 1 || minorVersion > 1 {
		return nil, &parser.NotSupportedError{
			SubSystem: "opentype/gtab",
			Feature: fmt.Sprintf("%s table version %d.%d",
				tp, majorVersion, minorVersion),
		}
	}

	scriptListOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	featureListOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	lookupListOffset, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}

	endOfHeader := int64(10)
	var featureVariationsOffset uint32
	if minorVersion == 1 {
		featureVariationsOffset, err = p.ReadUint32()
		if err != nil {
			return nil, err
		}
		endOfHeader += 4
	}

	if scriptListOffset == 0 || lookupListOffset == 0 {
		return &Info{ScriptList: make(ScriptListInfo)}, nil
	}

	fileSize := p.Size()
	for _, offset := range []uint32{
		uint32(scriptListOffset),
		uint32(featureListOffset),
		uint32(lookupListOffset),
	} {
		if int64(offset) < endOfHeader || int64(offset) >= fileSize {
			return nil, &parser.InvalidFontError{
				SubSystem: "opentype/gtab",
				Reason:    fmt.Sprintf("%s header has invalid offset %d", tp, offset),
			}
		}
	}
	if featureVariationsOffset != 0 && (int64(featureVariationsOffset) < endOfHeader ||
		int64(featureVariationsOffset) >= fileSize) {
		return nil, &parser.InvalidFontError{
			SubSystem: "opentype/gtab",
			Reason:    fmt.Sprintf("%s header has invalid feature variations offset", tp),
		}
	}

	info := &Info{HasFeatureVariations: featureVariationsOffset != 0}
	info.ScriptList, err = readScriptList(p, int64(scriptListOffset))
	if err != nil {
		return nil, err
	}
	info.FeatureList, err = readFeatureList(p, int64(featureListOffset))
	if err != nil {
		return nil, err
	}
	info.LookupList, err = readLookupList(p, int64(lookupListOffset), sr)
	if err != nil {
		return nil, err
	}

	return info, nil
}
