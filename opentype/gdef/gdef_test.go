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

package gdef

import (
	"bytes"
	"testing"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/parser"
)

// TestReadGlyphClass decodes a minimal GDEF table (version 1.0) with a
// GlyphClassDef subtable and no AttachList, LigCaretList or
// MarkAttachClassDef, confirming the unused offsets leave their
// corresponding fields nil rather than erroring.
func TestReadGlyphClass(t *testing.T) {
	data := []byte{
		0x00, 0x01, // majorVersion = 1
		0x00, 0x00, // minorVersion = 0
		0x00, 0x0C, // glyphClassDefOffset = 12
		0x00, 0x00, // attachListOffset (unused)
		0x00, 0x00, // ligCaretListOffset (unused)
		0x00, 0x00, // markAttachClassDefOffset (unused)
		// ClassDef format 1 at offset 12: glyphs 1,2 -> classes Base, Mark
		0x00, 0x01, // format 1
		0x00, 0x01, // startGlyph = 1
		0x00, 0x02, // glyphCount = 2
		0x00, 0x01, // class[0] = Base
		0x00, 0x03, // class[1] = Mark
	}

	table, err := Read(parser.New(bytes.NewReader(data)))
	if err != nil {
		t.Fatal(err)
	}
	if table.GlyphClass == nil {
		t.Fatal("GlyphClass is nil")
	}
	if got := table.GlyphClass.Class(1); got != GlyphClassBase {
		t.Errorf("Class(1) = %d, want GlyphClassBase", got)
	}
	if got := table.GlyphClass.Class(2); got != GlyphClassMark {
		t.Errorf("Class(2) = %d, want GlyphClassMark", got)
	}
	if table.MarkAttachClass != nil {
		t.Errorf("MarkAttachClass = %v, want nil", table.MarkAttachClass)
	}
	if table.MarkGlyphSets != nil {
		t.Errorf("MarkGlyphSets = %v, want nil", table.MarkGlyphSets)
	}
}

// TestReadMarkAttachClass exercises the markAttachClassDefOffset field
// on its own (no GlyphClassDef), confirming that KeepFunc's filtering
// has a MarkAttachClass table to consult.
func TestReadMarkAttachClass(t *testing.T) {
	data := []byte{
		0x00, 0x01, // majorVersion = 1
		0x00, 0x00, // minorVersion = 0
		0x00, 0x00, // glyphClassDefOffset (unused)
		0x00, 0x00, // attachListOffset (unused)
		0x00, 0x00, // ligCaretListOffset (unused)
		0x00, 0x0C, // markAttachClassDefOffset = 12
		// ClassDef format 1 at offset 12: glyph 5 -> class 2
		0x00, 0x01, // format 1
		0x00, 0x05, // startGlyph = 5
		0x00, 0x01, // glyphCount = 1
		0x00, 0x02, // class[0] = 2
	}

	table, err := Read(parser.New(bytes.NewReader(data)))
	if err != nil {
		t.Fatal(err)
	}
	if table.GlyphClass != nil {
		t.Errorf("GlyphClass = %v, want nil", table.GlyphClass)
	}
	if table.MarkAttachClass == nil {
		t.Fatal("MarkAttachClass is nil")
	}
	if got := table.MarkAttachClass.Class(glyph.ID(5)); got != 2 {
		t.Errorf("Class(5) = %d, want 2", got)
	}
}
