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

package markarray

import (
	"bytes"
	"testing"

	"seehuhn.de/go/otlayout/parser"
)

// TestRead decodes a MarkArray with two records, each pointing at its
// own Anchor table, confirming class and anchor coordinates are read
// from the right offsets.
func TestRead(t *testing.T) {
	data := []byte{
		0x00, 0x02, // markCount = 2
		0x00, 0x00, 0x00, 0x0A, // record 0: class 0, anchorOffset 10
		0x00, 0x01, 0x00, 0x10, // record 1: class 1, anchorOffset 16
		// anchor table at offset 10 (format 1, x=5, y=-5)
		0x00, 0x01, 0x00, 0x05, 0xFF, 0xFB,
		// anchor table at offset 16 (format 1, x=9, y=0)
		0x00, 0x01, 0x00, 0x09, 0x00, 0x00,
	}
	p := parser.New(bytes.NewReader(data))
	records, err := Read(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Class != 0 || records[0].Anchor.X != 5 || records[0].Anchor.Y != -5 {
		t.Errorf("records[0] = %+v, want {Class:0 Anchor:{5 -5}}", records[0])
	}
	if records[1].Class != 1 || records[1].Anchor.X != 9 || records[1].Anchor.Y != 0 {
		t.Errorf("records[1] = %+v, want {Class:1 Anchor:{9 0}}", records[1])
	}
}
