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

package anchor

import (
	"bytes"
	"testing"

	"seehuhn.de/go/otlayout/parser"
)

// A pos of 0 denotes the null offset, so every fixture below pads two
// bytes in front of the anchor table and reads at pos=2, to exercise an
// actual decode rather than the null short-circuit.

func TestReadFormat1(t *testing.T) {
	data := []byte{
		0x00, 0x00, // padding
		0x00, 0x01, // format 1
		0x00, 0x0A, // x = 10
		0xFF, 0xF6, // y = -10
	}
	p := parser.New(bytes.NewReader(data))
	a, err := Read(p, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a.X != 10 || a.Y != -10 {
		t.Errorf("Read() = %+v, want {X:10 Y:-10}", a)
	}
	if a.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
}

// TestReadFormat2And3 checks that the contour-point index (format 2)
// and device-table offsets (format 3) are consumed without affecting
// the decoded X/Y coordinates.
func TestReadFormat2And3(t *testing.T) {
	data2 := []byte{
		0x00, 0x00, // padding
		0x00, 0x02, // format 2
		0x00, 0x05, // x = 5
		0x00, 0x07, // y = 7
		0x00, 0x03, // contour point index (ignored)
	}
	p2 := parser.New(bytes.NewReader(data2))
	a2, err := Read(p2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a2.X != 5 || a2.Y != 7 {
		t.Errorf("format 2: Read() = %+v, want {X:5 Y:7}", a2)
	}

	data3 := []byte{
		0x00, 0x00, // padding
		0x00, 0x03, // format 3
		0x00, 0x14, // x = 20
		0x00, 0x1E, // y = 30
		0x00, 0x00, // xDeviceOffset (ignored)
		0x00, 0x00, // yDeviceOffset (ignored)
	}
	p3 := parser.New(bytes.NewReader(data3))
	a3, err := Read(p3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if a3.X != 20 || a3.Y != 30 {
		t.Errorf("format 3: Read() = %+v, want {X:20 Y:30}", a3)
	}
}

func TestReadNullOffset(t *testing.T) {
	p := parser.New(bytes.NewReader(nil))
	a, err := Read(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !a.IsEmpty() {
		t.Errorf("Read(pos=0) = %+v, want empty", a)
	}
}

func TestReadUnknownFormat(t *testing.T) {
	data := []byte{
		0x00, 0x00, // padding, so the anchor itself starts at a non-zero (non-null) offset
		0x00, 0x09, 0xFF, 0xFF, 0xFF, 0xFF,
	}
	p := parser.New(bytes.NewReader(data))
	_, err := Read(p, 2)
	if err == nil {
		t.Fatal("Read() with unknown format succeeded, want error")
	}
}
