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
	"bytes"
	"testing"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/parser"
)

// TestGsub4_1Ligature exercises the exact scenario of a Ligature
// Substitution subtable (GSUB type 4) that turns an "f"+"i" sequence
// into a single "fi" ligature glyph.
func TestGsub4_1Ligature(t *testing.T) {
	const gidF, gidI, gidX, gidFI glyph.ID = 0x66, 0x69, 0x78, 0xFB01

	l := &Gsub4_1{
		Cov: coverage.Table{gidF: 0},
		Repl: [][]glyph.Ligature{
			{
				func() glyph.Ligature {
					var lig glyph.Ligature
					lig.NumComponents = 2
					lig.Components[0] = gidF
					lig.Components[1] = gidI
					lig.Substitute = gidFI
					return lig
				}(),
			},
		},
	}

	info := &Info{
		LookupList: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 4},
				Subtables: []Subtable{l},
			},
		},
	}
	engine := info.LookupList.NewEngine([]LookupIndex{0}, nil)

	fires := []glyph.Info{{GID: gidF}, {GID: gidI}, {GID: gidX}}
	out := engine.Substitute(fires)
	want := []glyph.ID{gidFI, gidX}
	if got := fromInfo(out); !equalGIDs(got, want) {
		t.Errorf("Substitute([f,i,x]) = %v, want %v", got, want)
	}

	noMatch := []glyph.Info{{GID: gidF}, {GID: gidX}, {GID: gidI}}
	out = engine.Substitute(noMatch)
	wantUnchanged := []glyph.ID{gidF, gidX, gidI}
	if got := fromInfo(out); !equalGIDs(got, wantUnchanged) {
		t.Errorf("Substitute([f,x,i]) = %v, want unchanged %v", got, wantUnchanged)
	}
}

func TestGsub4_1PrefersLongestStoredFirst(t *testing.T) {
	const gidF, gidI, gidL, gidFFI, gidFI glyph.ID = 1, 2, 3, 4, 5

	ffi := func() glyph.Ligature {
		var lig glyph.Ligature
		lig.NumComponents = 3
		lig.Components[0], lig.Components[1], lig.Components[2] = gidF, gidF, gidI
		lig.Substitute = gidFFI
		return lig
	}()
	fi := func() glyph.Ligature {
		var lig glyph.Ligature
		lig.NumComponents = 2
		lig.Components[0], lig.Components[1] = gidF, gidI
		lig.Substitute = gidFI
		return lig
	}()

	l := &Gsub4_1{
		Cov:  coverage.Table{gidF: 0},
		Repl: [][]glyph.Ligature{{ffi, fi}},
	}
	ctx := &Context{Seq: []glyph.Info{{GID: gidF}, {GID: gidF}, {GID: gidI}, {GID: gidL}}}
	next := l.apply(ctx, 0, len(ctx.Seq))
	if next != 1 || len(ctx.Seq) != 2 || ctx.Seq[0].GID != gidFFI {
		t.Fatalf("apply() = %d, seq = %v, want match on ffi", next, ctx.Seq)
	}
}

func TestGsub1_1SingleDelta(t *testing.T) {
	l := &Gsub1_1{Cov: coverage.Set{5: true}, Delta: 100}
	ctx := &Context{Seq: []glyph.Info{{GID: 5}}}
	if next := l.apply(ctx, 0, 1); next != 1 {
		t.Fatalf("apply() = %d, want 1", next)
	}
	if ctx.Seq[0].GID != 105 {
		t.Errorf("GID = %d, want 105", ctx.Seq[0].GID)
	}

	ctx2 := &Context{Seq: []glyph.Info{{GID: 6}}}
	if next := l.apply(ctx2, 0, 1); next != -1 {
		t.Errorf("apply() on uncovered glyph = %d, want -1", next)
	}
}

func TestGsub2_1Multiple(t *testing.T) {
	l := &Gsub2_1{
		Cov:  coverage.Table{1: 0},
		Repl: [][]glyph.ID{{10, 11}},
	}
	ctx := &Context{Seq: []glyph.Info{{GID: 1}, {GID: 2}}}
	next := l.apply(ctx, 0, len(ctx.Seq))
	want := []glyph.ID{10, 11, 2}
	if next != 2 || !equalGIDs(fromInfo(ctx.Seq), want) {
		t.Fatalf("apply() = %d, seq = %v, want %v", next, fromInfo(ctx.Seq), want)
	}
}

// TestReadGsub2_1EmptyReplacement confirms a Multiple Substitution
// subtable whose sequence table has zero glyphs is rejected at decode
// time rather than silently treated as "no match" at apply time.
func TestReadGsub2_1EmptyReplacement(t *testing.T) {
	data := []byte{
		0x00, 0x01, // substFormat = 1
		0x00, 0x08, // coverageOffset = 8
		0x00, 0x01, // sequenceCount = 1
		0x00, 0x0E, // sequenceOffsets[0] = 14
		// coverage table at offset 8 (format 1, glyph 1)
		0x00, 0x01, 0x00, 0x01, 0x00, 0x01,
		// sequence table at offset 14: glyphCount = 0
		0x00, 0x00,
	}
	p := parser.New(bytes.NewReader(data))
	if _, err := p.ReadUint16(); err != nil { // consume substFormat, as readGsubSubtable does
		t.Fatal(err)
	}
	_, err := readGsub2_1(p, 0)
	if err == nil {
		t.Fatal("readGsub2_1() with empty replacement succeeded, want error")
	}
	if _, ok := err.(*parser.InvalidFontError); !ok {
		t.Errorf("err = %T, want *parser.InvalidFontError", err)
	}
}

func TestGsub3_1Alternate(t *testing.T) {
	l := &Gsub3_1{
		Cov:        coverage.Table{1: 0},
		Alternates: [][]glyph.ID{{20, 21, 22}},
	}
	ctx := &Context{Seq: []glyph.Info{{GID: 1}}}
	if next := l.apply(ctx, 0, 1); next != 1 {
		t.Fatalf("apply() = %d, want 1", next)
	}
	if ctx.Seq[0].GID != 20 {
		t.Errorf("GID = %d, want 20 (first alternate)", ctx.Seq[0].GID)
	}
}

func TestGsub8_1ReverseChain(t *testing.T) {
	const gidA, gidB, gidBPrime, gidC glyph.ID = 1, 2, 3, 4

	l := &Gsub8_1{
		Input:              coverage.Table{gidB: 0},
		Backtrack:          []coverage.Table{{gidA: 0}},
		Lookahead:          []coverage.Table{{gidC: 0}},
		SubstituteGlyphIDs: []glyph.ID{gidBPrime},
	}
	info := &Info{
		LookupList: LookupList{
			{Meta: &LookupMetaInfo{LookupType: gsubReverseChainType}, Subtables: []Subtable{l}},
		},
	}
	engine := info.LookupList.NewEngine([]LookupIndex{0}, nil)

	out := engine.Substitute(toInfo([]glyph.ID{gidA, gidB, gidC}))
	want := []glyph.ID{gidA, gidBPrime, gidC}
	if got := fromInfo(out); !equalGIDs(got, want) {
		t.Errorf("Substitute([A,B,C]) = %v, want %v", got, want)
	}

	out = engine.Substitute(toInfo([]glyph.ID{gidB, gidC}))
	want2 := []glyph.ID{gidB, gidC}
	if got := fromInfo(out); !equalGIDs(got, want2) {
		t.Errorf("Substitute([B,C]) (no backtrack) = %v, want unchanged %v", got, want2)
	}
}
