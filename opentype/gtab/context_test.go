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
	"testing"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/classdef"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/opentype/gdef"
)

// makeDebugKeepFunc returns a KeepFunc which keeps glyphs with GID < 50,
// and ignores all glyphs 50, ..., 255.
func makeDebugKeepFunc() *KeepFunc {
	class := classdef.Table{}
	for i := glyph.ID(0); i < 256; i++ {
		if i < 50 {
			class[i] = gdef.GlyphClassBase
		} else {
			class[i] = gdef.GlyphClassMark
		}
	}
	gdefTable := &gdef.Table{GlyphClass: class}
	meta := &LookupMetaInfo{LookupFlags: IgnoreMarks}
	return &KeepFunc{Gdef: gdefTable, Meta: meta}
}

func TestDebugKeepFunc(t *testing.T) {
	k := makeDebugKeepFunc()
	for i := glyph.ID(0); i < 256; i++ {
		if k.Keep(i) != (i < 50) {
			t.Errorf("Keep(%d) = %v, want %v", i, k.Keep(i), i < 50)
		}
	}
}

func TestSeqContext1(t *testing.T) {
	in := []glyph.Info{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}, {GID: 99}, {GID: 5}}
	l := &SeqContext1{
		Cov: coverage.Table{2: 0, 3: 1, 4: 2},
		RuleSets: [][]seqRule{
			{ // seq = 2, ...
				{Input: []glyph.ID{2}},
				{Input: []glyph.ID{3, 4, 6}},
				{Input: []glyph.ID{3, 4}},
				{Input: []glyph.ID{3, 4, 5}}, // does not match since it comes last
			},
			{ // seq = 3, ...
				{Input: []glyph.ID{3}},
				{Input: []glyph.ID{5}},
				{Input: []glyph.ID{4, 5, 6}},
			},
			{ // seq = 4, ...
				{Input: []glyph.ID{5, 6}},
				{Input: []glyph.ID{4}},
				{Input: []glyph.ID{5}},
			},
		},
	}
	ctx := &Context{Seq: in, Keep: makeDebugKeepFunc()}

	cases := []struct{ before, after int }{
		{0, -1},
		{1, 4}, // matches 2, 3, 4 (the rule for 3,4,5 comes later and is never tried)
		{2, -1},
		{3, 6}, // matches 4, [99,] 5
		{4, -1},
		{5, -1},
	}
	for _, c := range cases {
		next := l.apply(ctx, c.before, len(in))
		if next != c.after {
			t.Errorf("apply(%d) = %d, want %d", c.before, next, c.after)
		}
	}
}

func TestSeqContext2(t *testing.T) {
	// glyph 20 is the only covered anchor; glyphs 21 and 30 both carry
	// class 1, glyph 40 carries class 2, everything else defaults to
	// class 0.
	in := []glyph.Info{{GID: 10}, {GID: 20}, {GID: 21}, {GID: 30}, {GID: 99}, {GID: 40}}
	l := &SeqContext2{
		Cov:      coverage.Table{20: 0},
		ClassDef: classdef.Table{21: 1, 30: 1, 40: 2},
		ClassRuleSet: map[uint16][]classSeqRule{
			0: { // seq = class0 (glyph 20 itself), ...
				{Input: []uint16{1, 1}},
			},
		},
	}
	ctx := &Context{Seq: in, Keep: makeDebugKeepFunc()}

	cases := []struct{ before, after int }{
		{0, -1}, // glyph 10 is not covered
		{1, 4},  // matches 20, 21, 30
		{2, -1}, // glyph 21 is not covered
		{3, -1}, // glyph 30 is not covered
	}
	for _, c := range cases {
		next := l.apply(ctx, c.before, len(in))
		if next != c.after {
			t.Errorf("apply(%d) = %d, want %d", c.before, next, c.after)
		}
	}
}

func TestSeqContext3(t *testing.T) {
	in := []glyph.Info{{GID: 1}, {GID: 2}, {GID: 3}, {GID: 4}, {GID: 99}, {GID: 5}}
	l := &SeqContext3{
		Cov: []coverage.Table{
			{1: 0, 3: 0, 4: 0},
			{2: 0, 4: 0, 5: 0},
			{3: 0, 5: 0},
		},
	}
	ctx := &Context{Seq: in, Keep: makeDebugKeepFunc()}

	cases := []struct{ before, after int }{
		{0, 3}, // matches 1, 2, 3
		{1, -1},
		{2, 6}, // matches 3, 4, [99,] 5
		{3, -1},
		{4, -1},
		{5, -1},
	}
	for _, c := range cases {
		next := l.apply(ctx, c.before, len(in))
		if next != c.after {
			t.Errorf("apply(%d) = %d, want %d", c.before, next, c.after)
		}
	}
}

func TestSeqContext1Nested(t *testing.T) {
	// A Gsub1_1 bumps GID 2 to GID 102 at sequence index 1.
	info := &Info{
		LookupList: LookupList{
			{
				Meta: &LookupMetaInfo{LookupType: 5},
				Subtables: []Subtable{
					&SeqContext1{
						Cov: coverage.Table{1: 0},
						RuleSets: [][]seqRule{
							{
								{
									Input: []glyph.ID{2},
									Actions: SeqLookupRecords{
										{SequenceIndex: 1, LookupListIndex: 1},
									},
								},
							},
						},
					},
				},
			},
			{
				Meta: &LookupMetaInfo{LookupType: 1},
				Subtables: []Subtable{
					&Gsub1_1{Cov: coverage.Set{2: true}, Delta: 100},
				},
			},
		},
	}
	engine := info.LookupList.NewEngine([]LookupIndex{0}, nil)
	seq := engine.Substitute([]glyph.Info{{GID: 1}, {GID: 2}, {GID: 3}})
	if len(seq) != 3 || seq[1].GID != 102 {
		t.Fatalf("got %v, want GID 102 at position 1", seq)
	}
}
