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
	"seehuhn.de/go/otlayout/opentype/coverage"
)

// TestRecursionDepthCap checks that a lookup which invokes itself
// through a contextual rule is cut off after maxNestedActions nested
// invocations rather than recursing forever.
func TestRecursionDepthCap(t *testing.T) {
	const gidA glyph.ID = 1

	info := &Info{
		LookupList: LookupList{
			{
				Meta: &LookupMetaInfo{LookupType: 5},
				Subtables: []Subtable{
					&SeqContext1{
						Cov: coverage.Table{gidA: 0},
						RuleSets: [][]seqRule{
							{
								{
									Input: nil,
									Actions: SeqLookupRecords{
										{SequenceIndex: 0, LookupListIndex: 0},
									},
								},
							},
						},
					},
				},
			},
		},
	}
	engine := info.LookupList.NewEngine([]LookupIndex{0}, nil)

	// A single glyph; the rule matches itself and re-invokes lookup 0
	// at the same position indefinitely, bounded only by numActions.
	out := engine.Substitute([]glyph.Info{{GID: gidA}})
	if len(out) != 1 || out[0].GID != gidA {
		t.Fatalf("Substitute() = %v, want unchanged single glyph", out)
	}
}

func TestPositionAccumulatesAcrossLookups(t *testing.T) {
	const gidA glyph.ID = 1

	info := &Info{
		LookupList: LookupList{
			{
				Meta:      &LookupMetaInfo{LookupType: 1},
				Subtables: []Subtable{&Gpos1_1{Cov: coverage.Table{gidA: 0}, Adjust: glyph.Adjustment{XAdvance: -10}}},
			},
			{
				Meta:      &LookupMetaInfo{LookupType: 1},
				Subtables: []Subtable{&Gpos1_1{Cov: coverage.Table{gidA: 0}, Adjust: glyph.Adjustment{YPlacement: 3}}},
			},
		},
	}
	engine := info.LookupList.NewEngine([]LookupIndex{0, 1}, nil)

	adj := engine.Position([]glyph.Info{{GID: gidA}})
	got := adj[0]
	if got.XAdvance != -10 || got.YPlacement != 3 {
		t.Fatalf("Position()[0] = %+v, want {XAdvance:-10 YPlacement:3}", got)
	}
}

func TestReplaceRangeGrowsAndShrinks(t *testing.T) {
	seq := []glyph.Info{{GID: 1}, {GID: 2}, {GID: 3}}

	grown := replaceRange(append([]glyph.Info(nil), seq...), []int{1}, []glyph.Info{{GID: 20}, {GID: 21}})
	if got := fromInfo(grown); !equalGIDs(got, []glyph.ID{1, 20, 21, 3}) {
		t.Errorf("grow: got %v", got)
	}

	shrunk := replaceRange(append([]glyph.Info(nil), seq...), []int{0, 1}, []glyph.Info{{GID: 30}})
	if got := fromInfo(shrunk); !equalGIDs(got, []glyph.ID{30, 3}) {
		t.Errorf("shrink: got %v", got)
	}

	deleted := replaceRange(append([]glyph.Info(nil), seq...), []int{1}, nil)
	if got := fromInfo(deleted); !equalGIDs(got, []glyph.ID{1, 3}) {
		t.Errorf("delete: got %v", got)
	}
}
