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

package otlayout

import (
	"testing"

	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/coverage"
	"seehuhn.de/go/otlayout/opentype/gtab"
)

// TestPositionGlyphsResolvesFeature builds a minimal GPOS Info by hand
// (one script, one feature, one Single Adjustment lookup) and checks
// that PositionGlyphs resolves the "kern" feature under the default
// script/language and applies the lookup.
func TestPositionGlyphsResolvesFeature(t *testing.T) {
	const gidA glyph.ID = 1
	tagDFLT := gtab.T("DFLT")
	tagKern := gtab.T("kern")

	info := &gtab.Info{
		ScriptList: gtab.ScriptListInfo{
			tagDFLT: {
				Tag:     tagDFLT,
				Default: &gtab.Language{RequiredFeature: -1, FeatureIndices: []gtab.FeatureIndex{0}},
			},
		},
		FeatureList: gtab.FeatureListInfo{
			{Tag: tagKern, LookupList: []gtab.LookupIndex{0}},
		},
		LookupList: gtab.LookupList{
			{
				Meta: &gtab.LookupMetaInfo{LookupType: 1},
				Subtables: []gtab.Subtable{
					&gtab.Gpos1_1{Cov: coverage.Table{gidA: 0}, Adjust: glyph.Adjustment{XAdvance: -16}},
				},
			},
		},
	}

	fs := gtab.FeatureSet{Script: tagDFLT, Enabled: map[gtab.Tag]bool{tagKern: true}}
	adj := PositionGlyphs(info, nil, []glyph.Info{{GID: gidA}}, fs)
	if got := adj[0]; got.XAdvance != -16 {
		t.Fatalf("adjustments[0] = %+v, want XAdvance -16", got)
	}

	// Disabling the feature leaves the glyph unaffected.
	fsOff := gtab.FeatureSet{Script: tagDFLT}
	adjOff := PositionGlyphs(info, nil, []glyph.Info{{GID: gidA}}, fsOff)
	if len(adjOff) != 0 {
		t.Fatalf("adjustments with feature disabled = %v, want empty", adjOff)
	}
}

// TestSubstituteGlyphsResolvesFeature mirrors the GPOS case for GSUB,
// using a Single Substitution lookup reached through the default
// language's required feature (tagged "liga"), which applies without
// being enabled in the FeatureSet.
func TestSubstituteGlyphsResolvesFeature(t *testing.T) {
	const gidA, gidB glyph.ID = 1, 2
	tagDFLT := gtab.T("DFLT")
	tagLiga := gtab.T("liga")

	info := &gtab.Info{
		ScriptList: gtab.ScriptListInfo{
			tagDFLT: {
				Tag:     tagDFLT,
				Default: &gtab.Language{RequiredFeature: 0},
			},
		},
		FeatureList: gtab.FeatureListInfo{
			{Tag: tagLiga, LookupList: []gtab.LookupIndex{0}},
		},
		LookupList: gtab.LookupList{
			{
				Meta: &gtab.LookupMetaInfo{LookupType: 1},
				Subtables: []gtab.Subtable{
					&gtab.Gsub1_1{Cov: coverage.Set{gidA: true}, Delta: gidB - gidA},
				},
			},
		},
	}

	fs := gtab.FeatureSet{Script: tagDFLT}
	out := SubstituteGlyphs(info, nil, []glyph.Info{{GID: gidA}}, fs)
	if len(out) != 1 || out[0].GID != gidB {
		t.Fatalf("SubstituteGlyphs() = %v, want [%d]", out, gidB)
	}
}
