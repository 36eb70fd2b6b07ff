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
	"golang.org/x/exp/slices"

	"seehuhn.de/go/otlayout/parser"
)

// FeatureIndex indexes into a FeatureListInfo.
type FeatureIndex int

// Language describes the features enabled for one script/language
// combination: an optional required feature, applied unconditionally,
// and a list of optional features that the caller can enable by tag.
type Language struct {
	Tag             Tag
	RequiredFeature FeatureIndex // -1 if there is no required feature
	FeatureIndices  []FeatureIndex
}

// Script maps language tags to their Language record.  Default holds
// the script's anonymous default-language entry, used when the caller
// requests a language the script does not list explicitly.
type Script struct {
	Tag       Tag
	Default   *Language
	Languages map[Tag]*Language
}

// ScriptListInfo is the decoded ScriptList table of a GPOS/GSUB table,
// keyed by script tag.
type ScriptListInfo map[Tag]*Script

// Feature is one entry of the FeatureList: a tag, the byte position of
// an optional FeatureParams table (0 if absent, not otherwise
// interpreted by this engine), and the lookups it activates.
type Feature struct {
	Tag        Tag
	ParamsPos  int64
	LookupList []LookupIndex
}

// FeatureListInfo is the decoded FeatureList table of a GPOS/GSUB table.
type FeatureListInfo []*Feature

type taggedRecord struct {
	Tag    Tag
	Offset uint16
}

// readTaggedList decodes the uniform `u16 count; Record{Tag; u16
// offset}[count]` layout used by ScriptList, FeatureList, LangSysList
// and similar tables.
func readTaggedList(p *parser.Parser, pos int64) ([]taggedRecord, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	count, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	res := make([]taggedRecord, count)
	for i := range res {
		tagBytes, err := p.ReadUint32()
		if err != nil {
			return nil, err
		}
		offset, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = taggedRecord{Tag: Tag(tagBytes), Offset: offset}
	}
	return res, nil
}

func readLangSys(p *parser.Parser, pos int64, tag Tag) (*Language, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}
	_, err = p.ReadUint16() // lookupOrderOffset, reserved for future use
	if err != nil {
		return nil, err
	}
	requiredFeatureIndex, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	featureIndices, err := p.ReadUint16Slice()
	if err != nil {
		return nil, err
	}

	lang := &Language{Tag: tag, RequiredFeature: -1}
	if requiredFeatureIndex != 0xFFFF {
		lang.RequiredFeature = FeatureIndex(requiredFeatureIndex)
	}
	lang.FeatureIndices = make([]FeatureIndex, len(featureIndices))
	for i, fi := range featureIndices {
		lang.FeatureIndices[i] = FeatureIndex(fi)
	}
	return lang, nil
}

func readScriptList(p *parser.Parser, pos int64) (ScriptListInfo, error) {
	records, err := readTaggedList(p, pos)
	if err != nil {
		return nil, err
	}

	info := make(ScriptListInfo, len(records))
	for _, rec := range records {
		scriptPos := pos + int64(rec.Offset)
		err := p.SeekPos(scriptPos)
		if err != nil {
			return nil, err
		}
		defaultLangSysOffset, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		langSysRecords, err := readTaggedList(p, p.Pos())
		if err != nil {
			return nil, err
		}

		script := &Script{Tag: rec.Tag, Languages: make(map[Tag]*Language, len(langSysRecords))}
		if defaultLangSysOffset != 0 {
			script.Default, err = readLangSys(p, scriptPos+int64(defaultLangSysOffset), 0)
			if err != nil {
				return nil, err
			}
		}
		for _, lr := range langSysRecords {
			lang, err := readLangSys(p, scriptPos+int64(lr.Offset), lr.Tag)
			if err != nil {
				return nil, err
			}
			script.Languages[lr.Tag] = lang
		}

		info[rec.Tag] = script
	}
	return info, nil
}

func readFeatureList(p *parser.Parser, pos int64) (FeatureListInfo, error) {
	records, err := readTaggedList(p, pos)
	if err != nil {
		return nil, err
	}

	info := make(FeatureListInfo, len(records))
	for i, rec := range records {
		featurePos := pos + int64(rec.Offset)
		err := p.SeekPos(featurePos)
		if err != nil {
			return nil, err
		}
		featureParamsOffset, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookupIndices, err := p.ReadUint16Slice()
		if err != nil {
			return nil, err
		}

		feature := &Feature{Tag: rec.Tag}
		if featureParamsOffset != 0 {
			feature.ParamsPos = featurePos + int64(featureParamsOffset)
		}
		feature.LookupList = make([]LookupIndex, len(lookupIndices))
		for j, li := range lookupIndices {
			feature.LookupList[j] = LookupIndex(li)
		}

		info[i] = feature
	}
	return info, nil
}

// FeatureSet selects which script, language and optional features a
// caller wants applied.
type FeatureSet struct {
	Script   Tag
	Language Tag
	Enabled  map[Tag]bool
}

// FindLookups implements the Script/Language/Feature resolution
// algorithm: locate the script (falling back to DFLT), locate the
// language within it (falling back to the script's default language),
// collect the required feature plus any enabled optional features, and
// return the union of their lookup indices, deduplicated and sorted in
// ascending order.
func (info *Info) FindLookups(fs FeatureSet) []LookupIndex {
	script := info.ScriptList[fs.Script]
	if script == nil {
		script = info.ScriptList[tagDFLT]
	}
	if script == nil {
		return nil
	}

	lang := script.Languages[fs.Language]
	if lang == nil {
		lang = script.Default
	}
	if lang == nil {
		return nil
	}

	var featureIndices []FeatureIndex
	if lang.RequiredFeature >= 0 {
		featureIndices = append(featureIndices, lang.RequiredFeature)
	}
	for _, fi := range lang.FeatureIndices {
		if int(fi) < 0 || int(fi) >= len(info.FeatureList) {
			continue
		}
		if fs.Enabled[info.FeatureList[fi].Tag] {
			featureIndices = append(featureIndices, fi)
		}
	}

	seen := make(map[LookupIndex]bool)
	var result []LookupIndex
	for _, fi := range featureIndices {
		if int(fi) < 0 || int(fi) >= len(info.FeatureList) {
			continue
		}
		for _, li := range info.FeatureList[fi].LookupList {
			if !seen[li] {
				seen[li] = true
				result = append(result, li)
			}
		}
	}

	slices.Sort(result)
	return result
}
