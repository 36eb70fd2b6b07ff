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
	"seehuhn.de/go/otlayout/glyph"
	"seehuhn.de/go/otlayout/opentype/gdef"
	"seehuhn.de/go/otlayout/parser"
)

// maxNestedActions bounds the total number of nested lookup
// invocations triggered, directly or indirectly, by a single
// contextual or chained-context match.  A font whose rules would
// recurse past this bound has its recursion silently cut off; this
// mirrors real shaping engines, which must never hang on adversarial
// or malformed lookup graphs.
const maxNestedActions = 64

// SeqLookupRecord names a lookup to apply at one position of a
// contextual or chained-context match: SequenceIndex indexes into the
// matched input glyphs (0 = the first input glyph), and
// LookupListIndex names the lookup to invoke there.
type SeqLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex LookupIndex
}

// SeqLookupRecords is an ordered list of SeqLookupRecord, as stored
// directly after a contextual or chained-context rule's glyph/class
// sequence.
type SeqLookupRecords []SeqLookupRecord

func readSeqLookupRecords(p *parser.Parser, count int) (SeqLookupRecords, error) {
	res := make(SeqLookupRecords, count)
	for i := range res {
		seqIndex, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		lookupIndex, err := p.ReadUint16()
		if err != nil {
			return nil, err
		}
		res[i] = SeqLookupRecord{
			SequenceIndex:   seqIndex,
			LookupListIndex: LookupIndex(lookupIndex),
		}
	}
	return res, nil
}

// Context carries the state shared by every Subtable.apply call while
// one lookup (and any lookups nested inside it via a contextual match)
// is being applied to a glyph sequence.
//
// Seq is read by every subtable, and is the only field GSUB subtables
// mutate (in place, via replaceRange); GPOS subtables never change its
// length, and instead merge their effect into Adjustments.
type Context struct {
	Seq         []glyph.Info
	Lookups     LookupList
	Gdef        *gdef.Table
	Keep        *KeepFunc
	Adjustments map[int]glyph.Adjustment // nil in GSUB contexts

	numActions int
}

func (ctx *Context) addAdjustment(pos int, adj glyph.Adjustment) {
	if adj.IsZero() {
		return
	}
	cur := ctx.Adjustments[pos]
	cur.Add(adj)
	ctx.Adjustments[pos] = cur
}

// replaceRange splices repl into ctx.Seq in place of the glyphs at the
// absolute positions listed in matched (which must be in strictly
// increasing order and must all lie within [a, end) for some end), and
// returns the new sequence.  Glyphs between matched positions that were
// skipped by lookup flags are preserved, shifted to sit immediately
// after the replacement.
func replaceRange(seq []glyph.Info, matched []int, repl []glyph.Info) []glyph.Info {
	first := matched[0]
	lastTailPos := matched[len(matched)-1] + 1

	oldLen := len(seq)
	tailLen := oldLen - lastTailPos
	newLen := oldLen - len(matched) + len(repl)
	newTailPos := newLen - tailLen

	var text []rune
	for _, pos := range matched {
		text = append(text, seq[pos].Text...)
	}

	out := seq
	if newLen > oldLen {
		out = append(out, make([]glyph.Info, newLen-oldLen)...)
		copy(out[newTailPos:], out[lastTailPos:])
	}

	// Move the skipped-over glyphs between first and lastTailPos down
	// to just before the new tail, preserving their relative order.
	removeIdx := len(matched) - 1
	insertPos := newTailPos - 1
	for i := lastTailPos - 1; i >= first; i-- {
		if removeIdx >= 0 && matched[removeIdx] == i {
			removeIdx--
		} else {
			out[insertPos] = seq[i]
			insertPos--
		}
	}

	if len(repl) > 0 {
		copy(out[first:], repl)
		out[first].Text = text
	}

	if newLen < oldLen {
		copy(out[newTailPos:], out[lastTailPos:])
		out = out[:newLen]
	}
	return out
}

// applyLookupAt tries every subtable of the lookup at lookupIndex, in
// order, at absolute position pos, bounded by end.  It returns the
// position to continue from, or -1 if no subtable of the lookup
// applies at pos.
func (ctx *Context) applyLookupAt(lookupIndex LookupIndex, pos, end int) int {
	if ctx.numActions >= maxNestedActions {
		return -1
	}
	if int(lookupIndex) < 0 || int(lookupIndex) >= len(ctx.Lookups) {
		return -1
	}
	if pos < 0 || pos >= len(ctx.Seq) || pos >= end {
		return -1
	}
	lookup := ctx.Lookups[lookupIndex]
	keep := newKeepFunc(lookup.Meta, ctx.Gdef)
	if !keep.Keep(ctx.Seq[pos].GID) {
		return -1
	}

	savedKeep := ctx.Keep
	ctx.Keep = keep
	defer func() { ctx.Keep = savedKeep }()

	for _, sub := range lookup.Subtables {
		if newPos := sub.apply(ctx, pos, end); newPos >= 0 {
			return newPos
		}
	}
	return -1
}

// runNestedActions invokes the lookups named by actions against the
// matched input positions of a contextual/chained-context rule, in
// order, and returns the net change in len(ctx.Seq) caused by them.
// Each action's target position is advanced by the cumulative delta
// observed so far, so that a length-changing nested substitution does
// not invalidate the positions of actions still to come.
func (ctx *Context) runNestedActions(inputPos []int, actions SeqLookupRecords) int {
	cur := make([]int, len(inputPos))
	copy(cur, inputPos)

	totalDelta := 0
	for _, action := range actions {
		if ctx.numActions >= maxNestedActions {
			break
		}
		idx := int(action.SequenceIndex)
		if idx < 0 || idx >= len(cur) {
			continue
		}
		pos := cur[idx]
		ctx.numActions++

		lenBefore := len(ctx.Seq)
		if ctx.applyLookupAt(action.LookupListIndex, pos, len(ctx.Seq)) < 0 {
			continue
		}
		delta := len(ctx.Seq) - lenBefore
		if delta == 0 {
			continue
		}
		totalDelta += delta
		for i := range cur {
			if cur[i] > pos {
				cur[i] += delta
			}
		}
	}
	return totalDelta
}

// LayoutEngine applies a fixed, ordered list of lookups from a single
// GPOS or GSUB table to glyph sequences.
type LayoutEngine struct {
	lookups []LookupIndex
	ll      LookupList
	gdef    *gdef.Table
}

// NewEngine creates a layout engine that applies the given lookups, in
// the given order, against ll.  gdefTable may be nil if the font has
// no GDEF table.
func (ll LookupList) NewEngine(lookups []LookupIndex, gdefTable *gdef.Table) *LayoutEngine {
	return &LayoutEngine{lookups: lookups, ll: ll, gdef: gdefTable}
}

// Substitute applies the engine's lookups to seq as a GSUB pass,
// returning the (possibly longer or shorter) result sequence.
func (e *LayoutEngine) Substitute(seq []glyph.Info) []glyph.Info {
	for _, lookupIndex := range e.lookups {
		if int(lookupIndex) >= len(e.ll) {
			continue
		}
		lookup := e.ll[lookupIndex]

		ctx := &Context{
			Seq:     seq,
			Lookups: e.ll,
			Gdef:    e.gdef,
			Keep:    newKeepFunc(lookup.Meta, e.gdef),
		}

		if lookup.Meta.LookupType == gsubReverseChainType {
			ctx.Seq = applyReverseChain(ctx, lookup)
			seq = ctx.Seq
			continue
		}

		pos := 0
		for pos < len(ctx.Seq) {
			remaining := len(ctx.Seq) - pos
			pos = ctx.step(lookup, pos)
			newRemaining := len(ctx.Seq) - pos
			if newRemaining >= remaining {
				// Guarantee forward progress even if a subtable
				// reported a match but somehow made none.
				pos = len(ctx.Seq) - remaining + 1
			}
		}
		seq = ctx.Seq
	}
	return seq
}

// Position applies the engine's lookups to seq as a GPOS pass,
// returning the accumulated per-position adjustments.  seq is never
// modified.
func (e *LayoutEngine) Position(seq []glyph.Info) map[int]glyph.Adjustment {
	adjustments := make(map[int]glyph.Adjustment)

	for _, lookupIndex := range e.lookups {
		if int(lookupIndex) >= len(e.ll) {
			continue
		}
		lookup := e.ll[lookupIndex]

		ctx := &Context{
			Seq:         seq,
			Lookups:     e.ll,
			Gdef:        e.gdef,
			Keep:        newKeepFunc(lookup.Meta, e.gdef),
			Adjustments: adjustments,
		}

		pos := 0
		for pos < len(ctx.Seq) {
			next := ctx.step(lookup, pos)
			if next <= pos {
				next = pos + 1
			}
			pos = next
		}
	}
	return adjustments
}

// step applies lookup at position pos, skipping over glyphs excluded
// by the lookup flags, and returns the position to continue scanning
// from.
func (ctx *Context) step(lookup *LookupTable, pos int) int {
	if !ctx.Keep.Keep(ctx.Seq[pos].GID) {
		return pos + 1
	}
	ctx.numActions = 0
	for _, sub := range lookup.Subtables {
		if newPos := sub.apply(ctx, pos, len(ctx.Seq)); newPos >= 0 {
			return newPos
		}
	}
	return pos + 1
}
