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

// Tag is a four-byte OpenType identifier (a script, language, or feature
// tag), compared as an unsigned 32-bit big-endian integer.
type Tag uint32

// MakeTag builds a Tag from its four ASCII bytes.  If b is shorter than
// four bytes, the remainder is padded with spaces, matching the
// convention used for script/language/feature tags in the OpenType
// specification.
func MakeTag(b []byte) Tag {
	var buf [4]byte
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf[:], b)
	return Tag(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
}

// T is a convenience constructor equivalent to MakeTag([]byte(s)).
func T(s string) Tag {
	return MakeTag([]byte(s))
}

// String returns the tag's four ASCII characters.
func (t Tag) String() string {
	return string([]byte{
		byte(t >> 24),
		byte(t >> 16),
		byte(t >> 8),
		byte(t),
	})
}

// tagDFLT is the reserved script/language tag meaning "default".
var tagDFLT = T("DFLT")
