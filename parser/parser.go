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

// Package parser implements bounds-checked, big-endian reading of OpenType
// table data.  A [Parser] reads on demand from the underlying reader,
// without loading the table into memory first; it has no sub-windows,
// so every position is an absolute offset into that reader.
package parser

import (
	"errors"
	"fmt"
	"io"
)

// ReadSeekSizer is the interface a [Parser] reads from.  Callers typically
// pass an *io.SectionReader bounded to a single font table, or a
// bytes.Reader wrapping an in-memory table buffer; both borrow the
// underlying bytes rather than copying them.
type ReadSeekSizer interface {
	io.ReadSeeker
	Size() int64
}

// Parser reads big-endian integers and byte slices from a ReadSeekSizer,
// tracking a cursor position.  All offsets used by callers are relative to
// the start of the underlying ReadSeekSizer; it is the caller's
// responsibility to bound that reader to the enclosing table.
type Parser struct {
	r   ReadSeekSizer
	pos int64
}

// New creates a new Parser reading from r.
func New(r ReadSeekSizer) *Parser {
	return &Parser{r: r}
}

// Size returns the total number of bytes available to the parser.
func (p *Parser) Size() int64 {
	return p.r.Size()
}

// Pos returns the parser's current position.
func (p *Parser) Pos() int64 {
	return p.pos
}

// SeekPos moves the parser's cursor to the given absolute position.
func (p *Parser) SeekPos(pos int64) error {
	if pos < 0 || pos > p.r.Size() {
		return &InvalidFontError{Reason: "seek out of range"}
	}
	_, err := p.r.Seek(pos, io.SeekStart)
	if err != nil {
		return err
	}
	p.pos = pos
	return nil
}

// Read implements io.Reader, so that a Parser can be used with
// encoding/binary.Read and similar helpers.
func (p *Parser) Read(buf []byte) (int, error) {
	n, err := io.ReadFull(p.r, buf)
	p.pos += int64(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return n, err
}

// ReadBytes reads and returns the next n bytes.
func (p *Parser) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := p.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint16 reads a big-endian uint16.
func (p *Parser) ReadUint16() (uint16, error) {
	var buf [2]byte
	_, err := p.Read(buf[:])
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadInt16 reads a big-endian, two's-complement int16.
func (p *Parser) ReadInt16() (int16, error) {
	u, err := p.ReadUint16()
	return int16(u), err
}

// ReadUint32 reads a big-endian uint32.
func (p *Parser) ReadUint32() (uint32, error) {
	var buf [4]byte
	_, err := p.Read(buf[:])
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadUint16Slice reads a uint16 count, followed by that many uint16
// values.  This is the layout used throughout OpenType for offset arrays.
func (p *Parser) ReadUint16Slice() ([]uint16, error) {
	n, err := p.ReadUint16()
	if err != nil {
		return nil, err
	}
	res := make([]uint16, n)
	for i := range res {
		res[i], err = p.ReadUint16()
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// PeekUint16At reads a big-endian uint16 at the given absolute position,
// without disturbing the parser's cursor.
func (p *Parser) PeekUint16At(pos int64) (uint16, error) {
	save := p.pos
	err := p.SeekPos(pos)
	if err != nil {
		return 0, err
	}
	v, err := p.ReadUint16()
	if seekErr := p.SeekPos(save); seekErr != nil && err == nil {
		err = seekErr
	}
	return v, err
}

// InvalidFontError is returned when the font data violates the format in a
// way that makes it unsafe to continue decoding, such as an out-of-range
// offset.  A seek outside the data is reported using this type; a read
// that runs past the end of the data returns io.EOF instead.
type InvalidFontError struct {
	SubSystem string
	Reason    string
}

func (e *InvalidFontError) Error() string {
	if e.SubSystem == "" {
		return "invalid font: " + e.Reason
	}
	return fmt.Sprintf("invalid font (%s): %s", e.SubSystem, e.Reason)
}

// NotSupportedError is returned when the font uses a feature which is
// outside of what this package implements (for example an unknown table
// version).
type NotSupportedError struct {
	SubSystem string
	Feature   string
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("%s: not supported: %s", e.SubSystem, e.Feature)
}
