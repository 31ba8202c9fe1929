// Package reader decodes a byte stream into Unicode scalar values and
// hands the scanner a sliding window over them, tracking line/column
// position as it goes. It is grounded in the libyaml-style raw-buffer
// decode loop the teacher library uses for its parser input, but
// restructured behind the peek/prefix/forward contract spec'd for this
// core rather than the teacher's pull-by-length buffer API.
package reader

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/halyard-yaml/halyard/internal/mark"
)

// Encoding identifies how the input byte stream was (or should be) decoded.
type Encoding int

const (
	AnyEncoding Encoding = iota
	UTF8
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	case UTF32LE:
		return "utf-32le"
	case UTF32BE:
		return "utf-32be"
	default:
		return "unknown"
	}
}

// Error is a reader-stage failure: a bad BOM, a truncated multi-byte
// sequence, or a codepoint outside the YAML printable set.
type Error struct {
	Problem string
	At      mark.Mark
}

func (e *Error) Error() string { return "reader: " + e.Problem }

// Reader decodes bytes into runes on demand and exposes a small window
// over them to the scanner.
type Reader struct {
	src      *bufio.Reader
	encoding Encoding

	buffer []rune // decoded runes not yet consumed, plus a trailing NUL sentinel
	eof    bool   // true once the NUL sentinel has been appended

	mark mark.Mark

	err error // first decode failure; every later fill returns it again
}

// New wraps r, auto-detecting the encoding from an optional BOM.
func New(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r), encoding: AnyEncoding}
}

// NewBytes is a convenience constructor over an in-memory buffer.
func NewBytes(b []byte) *Reader {
	return New(newByteReader(b))
}

func newByteReader(b []byte) io.Reader {
	if len(b) == 0 {
		b = []byte{'\n'}
	}
	return &sliceReader{b: b}
}

type sliceReader struct {
	b   []byte
	pos int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.pos >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.pos:])
	s.pos += n
	return n, nil
}

// Mark reports the reader's current position.
func (r *Reader) Mark() mark.Mark { return r.mark }

// Encoding reports the input encoding detected from the BOM (UTF-8 when
// there is none). It is only
// meaningful after the first successful decode call.
func (r *Reader) Encoding() Encoding { return r.encoding }

// ensure decodes until at least n runes (including a possible trailing
// NUL sentinel) are buffered, or returns an error.
func (r *Reader) ensure(n int) error {
	if len(r.buffer) >= n {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	if r.encoding == AnyEncoding {
		if err := r.detectEncoding(); err != nil {
			return err
		}
	}
	for len(r.buffer) < n && !r.eof {
		if err := r.decodeMore(); err != nil {
			r.err = err
			return err
		}
	}
	return nil
}

var boms = []struct {
	prefix []byte
	enc    Encoding
}{
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, UTF32BE},
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, UTF32LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
}

func (r *Reader) detectEncoding() error {
	peeked, _ := r.src.Peek(4)
	for _, b := range boms {
		if len(peeked) >= len(b.prefix) && bytesEqual(peeked[:len(b.prefix)], b.prefix) {
			r.encoding = b.enc
			_, _ = r.src.Discard(len(b.prefix))
			return nil
		}
	}
	r.encoding = UTF8
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// decodeMore reads and decodes one more chunk of input, appending
// decoded runes (or the EOF sentinel) to r.buffer.
func (r *Reader) decodeMore() error {
	switch r.encoding {
	case UTF8:
		return r.decodeUTF8Chunk()
	case UTF16LE, UTF16BE:
		return r.decodeUTF16Chunk()
	case UTF32LE, UTF32BE:
		return r.decodeUTF32Chunk()
	default:
		panic("reader: encoding not determined")
	}
}

func (r *Reader) decodeUTF8Chunk() error {
	for i := 0; i < 64; i++ {
		b, err := r.src.ReadByte()
		if err == io.EOF {
			r.appendRune(0)
			r.eof = true
			return nil
		}
		if err != nil {
			return &Error{Problem: "input error: " + err.Error()}
		}
		width := utf8.RuneLen(rune(b))
		if b&0x80 == 0 {
			width = 1
		} else if b&0xE0 == 0xC0 {
			width = 2
		} else if b&0xF0 == 0xE0 {
			width = 3
		} else if b&0xF8 == 0xF0 {
			width = 4
		} else {
			return &Error{Problem: "invalid leading UTF-8 octet"}
		}
		buf := make([]byte, width)
		buf[0] = b
		for k := 1; k < width; k++ {
			nb, err := r.src.ReadByte()
			if err != nil {
				return &Error{Problem: "incomplete UTF-8 octet sequence"}
			}
			if nb&0xC0 != 0x80 {
				return &Error{Problem: "invalid trailing UTF-8 octet"}
			}
			buf[k] = nb
		}
		ru, size := utf8.DecodeRune(buf)
		if ru == utf8.RuneError && size <= 1 {
			return &Error{Problem: "invalid UTF-8 sequence"}
		}
		if err := r.checkPrintable(ru); err != nil {
			return err
		}
		r.appendRune(ru)
	}
	return nil
}

func (r *Reader) decodeUTF16Chunk() error {
	readUnit := func() (uint16, bool, error) {
		var b [2]byte
		n, err := io.ReadFull(r.src, b[:])
		if n == 0 && err == io.EOF {
			return 0, true, nil
		}
		if err != nil {
			return 0, false, &Error{Problem: "input error: truncated UTF-16 stream"}
		}
		if r.encoding == UTF16LE {
			return uint16(b[0]) | uint16(b[1])<<8, false, nil
		}
		return uint16(b[1]) | uint16(b[0])<<8, false, nil
	}
	for i := 0; i < 64; i++ {
		u1, eof, err := readUnit()
		if err != nil {
			return err
		}
		if eof {
			r.appendRune(0)
			r.eof = true
			return nil
		}
		var ru rune
		if u1 >= 0xD800 && u1 <= 0xDBFF {
			u2, eof2, err := readUnit()
			if err != nil {
				return err
			}
			if eof2 || u2 < 0xDC00 || u2 > 0xDFFF {
				return &Error{Problem: "unpaired UTF-16 surrogate"}
			}
			ru = 0x10000 + (rune(u1-0xD800)<<10 | rune(u2-0xDC00))
		} else if u1 >= 0xDC00 && u1 <= 0xDFFF {
			return &Error{Problem: "unexpected low surrogate area"}
		} else {
			ru = rune(u1)
		}
		if err := r.checkPrintable(ru); err != nil {
			return err
		}
		r.appendRune(ru)
	}
	return nil
}

func (r *Reader) decodeUTF32Chunk() error {
	for i := 0; i < 64; i++ {
		var b [4]byte
		n, err := io.ReadFull(r.src, b[:])
		if n == 0 && err == io.EOF {
			r.appendRune(0)
			r.eof = true
			return nil
		}
		if err != nil {
			return &Error{Problem: "input error: truncated UTF-32 stream (length must be a multiple of 4)"}
		}
		var v uint32
		if r.encoding == UTF32LE {
			v = uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		} else {
			v = uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
		}
		ru := rune(v)
		if v > 0x10FFFF || (v >= 0xD800 && v <= 0xDFFF) {
			return &Error{Problem: "invalid Unicode character"}
		}
		if err := r.checkPrintable(ru); err != nil {
			return err
		}
		r.appendRune(ru)
	}
	return nil
}

// checkPrintable rejects any rune outside the YAML printable set.
func (r *Reader) checkPrintable(ru rune) error {
	switch {
	case ru == '\t', ru == '\n', ru == '\r', ru == 0x85:
	case ru >= 0x20 && ru <= 0x7E:
	case ru >= 0xA0 && ru <= 0xD7FF:
	case ru >= 0xE000 && ru <= 0xFFFD:
	case ru >= 0x10000 && ru <= 0x10FFFF:
	default:
		return &Error{Problem: fmt.Sprintf("control character U+%04X is not allowed", ru)}
	}
	return nil
}

func (r *Reader) appendRune(ru rune) {
	r.buffer = append(r.buffer, ru)
}

// Peek returns the k-th character ahead (0 = current), or the NUL
// sentinel if the stream has been exhausted or decoding stopped at an
// error (which Err then reports).
func (r *Reader) Peek(k int) rune {
	if err := r.ensure(k + 1); err != nil {
		return 0
	}
	if k >= len(r.buffer) {
		return 0
	}
	return r.buffer[k]
}

// Prefix returns the next n characters as a string. If fewer remain the
// result is shorter: it holds what is left, followed by one NUL sentinel
// once the end of the stream has been reached.
func (r *Reader) Prefix(n int) string {
	_ = r.ensure(n)
	if n > len(r.buffer) {
		n = len(r.buffer)
	}
	return string(r.buffer[:n])
}

// Err returns a pending decode error discovered while filling the
// lookahead window, if any.
func (r *Reader) Err() error {
	_ = r.ensure(1)
	return r.err
}

// Forward advances the position by n characters, updating line/column
// and treating the YAML line-break set as line breaks (CRLF counts as
// one break; a BOM mark does not advance the column).
func (r *Reader) Forward(n int) {
	_ = r.ensure(n + 1)
	for i := 0; i < n && i < len(r.buffer); i++ {
		c := r.buffer[i]
		switch {
		case c == 0xFEFF:
			// zero-width; consumed without moving the column
		case c == '\r' && i+1 < n && i+1 < len(r.buffer) && r.buffer[i+1] == '\n':
			// CRLF collapses to a single line break for counting purposes.
			r.mark = r.mark.NextLine()
			i++
		case isBreak(c):
			r.mark = r.mark.NextLine()
		default:
			r.mark = r.mark.Add(1)
		}
	}
	if n <= len(r.buffer) {
		r.buffer = r.buffer[n:]
	} else {
		r.buffer = nil
	}
}

func isBreak(c rune) bool {
	switch c {
	case '\n', '\r', 0x85, 0x2028, 0x2029:
		return true
	default:
		return false
	}
}
