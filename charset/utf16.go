package charset

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/compenguy/encodingbuf"
)

type byteOrder int

const (
	littleEndian byteOrder = iota
	bigEndian
)

const (
	surr1 = 0xd800 // first high surrogate
	surr2 = 0xdc00 // first low surrogate
	surr3 = 0xe000 // first code point past the surrogates
)

// utf16Decoder decodes UTF-16 code units in a fixed byte order. Incomplete
// code units and unpaired high surrogates at the end of a chunk are carried
// to the next call, so the decoder holds at most three pending bytes.
//
// A byte-order mark is not special: it decodes to U+FEFF.
type utf16Decoder struct {
	order byteOrder
	buf   []byte
	carry []byte
	off   int64
}

func newUTF16Decoder(order byteOrder) *utf16Decoder {
	return &utf16Decoder{order: order}
}

func (d *utf16Decoder) Reset() {
	d.buf = d.buf[:0]
	d.carry = d.carry[:0]
	d.off = 0
}

func (d *utf16Decoder) unit(hi, lo byte) uint16 {
	if d.order == littleEndian {
		return uint16(lo)<<8 | uint16(hi)
	}
	return uint16(hi)<<8 | uint16(lo)
}

func (d *utf16Decoder) Decode(src []byte, eof bool) (int, []byte, error) {
	in := src
	if len(d.carry) > 0 {
		in = append(d.carry[:len(d.carry):len(d.carry)], src...)
	}
	base := d.off
	pend := len(in) - len(src)
	d.buf = d.buf[:0]

	malformed := func(i, end int) (int, []byte, error) {
		n := i - pend
		if n < 0 {
			n = 0
		}
		return n, nil, encodingbuf.NewMalformedError(in[i:end], base+int64(i))
	}

	i := 0
	for i+2 <= len(in) {
		u := d.unit(in[i], in[i+1])
		switch {
		case u < surr1 || u >= surr3:
			d.buf = utf8.AppendRune(d.buf, rune(u))
			i += 2
		case u >= surr2:
			// Low surrogate with no preceding high surrogate.
			return malformed(i, i+2)
		case i+4 > len(in):
			if eof {
				return malformed(i, len(in))
			}
			// High surrogate split across chunks; wait for its pair.
			goto tail
		default:
			u2 := d.unit(in[i+2], in[i+3])
			if u2 < surr2 || u2 >= surr3 {
				return malformed(i, i+2)
			}
			d.buf = utf8.AppendRune(d.buf, utf16.DecodeRune(rune(u), rune(u2)))
			i += 4
		}
	}
	if eof && i < len(in) {
		// Odd trailing byte at end of stream.
		return malformed(i, len(in))
	}

tail:
	d.carry = append(d.carry[:0], in[i:]...)
	d.off = base + int64(i)
	return len(src), d.buf, nil
}
