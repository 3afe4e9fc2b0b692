package charset

import (
	"unicode/utf8"

	"github.com/compenguy/encodingbuf"
)

// utf8Decoder validates UTF-8 input and passes it through unchanged. A
// partial rune at the end of a chunk is carried to the next call.
type utf8Decoder struct {
	buf   []byte
	carry []byte
	off   int64 // stream offset of the first carried (or next) input byte
}

func newUTF8Decoder() *utf8Decoder { return &utf8Decoder{} }

func (d *utf8Decoder) Reset() {
	d.buf = d.buf[:0]
	d.carry = d.carry[:0]
	d.off = 0
}

func (d *utf8Decoder) Decode(src []byte, eof bool) (int, []byte, error) {
	in := src
	if len(d.carry) > 0 {
		in = append(d.carry[:len(d.carry):len(d.carry)], src...)
	}
	base := d.off
	pend := len(in) - len(src) // bytes of in that came from the carry

	i := 0
	for i < len(in) {
		if c := in[i]; c < utf8.RuneSelf {
			i++
			continue
		}
		_, size := utf8.DecodeRune(in[i:])
		if size == 1 {
			// All valid single-byte runes were handled above, so this is
			// either a partial rune at the chunk end or invalid UTF-8.
			if !eof && !utf8.FullRune(in[i:]) {
				break
			}
			n := i - pend
			if n < 0 {
				n = 0
			}
			return n, nil, encodingbuf.NewMalformedError(in[i:], base+int64(i))
		}
		i += size
	}

	d.buf = append(d.buf[:0], in[:i]...)
	d.carry = append(d.carry[:0], in[i:]...)
	d.off = base + int64(i)
	return len(src), d.buf, nil
}
