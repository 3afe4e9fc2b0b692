package charset

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/compenguy/encodingbuf"
)

// charmapDecoder decodes a single-byte codepage via its x/text table. Bytes
// the codepage leaves undefined decode to utf8.RuneError in the table; no
// codepage maps a defined byte to U+FFFD, so that result is exactly the
// malformed case. Single-byte input never splits, so there is no carry.
type charmapDecoder struct {
	cm  *charmap.Charmap
	buf []byte
	off int64
}

func newCharmapDecoder(cm *charmap.Charmap) *charmapDecoder {
	return &charmapDecoder{cm: cm}
}

func (d *charmapDecoder) Reset() {
	d.buf = d.buf[:0]
	d.off = 0
}

func (d *charmapDecoder) Decode(src []byte, eof bool) (int, []byte, error) {
	d.buf = d.buf[:0]
	for i, b := range src {
		r := d.cm.DecodeByte(b)
		if r == utf8.RuneError {
			return i, nil, encodingbuf.NewMalformedError(src[i:i+1], d.off+int64(i))
		}
		d.buf = utf8.AppendRune(d.buf, r)
	}
	d.off += int64(len(src))
	return len(src), d.buf, nil
}
