package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/compenguy/encodingbuf"
)

// replacement is the UTF-8 encoding of U+FFFD.
var replacement = []byte("�")

// strictDecoder drives an x/text decoding transformer and refuses its
// replacement behavior: table decoders substitute U+FFFD for malformed
// input instead of failing, so the wrapper feeds the transformer minimal
// input windows and inspects the output for replacement runes. A window
// whose consumed bytes are exactly the encoding's own byte sequence for
// U+FFFD (gb18030 covers all of Unicode and has one) is a genuine decode
// and passes; any other replacement rune marks malformed input, reported
// as a positioned error. Most wrapped encodings cannot represent U+FFFD
// at all, so for them every replacement rune is a substitution.
//
// This path serves the multibyte CJK encodings; UTF-8, UTF-16 and the
// single-byte codepages have native strict decoders.
type strictDecoder struct {
	t     transform.Transformer
	fffd  []byte // the encoding's byte sequence for U+FFFD, nil if none
	buf   []byte
	carry []byte
	off   int64
}

func newStrictDecoder(enc encoding.Encoding) *strictDecoder {
	d := &strictDecoder{t: enc.NewDecoder()}
	if seq, err := enc.NewEncoder().Bytes([]byte("�")); err == nil {
		d.fffd = seq
	}
	return d
}

func (d *strictDecoder) Reset() {
	d.t.Reset()
	d.buf = d.buf[:0]
	d.carry = d.carry[:0]
	d.off = 0
}

func (d *strictDecoder) Decode(src []byte, eof bool) (int, []byte, error) {
	in := src
	if len(d.carry) > 0 {
		in = append(d.carry[:len(d.carry):len(d.carry)], src...)
	}
	base := d.off
	pend := len(in) - len(src)
	d.buf = d.buf[:0]

	i := 0 // bytes of in committed to the transformer
	for i < len(in) {
		// Present the smallest window the transformer will accept, so a
		// replacement rune can be pinned to the input bytes that produced
		// it. A window grows only while the transformer reports it is
		// incomplete.
		w := i + 1
		for {
			last := eof && w == len(in)
			if cap(d.buf)-len(d.buf) < utf8.UTFMax {
				d.buf = grow(d.buf)
			}
			dst := d.buf[len(d.buf):cap(d.buf)]
			nDst, nSrc, err := d.t.Transform(dst, in[i:w], last)
			if bytes.Contains(dst[:nDst], replacement) && !d.encodedReplacement(in[i:i+nSrc], dst[:nDst]) {
				n := i - pend
				if n < 0 {
					n = 0
				}
				return n, nil, encodingbuf.NewMalformedError(in[i:w], base+int64(i))
			}
			d.buf = d.buf[:len(d.buf)+nDst]
			i += nSrc

			switch err {
			case nil:
				// Window fully consumed.
			case transform.ErrShortDst:
				d.buf = grow(d.buf)
				w = i + 1
				continue
			case transform.ErrShortSrc:
				if w < len(in) {
					w++
					continue
				}
				// True partial character at the chunk end.
				goto tail
			default:
				n := i - pend
				if n < 0 {
					n = 0
				}
				return n, nil, err
			}
			break
		}
	}

tail:
	d.carry = append(d.carry[:0], in[i:]...)
	d.off = base + int64(i)
	return len(src), d.buf, nil
}

// encodedReplacement reports whether a window that produced a replacement
// rune was a genuine decode of the encoding's own U+FFFD sequence rather
// than a substitution for malformed input.
func (d *strictDecoder) encodedReplacement(consumed, produced []byte) bool {
	return d.fffd != nil && bytes.Equal(consumed, d.fffd) && bytes.Equal(produced, replacement)
}

func grow(b []byte) []byte {
	nb := make([]byte, len(b), 2*cap(b)+64)
	copy(nb, b)
	return nb
}
