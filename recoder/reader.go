package recoder

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/compenguy/encodingbuf"
	"github.com/compenguy/encodingbuf/charset"
	"github.com/compenguy/encodingbuf/errors"
)

// DefaultBufSize is the default capacity of the input buffer.
const DefaultBufSize = 4096

// maxConsecutiveEmptyReads bounds how often a source may return (0, nil)
// before the reader gives up, mirroring bufio.
const maxConsecutiveEmptyReads = 100

// Reader adds buffered transcoding into UTF-8 to any io.Reader.
//
// A Reader pulls raw bytes from the source in chunks of at most the
// configured capacity, decodes them with a strict decoder for the bound
// encoding, and exposes the UTF-8 result through Peek/Discard (and the
// derived Read and ReadToEnd). Multi-byte characters split across source
// reads decode correctly; malformed input fails with a positioned error
// instead of being papered over with replacement characters.
//
// All errors are terminal: once any operation has returned a non-nil error,
// every later operation returns the same error. A Reader is not safe for
// concurrent use.
type Reader struct {
	src     io.Reader
	dec     encodingbuf.Decoder
	name    string
	in      []byte // raw undecoded bytes; cap is the configured capacity
	out     []byte // most recently decoded UTF-8 chunk
	pos     int    // read cursor into out
	err     error  // sticky terminal error
	srcErr  error  // source error held back until its bytes are decoded
	eof     bool   // source has returned io.EOF
	empties int    // consecutive (0, nil) source reads
}

// New creates a transcoding Reader for the given source and WHATWG encoding
// label, with the default input buffer capacity.
func New(src io.Reader, label string) (*Reader, error) {
	return NewWithCapacity(src, label, DefaultBufSize)
}

// NewWithCapacity is New with an explicit input buffer capacity. A
// non-positive capacity selects the default. No bytes are read from the
// source until the first Peek or Read.
func NewWithCapacity(src io.Reader, label string, capacity int) (*Reader, error) {
	dec, name, err := charset.Resolve(label)
	if err != nil {
		return nil, err
	}
	if capacity < 1 {
		capacity = DefaultBufSize
	}
	return &Reader{
		src:  src,
		dec:  dec,
		name: name,
		in:   make([]byte, 0, capacity),
	}, nil
}

// NewDetected creates a transcoding Reader whose encoding is chosen by
// statistical detection. It performs exactly one read from the source
// (at most capacity bytes) and sniffs the prefix; the sniffed bytes are
// retained and decoded as the start of the stream, never discarded.
func NewDetected(src io.Reader, capacity int) (*Reader, error) {
	if capacity < 1 {
		capacity = DefaultBufSize
	}
	buf := make([]byte, capacity)
	n, rerr := src.Read(buf)
	if rerr != nil && rerr != io.EOF {
		return nil, rerr
	}
	label, confidence, err := charset.Detect(buf[:n])
	if err != nil {
		return nil, err
	}
	dec, name, err := charset.Resolve(label)
	if err != nil {
		return nil, err
	}
	Logger().Debug("detected input encoding",
		zap.String("encoding", name),
		zap.Int("confidence", confidence),
		zap.Int("sniffed", n))
	return &Reader{
		src:  src,
		dec:  dec,
		name: name,
		in:   buf[:n],
		eof:  rerr == io.EOF,
	}, nil
}

// Encoding returns the canonical name of the encoding the Reader decodes.
func (r *Reader) Encoding() string {
	return r.name
}

// Buffered returns the number of decoded bytes available without another
// source read.
func (r *Reader) Buffered() int {
	return len(r.out) - r.pos
}

// fillInput pulls fresh bytes from the source into the input buffer. It is
// a no-op unless the buffer is completely empty, which keeps one decode
// step paired with exactly one underlying read.
func (r *Reader) fillInput() (int, error) {
	if len(r.in) > 0 || r.eof {
		return 0, nil
	}
	if r.srcErr != nil {
		err := r.srcErr
		r.srcErr = nil
		return 0, err
	}
	buf := r.in[:cap(r.in)]
	n, err := r.src.Read(buf)
	r.in = buf[:n]
	if err == io.EOF {
		r.eof = true
		return n, nil
	}
	if err != nil && n > 0 {
		// Bytes delivered alongside the failure are decoded first; the
		// error surfaces on the next fill, per the io.Reader contract.
		r.srcErr = err
		return n, nil
	}
	// Source failures propagate verbatim so callers can still match io
	// sentinel errors.
	return n, err
}

// Peek returns the decoded bytes that have not been consumed yet, refilling
// from the source when the current chunk is drained. An empty slice with a
// nil error means end of stream; repeated calls at end of stream stay empty
// without error. The slice is only valid until the next refilling call.
func (r *Reader) Peek() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	for r.pos >= len(r.out) {
		n, err := r.fillInput()
		if err != nil {
			r.err = err
			return nil, r.err
		}
		if n == 0 && len(r.in) == 0 && !r.eof {
			r.empties++
			if r.empties >= maxConsecutiveEmptyReads {
				r.err = errors.NoProgress(r.empties)
				return nil, r.err
			}
			continue
		}
		if n > 0 {
			r.empties = 0
		}
		raw := len(r.in)
		_, text, derr := r.dec.Decode(r.in, r.eof)
		if derr != nil {
			r.err = errors.Malformed(r.name, derr)
			return nil, r.err
		}
		r.in = r.in[:0]
		r.out = text
		r.pos = 0
		Logger().Debug("refilled output chunk",
			zap.Int("raw", raw),
			zap.Int("decoded", len(text)),
			zap.Bool("eof", r.eof))
		if r.eof && raw == 0 {
			// Source exhausted and nothing left to decode: stable end of
			// stream.
			break
		}
	}
	return r.out[r.pos:], nil
}

// Discard consumes n decoded bytes. It saturates at the chunk boundary:
// discarding more than Buffered is not an error.
func (r *Reader) Discard(n int) {
	if n < 0 {
		n = 0
	}
	r.pos = min(r.pos+n, len(r.out))
}

// Read implements io.Reader, copying decoded UTF-8 bytes into p.
func (r *Reader) Read(p []byte) (int, error) {
	chunk, err := r.Peek()
	if err != nil {
		return 0, err
	}
	if len(chunk) == 0 {
		return 0, io.EOF
	}
	n := copy(p, chunk)
	r.Discard(n)
	return n, nil
}

// ReadToEnd drains the stream and returns all remaining decoded UTF-8
// bytes. On error it returns the bytes decoded so far along with the error.
func (r *Reader) ReadToEnd() ([]byte, error) {
	var out []byte
	for {
		chunk, err := r.Peek()
		if err != nil {
			return out, err
		}
		if len(chunk) == 0 {
			return out, nil
		}
		out = append(out, chunk...)
		r.Discard(len(chunk))
	}
}

// Reset discards all state, including any sticky error, and starts decoding
// a new stream from src with the same encoding and buffer.
func (r *Reader) Reset(src io.Reader) {
	r.src = src
	r.dec.Reset()
	r.in = r.in[:0]
	r.out = nil
	r.pos = 0
	r.err = nil
	r.srcErr = nil
	r.eof = false
	r.empties = 0
}

// String renders the reader state as remaining/total of the current decoded
// chunk, for debug logging.
func (r *Reader) String() string {
	return fmt.Sprintf("recoder.Reader(%s %d/%d)", r.name, len(r.out)-r.pos, len(r.out))
}
