package encodingbuf

import "fmt"

// maxMalformedPreview bounds the number of offending bytes carried by a
// MalformedError.
const maxMalformedPreview = 32

// Decoder converts a byte stream in one source encoding into UTF-8.
//
// A Decoder is stateful: a multi-byte character split across two Decode
// calls is carried internally and completed on the next call. Because of
// that carry-over, a Decoder instance is bound to exactly one stream and
// must never be reset while the stream is still being fed.
type Decoder interface {
	// Decode converts src to UTF-8 and reports how many bytes of src were
	// consumed. On success with eof false, n == len(src); any trailing
	// partial character is retained internally and completed on the next
	// call. With eof true, a retained or trailing partial character is an
	// error. Decode may be called again after a final call; with empty
	// input it returns empty output.
	//
	// The returned slice is owned by the Decoder and is only valid until
	// the next call to Decode or Reset.
	//
	// Malformed input is reported as a *MalformedError. The Decoder never
	// substitutes replacement characters.
	Decode(src []byte, eof bool) (n int, text []byte, err error)

	// Reset discards all internal state, preparing the Decoder for a new
	// stream starting at offset zero.
	Reset()
}

// MalformedError reports a byte sequence that is not valid in the source
// encoding. It is terminal: the stream cannot be decoded past it.
type MalformedError struct {
	// Bytes holds the offending sequence, truncated to a short preview.
	Bytes []byte
	// Offset is the position of the first offending byte, counted from the
	// start of the input stream.
	Offset int64
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed input % x at byte %d", e.Bytes, e.Offset)
}

// NewMalformedError builds a MalformedError for the sequence starting at
// the given stream offset, truncating the preview if needed.
func NewMalformedError(bytes []byte, offset int64) *MalformedError {
	if len(bytes) > maxMalformedPreview {
		bytes = bytes[:maxMalformedPreview]
	}
	return &MalformedError{Bytes: append([]byte(nil), bytes...), Offset: offset}
}
