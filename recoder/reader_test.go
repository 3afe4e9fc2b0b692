package recoder

import (
	"bytes"
	stderrors "errors"
	"io"
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/compenguy/encodingbuf"
	liberrors "github.com/compenguy/encodingbuf/errors"
)

// chunkedSource returns at most chunk bytes per Read, forcing character
// splits at arbitrary boundaries.
type chunkedSource struct {
	data  []byte
	chunk int
}

func (s *chunkedSource) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := min(s.chunk, len(s.data), len(p))
	copy(p, s.data[:n])
	s.data = s.data[n:]
	return n, nil
}

// countingSource counts Read calls.
type countingSource struct {
	inner io.Reader
	reads int
}

func (s *countingSource) Read(p []byte) (int, error) {
	s.reads++
	return s.inner.Read(p)
}

// failingSource returns its error after serving a prefix.
type failingSource struct {
	data []byte
	err  error
}

func (s *failingSource) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, s.err
	}
	n := copy(p, s.data)
	s.data = s.data[n:]
	return n, nil
}

// abruptSource returns its data and its error from the same Read call.
type abruptSource struct {
	data []byte
	err  error
	done bool
}

func (s *abruptSource) Read(p []byte) (int, error) {
	if s.done {
		return 0, s.err
	}
	s.done = true
	return copy(p, s.data), s.err
}

// stuckSource returns (0, nil) forever.
type stuckSource struct{}

func (stuckSource) Read(p []byte) (int, error) { return 0, nil }

func encode(t *testing.T, enc encoding.Encoding, s string) []byte {
	t.Helper()
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatalf("encoding test input failed: %v", err)
	}
	return b
}

func readToEnd(t *testing.T, r *Reader) string {
	t.Helper()
	out, err := r.ReadToEnd()
	if err != nil {
		t.Fatalf("ReadToEnd failed: %v", err)
	}
	return string(out)
}

const unicodeDoc = "<note>\n<to>Tove</to>\n<body>Don't forget me – 世界 😀!</body>\n</note>"
const latinDoc = "café au lait — non, très déçu"

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		label string
		data  []byte
		want  string
	}{
		{"utf-8", "utf-8", []byte(unicodeDoc), unicodeDoc},
		{"utf-8 bom", "utf-8", append([]byte("\xef\xbb\xbf"), unicodeDoc...), "\uFEFF" + unicodeDoc},
		{"utf-16le", "utf-16le", nil, unicodeDoc},
		{"utf-16le bom", "utf-16le", nil, "\uFEFF" + unicodeDoc},
		{"utf-16be", "utf-16be", nil, unicodeDoc},
		{"utf-16be bom", "utf-16be", nil, "\uFEFF" + unicodeDoc},
		{"windows-1252", "windows-1252", encode(t, charmap.Windows1252, latinDoc), latinDoc},
	}
	tests[2].data = encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), unicodeDoc)
	tests[3].data = append([]byte{0xff, 0xfe}, tests[2].data...)
	tests[4].data = encode(t, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), unicodeDoc)
	tests[5].data = append([]byte{0xfe, 0xff}, tests[4].data...)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(bytes.NewReader(tt.data), tt.label)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if got := readToEnd(t, r); got != tt.want {
				t.Errorf("decoded %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkSizeIndependence(t *testing.T) {
	data := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), unicodeDoc)

	decode := func(t *testing.T, src io.Reader, capacity int) string {
		r, err := NewWithCapacity(src, "utf-16le", capacity)
		if err != nil {
			t.Fatalf("NewWithCapacity failed: %v", err)
		}
		return readToEnd(t, r)
	}

	want := decode(t, bytes.NewReader(data), 4096)
	if want != unicodeDoc {
		t.Fatalf("reference decode = %q, want %q", want, unicodeDoc)
	}

	t.Run("capacity 1", func(t *testing.T) {
		if got := decode(t, bytes.NewReader(data), 1); got != want {
			t.Errorf("capacity-1 decode diverged: %q", got)
		}
	})
	t.Run("capacity 7", func(t *testing.T) {
		if got := decode(t, bytes.NewReader(data), 7); got != want {
			t.Errorf("capacity-7 decode diverged: %q", got)
		}
	})
	t.Run("1-byte source reads", func(t *testing.T) {
		if got := decode(t, &chunkedSource{data: data, chunk: 1}, 4096); got != want {
			t.Errorf("1-byte-read decode diverged: %q", got)
		}
	})
}

func TestSplitCharacterAcrossReads(t *testing.T) {
	t.Run("utf-8 3-byte rune split 1+2", func(t *testing.T) {
		// 世 = E4 B8 96: first read delivers 1 byte, the next the rest.
		src := &chunkedSource{data: []byte("世界"), chunk: 1}
		r, err := New(src, "utf-8")
		if err != nil {
			t.Fatal(err)
		}
		if got := readToEnd(t, r); got != "世界" {
			t.Errorf("decoded %q, want %q", got, "世界")
		}
	})
	t.Run("utf-16 surrogate pair split", func(t *testing.T) {
		data := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), "a😀b")
		src := &chunkedSource{data: data, chunk: 3}
		r, err := New(src, "utf-16le")
		if err != nil {
			t.Fatal(err)
		}
		if got := readToEnd(t, r); got != "a😀b" {
			t.Errorf("decoded %q, want %q", got, "a😀b")
		}
	})
}

func TestEndOfStreamIdempotent(t *testing.T) {
	r, err := New(bytes.NewReader([]byte("done")), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if got := readToEnd(t, r); got != "done" {
		t.Fatalf("decoded %q", got)
	}
	for i := 0; i < 3; i++ {
		chunk, err := r.Peek()
		if err != nil {
			t.Fatalf("Peek %d after EOF failed: %v", i, err)
		}
		if len(chunk) != 0 {
			t.Fatalf("Peek %d after EOF returned %d bytes", i, len(chunk))
		}
		var p [8]byte
		n, err := r.Read(p[:])
		if n != 0 || err != io.EOF {
			t.Fatalf("Read %d after EOF = (%d, %v), want (0, io.EOF)", i, n, err)
		}
	}
}

func TestMalformedInput(t *testing.T) {
	r, err := New(bytes.NewReader([]byte{'a', 0xc3, 0x28, 'b'}), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	_, rerr := r.ReadToEnd()
	if rerr == nil {
		t.Fatal("expected a malformed-input error")
	}
	if !stderrors.Is(rerr, &liberrors.Error{Phase: liberrors.PhaseDecode, Kind: liberrors.KindMalformedInput}) {
		t.Errorf("error = %v, want decode/malformed_input", rerr)
	}
	var mal *encodingbuf.MalformedError
	if !stderrors.As(rerr, &mal) {
		t.Fatalf("error %v does not carry a MalformedError", rerr)
	}
	if mal.Offset != 1 {
		t.Errorf("offset = %d, want 1", mal.Offset)
	}
	if len(mal.Bytes) == 0 || mal.Bytes[0] != 0xc3 {
		t.Errorf("offending bytes % x, want to start with c3", mal.Bytes)
	}

	// The error is terminal and sticky.
	if _, again := r.Peek(); !stderrors.Is(again, rerr) {
		t.Errorf("second Peek error = %v, want the original %v", again, rerr)
	}
	if _, again := r.ReadToEnd(); again == nil {
		t.Error("ReadToEnd after a decode error should keep failing")
	}
}

func TestMalformedOffsetIsStreamAbsolute(t *testing.T) {
	// The bad byte sits past the first refill cycle.
	data := append(bytes.Repeat([]byte{'x'}, 10), 0xff)
	r, err := NewWithCapacity(bytes.NewReader(data), "utf-8", 4)
	if err != nil {
		t.Fatal(err)
	}
	out, rerr := r.ReadToEnd()
	if rerr == nil {
		t.Fatal("expected a malformed-input error")
	}
	if string(out) != "xxxxxxxx" {
		t.Errorf("partial output %q, want the two fully decoded chunks", out)
	}
	var mal *encodingbuf.MalformedError
	if !stderrors.As(rerr, &mal) {
		t.Fatalf("error %v does not carry a MalformedError", rerr)
	}
	if mal.Offset != 10 {
		t.Errorf("offset = %d, want 10", mal.Offset)
	}
}

func TestMalformedTruncatedAtEOF(t *testing.T) {
	// A split character whose tail never arrives.
	r, err := New(bytes.NewReader([]byte{'o', 'k', 0xe4, 0xb8}), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	out, rerr := r.ReadToEnd()
	if rerr == nil {
		t.Fatal("expected a malformed-input error")
	}
	if string(out) != "ok" {
		t.Errorf("partial output %q, want %q", out, "ok")
	}
	var mal *encodingbuf.MalformedError
	if !stderrors.As(rerr, &mal) {
		t.Fatalf("error %v does not carry a MalformedError", rerr)
	}
	if mal.Offset != 2 {
		t.Errorf("offset = %d, want 2", mal.Offset)
	}
}

func TestUnknownEncodingNoReads(t *testing.T) {
	src := &countingSource{inner: bytes.NewReader([]byte("data"))}
	_, err := New(src, "utf-99")
	if err == nil {
		t.Fatal("New with an unknown label should fail")
	}
	if !stderrors.Is(err, &liberrors.Error{Phase: liberrors.PhaseResolve, Kind: liberrors.KindUnknownEncoding}) {
		t.Errorf("error = %v, want resolve/unknown_encoding", err)
	}
	if src.reads != 0 {
		t.Errorf("construction performed %d reads, want 0", src.reads)
	}
}

func TestConstructionIsLazy(t *testing.T) {
	src := &countingSource{inner: bytes.NewReader([]byte("data"))}
	r, err := New(src, "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if src.reads != 0 {
		t.Fatalf("New performed %d reads, want 0", src.reads)
	}
	if _, err := r.Peek(); err != nil {
		t.Fatal(err)
	}
	if src.reads != 1 {
		t.Errorf("first Peek performed %d reads, want 1", src.reads)
	}
}

func TestSourceErrorPropagatedVerbatim(t *testing.T) {
	boom := stderrors.New("socket reset")
	r, err := New(&failingSource{data: []byte("par"), err: boom}, "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	out, rerr := r.ReadToEnd()
	if string(out) != "par" {
		t.Errorf("partial output %q, want %q", out, "par")
	}
	if rerr != boom {
		t.Errorf("error = %v, want the source error unwrapped", rerr)
	}
}

func TestSourceErrorAfterItsBytes(t *testing.T) {
	// Bytes returned together with a failure are decoded and delivered
	// before the error surfaces.
	boom := stderrors.New("connection dropped")
	r, err := New(&abruptSource{data: []byte("par"), err: boom}, "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	out, rerr := r.ReadToEnd()
	if string(out) != "par" {
		t.Errorf("partial output %q, want %q", out, "par")
	}
	if rerr != boom {
		t.Errorf("error = %v, want the source error unwrapped", rerr)
	}
}

func TestStuckSource(t *testing.T) {
	r, err := New(stuckSource{}, "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	_, rerr := r.Peek()
	if rerr == nil {
		t.Fatal("Peek on a stuck source should fail")
	}
	if !stderrors.Is(rerr, &liberrors.Error{Phase: liberrors.PhaseRead, Kind: liberrors.KindNoProgress}) {
		t.Errorf("error = %v, want read/no_progress", rerr)
	}
}

func TestDetected(t *testing.T) {
	t.Run("utf-8 with bom", func(t *testing.T) {
		data := append([]byte("\xef\xbb\xbf"), unicodeDoc...)
		r, err := NewDetected(bytes.NewReader(data), 0)
		if err != nil {
			t.Fatalf("NewDetected failed: %v", err)
		}
		if r.Encoding() != "utf-8" {
			t.Errorf("Encoding() = %q, want utf-8", r.Encoding())
		}
		// The sniffed prefix must not be lost.
		if got := readToEnd(t, r); got != "\uFEFF"+unicodeDoc {
			t.Errorf("decoded %q, want the full document", got)
		}
	})
	t.Run("utf-16le with bom", func(t *testing.T) {
		body := encode(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), unicodeDoc)
		data := append([]byte{0xff, 0xfe}, body...)
		r, err := NewDetected(bytes.NewReader(data), 0)
		if err != nil {
			t.Fatalf("NewDetected failed: %v", err)
		}
		if r.Encoding() != "utf-16le" {
			t.Errorf("Encoding() = %q, want utf-16le", r.Encoding())
		}
		if got := readToEnd(t, r); got != "\uFEFF"+unicodeDoc {
			t.Errorf("decoded %q, want the full document", got)
		}
	})
	t.Run("sniff shorter than capacity", func(t *testing.T) {
		// One short read is all detection gets.
		src := &chunkedSource{data: append([]byte("\xef\xbb\xbf"), "tiny"...), chunk: 5}
		r, err := NewDetected(src, 4096)
		if err != nil {
			t.Fatalf("NewDetected failed: %v", err)
		}
		if got := readToEnd(t, r); got != "\uFEFFtiny" {
			t.Errorf("decoded %q", got)
		}
	})
	t.Run("empty source", func(t *testing.T) {
		_, err := NewDetected(bytes.NewReader(nil), 0)
		if err == nil {
			t.Fatal("NewDetected on an empty source should fail")
		}
		if !stderrors.Is(err, &liberrors.Error{Phase: liberrors.PhaseDetect, Kind: liberrors.KindDetectionFailed}) {
			t.Errorf("error = %v, want detect/detection_failed", err)
		}
	})
	t.Run("source error", func(t *testing.T) {
		boom := stderrors.New("disk on fire")
		_, err := NewDetected(&failingSource{err: boom}, 0)
		if err != boom {
			t.Errorf("error = %v, want the source error unwrapped", err)
		}
	})
}

func TestPeekDiscard(t *testing.T) {
	r, err := New(bytes.NewReader([]byte("abcdef")), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	chunk, err := r.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if string(chunk) != "abcdef" {
		t.Fatalf("Peek = %q", chunk)
	}
	r.Discard(2)
	if r.Buffered() != 4 {
		t.Errorf("Buffered = %d, want 4", r.Buffered())
	}
	chunk, err = r.Peek()
	if err != nil {
		t.Fatal(err)
	}
	if string(chunk) != "cdef" {
		t.Errorf("Peek after Discard = %q, want %q", chunk, "cdef")
	}

	// Over- and under-discarding saturate instead of failing.
	r.Discard(1 << 20)
	if r.Buffered() != 0 {
		t.Errorf("Buffered after over-discard = %d, want 0", r.Buffered())
	}
	r.Discard(-5)
	if r.Buffered() != 0 {
		t.Errorf("Buffered after negative discard = %d, want 0", r.Buffered())
	}
}

func TestReadSmallDestination(t *testing.T) {
	data := encode(t, charmap.Windows1252, latinDoc)
	r, err := New(bytes.NewReader(data), "latin1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Encoding() != "windows-1252" {
		t.Errorf("Encoding() = %q, want windows-1252", r.Encoding())
	}
	var out []byte
	var p [3]byte
	for {
		n, err := r.Read(p[:])
		out = append(out, p[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if string(out) != latinDoc {
		t.Errorf("decoded %q, want %q", out, latinDoc)
	}
}

func TestReset(t *testing.T) {
	r, err := New(bytes.NewReader([]byte("first")), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if got := readToEnd(t, r); got != "first" {
		t.Fatalf("decoded %q", got)
	}

	r.Reset(bytes.NewReader([]byte("second")))
	if got := readToEnd(t, r); got != "second" {
		t.Errorf("decoded %q after Reset", got)
	}

	// Reset also clears a sticky decode error.
	r.Reset(bytes.NewReader([]byte{0xff}))
	if _, err := r.ReadToEnd(); err == nil {
		t.Fatal("expected a malformed-input error")
	}
	r.Reset(bytes.NewReader([]byte("clean")))
	if got := readToEnd(t, r); got != "clean" {
		t.Errorf("decoded %q after error Reset", got)
	}
}

func TestString(t *testing.T) {
	r, err := New(bytes.NewReader([]byte("abc")), "utf-8")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Peek(); err != nil {
		t.Fatal(err)
	}
	r.Discard(1)
	s := r.String()
	if !bytes.Contains([]byte(s), []byte("utf-8")) || !bytes.Contains([]byte(s), []byte("2/3")) {
		t.Errorf("String() = %q, want encoding name and remaining/total", s)
	}
}
