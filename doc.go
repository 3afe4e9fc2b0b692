// Package encodingbuf turns byte streams in legacy or wide-character text
// encodings into guaranteed-valid UTF-8.
//
// The library is organized into a small set of packages with distinct
// responsibilities:
//
//	encodingbuf/         Root package with the Decoder capability and error types
//	├── charset/         Encoding-label resolution, strict decoders, detection
//	├── recoder/         Buffered transcoding reader (peek/discard protocol)
//	├── errors/          Structured error types for diagnostics
//	└── cmd/transcode/   CLI and interactive preview tool
//
// # Quick Start
//
// Wrap any io.Reader whose bytes are in a known encoding:
//
//	r, err := recoder.New(f, "windows-1252")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	utf8Bytes, err := r.ReadToEnd()
//
// Or let the statistical detector pick the encoding from a sniffed prefix:
//
//	r, err := recoder.NewDetected(f, 4096)
//
// Everything read from the returned reader is valid UTF-8, so it can be
// handed to UTF-8-only consumers (parsers, string builders) that know
// nothing about the original encoding.
//
// # Strictness
//
// Decoding never substitutes U+FFFD for invalid input. A byte sequence that
// is not valid in the declared encoding fails with a MalformedError carrying
// the offending bytes and their stream offset, and the stream is unusable
// past that point. Callers that want repair or replacement semantics need a
// different tool.
//
// # Byte-order marks
//
// A leading BOM is decoded like any other character: it surfaces in the
// output as the UTF-8 encoding of U+FEFF. Stripping it is the caller's
// decision, not the library's.
//
// # Thread Safety
//
// Reader and Decoder instances maintain internal state and are NOT safe for
// concurrent use. Use one instance per goroutine.
package encodingbuf
