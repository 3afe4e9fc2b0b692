// Package charset resolves WHATWG encoding labels to strict decoders and
// detects the charset of unlabeled byte streams.
//
// # Resolution
//
// Resolve maps a label ("utf-16le", "latin1", "windows-1252", ...) to a
// decoder for that encoding, using the WHATWG label index. Labels are
// matched case-insensitively with surrounding ASCII whitespace ignored.
// Unknown labels fail with a resolve/unknown_encoding error naming the
// label.
//
// # Strictness
//
// Every decoder returned by Resolve decodes without replacement: input that
// is not valid in the encoding produces a *encodingbuf.MalformedError with
// the offending bytes and their stream offset, never a substituted U+FFFD.
// UTF-8, UTF-16 and the single-byte codepages have native strict decoders;
// the multibyte CJK encodings run their standard table decoder under a
// wrapper that converts replacement output into an error. A replacement
// rune decoded from the encoding's own U+FFFD byte sequence (gb18030 has
// one) is recognized as data and passes; every other replacement rune
// marks malformed input.
//
// A leading byte-order mark is not interpreted or stripped: it decodes to
// U+FEFF like any other character.
//
// # Detection
//
// Detect runs a statistical detector over a short prefix and returns the
// best-guess WHATWG label plus a confidence score. Detection is a heuristic;
// resolve the returned label and expect decoding to fail on a wrong guess.
//
// Decoders are stateful (they carry split multi-byte characters across
// calls) and are not safe for concurrent use.
package charset
