// Package recoder provides a buffered reader that transcodes from arbitrary
// text encodings into UTF-8.
//
// # Control flow
//
// The Reader is a pull-based, demand-driven pipeline with no background
// work: a Peek on a drained chunk pulls at most one buffer of raw bytes
// from the source, runs them through the bound strict decoder, and resets
// the read cursor to the start of the fresh UTF-8 chunk. Callers then
// consume some prefix with Discard. Read and ReadToEnd are derived from
// that peek/discard protocol.
//
// The input buffer never mixes bytes from two source reads: it is refilled
// only when completely empty, so each decode step corresponds to exactly
// one underlying read. Characters split across reads are completed by the
// decoder's own carry-over state, which lives for the whole stream and is
// never reset mid-stream.
//
// # Errors
//
// Source I/O errors propagate verbatim. Bytes the source returns together
// with a failure are decoded and delivered first; the error surfaces once
// they are drained. Malformed input fails with a
// decode/malformed_input error wrapping a *encodingbuf.MalformedError that
// pins the offending bytes to their stream offset. Every error is terminal;
// the Reader repeats it on all later calls rather than resynchronizing.
//
// # Concurrency
//
// A Reader is single-threaded and blocking: every operation either returns
// already-buffered data or blocks on the source's own read. No operation
// may be called concurrently on the same Reader.
package recoder
