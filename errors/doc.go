// Package errors provides structured error types for the encodingbuf library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the encoding label involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindUnknownEncoding).
//		Label("utf-99").
//		Detail("no such encoding").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownEncoding("utf-99")
//	err := errors.Malformed("utf-16le", cause)
//
// Source I/O failures are deliberately NOT wrapped in these types: the
// recoder package propagates them verbatim so callers can keep matching
// against io sentinel errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
