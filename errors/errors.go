package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // encoding-label resolution
	PhaseDetect  Phase = "detect"  // charset detection
	PhaseDecode  Phase = "decode"  // byte-to-UTF-8 decoding
	PhaseRead    Phase = "read"    // buffered read protocol
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownEncoding Kind = "unknown_encoding"
	KindDetectionFailed Kind = "detection_failed"
	KindMalformedInput  Kind = "malformed_input"
	KindNoProgress      Kind = "no_progress"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Label  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Label != "" {
		b.WriteString(" for ")
		b.WriteString(fmt.Sprintf("%q", e.Label))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Label sets the encoding label the error relates to
func (b *Builder) Label(label string) *Builder {
	b.err.Label = label
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnknownEncoding creates a configuration error naming the unresolvable label
func UnknownEncoding(label string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnknownEncoding,
		Label:  label,
		Detail: "unrecognized input encoding name",
	}
}

// DetectionFailed creates an error for a prefix no detector could classify
func DetectionFailed(cause error) *Error {
	return &Error{
		Phase:  PhaseDetect,
		Kind:   KindDetectionFailed,
		Detail: "failed input encoding detection",
		Cause:  cause,
	}
}

// Malformed wraps a malformed-input failure from a decoder, preserving the
// decoder's error (with offending bytes and offset) as the cause
func Malformed(label string, cause error) *Error {
	return &Error{
		Phase: PhaseDecode,
		Kind:  KindMalformedInput,
		Label: label,
		Cause: cause,
	}
}

// NoProgress creates an error for a source that keeps returning zero bytes
// without signaling end of stream
func NoProgress(reads int) *Error {
	return &Error{
		Phase:  PhaseRead,
		Kind:   KindNoProgress,
		Detail: fmt.Sprintf("source returned no data in %d consecutive reads", reads),
	}
}
