package agon

import "fmt"

// Kinds for the error taxonomy in spec §6/§7. Use
// errors.Is(err, Sentinel(kind)) to classify an *Error without string
// matching.
type ErrorKind string

// Taxonomy entries.
const (
	// ErrInvalidPayload: unknown header, or unparsable JSON/AGON syntax.
	ErrInvalidPayload ErrorKind = "invalid_payload"
	// ErrSchemaMismatch: cid/version mismatch in trained strict mode.
	ErrSchemaMismatch ErrorKind = "schema_mismatch"
	// ErrDriftDetected: unexpected shape encountered during trained unpack.
	ErrDriftDetected ErrorKind = "drift_detected"
	// ErrBadReference: invalid dictionary pointer in a trained packet.
	ErrBadReference ErrorKind = "bad_reference"
	// ErrEncodingUnavailable: tokenizer cannot load the requested encoding.
	ErrEncodingUnavailable ErrorKind = "encoding_unavailable"
)

// Error is the single error type returned across the AGON public API.
// Every taxonomy entry in spec §6 is one ErrorKind value rather than a
// distinct Go type, so callers classify with
// errors.Is(err, agon.Sentinel(agon.ErrX)), mirroring how original_source/agon/errors
// layers AGONColumnsError/AGONTextError beneath a single AGONError base.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("agon: %s: %s", e.Kind, e.Msg) }

// Is supports errors.Is(err, Sentinel(kind)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// Sentinel returns a bare *Error usable only as an errors.Is comparison
// target (its Msg is always empty).
func Sentinel(kind ErrorKind) *Error { return &Error{Kind: kind} }

// newErr builds a populated *Error for kind with a formatted message.
func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
