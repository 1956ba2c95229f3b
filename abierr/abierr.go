// Package abierr implements the error taxonomy of the ABI codec.
//
// It mirrors the shape of original_source/src/error.rs's SdkErrorKind
// enumeration in idiomatic Go: a single concrete error type carrying a
// Kind plus an optional wrapped cause, with one sentinel per Kind so
// callers can classify failures with errors.Is.
package abierr

import "fmt"

// Kind classifies an error per spec §7.
type Kind int

const (
	NotFound Kind = iota
	InvalidOperation
	InvalidData
	InvalidArg
	InternalError
	WrongHash
	SignatureError
	DataExhausted
	IoError
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidOperation:
		return "invalid_operation"
	case InvalidData:
		return "invalid_data"
	case InvalidArg:
		return "invalid_arg"
	case InternalError:
		return "internal_error"
	case WrongHash:
		return "wrong_hash"
	case SignatureError:
		return "signature_error"
	case DataExhausted:
		return "data_exhausted"
	case IoError:
		return "io_error"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every package in this
// module. It carries a Kind for errors.Is-style classification plus a
// message and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel for the same Kind, so
// callers can write errors.Is(err, abierr.DataExhausted) without
// reaching into the struct.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*kindSentinel)
	if !ok {
		return false
	}
	return e.Kind == sentinel.kind
}

type kindSentinel struct{ kind Kind }

func (s *kindSentinel) Error() string { return s.kind.String() }

// Sentinel values usable with errors.Is, one per Kind.
var (
	ErrNotFound         error = &kindSentinel{NotFound}
	ErrInvalidOperation error = &kindSentinel{InvalidOperation}
	ErrInvalidData      error = &kindSentinel{InvalidData}
	ErrInvalidArg       error = &kindSentinel{InvalidArg}
	ErrInternalError    error = &kindSentinel{InternalError}
	ErrWrongHash        error = &kindSentinel{WrongHash}
	ErrSignatureError   error = &kindSentinel{SignatureError}
	ErrDataExhausted    error = &kindSentinel{DataExhausted}
	ErrIoError          error = &kindSentinel{IoError}
)

// New builds an *Error with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error wrapping cause, following the teacher repo's
// fmt.Errorf("...: %w", err) convention but keeping Kind visible to
// errors.Is checks.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}
