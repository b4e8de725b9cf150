// Package gerrors defines the error taxonomy used across the grammarinator
// compiler: InputError, ParseError, IllFormedGrammar, InternalAssertion, and
// OutputError. All of them are represented by the single Error type so that
// callers can use errors.Is against the Kind-specific sentinel values below
// regardless of which cause, if any, is wrapped.
package gerrors

import "fmt"

// Kind identifies which of the five error categories an Error belongs to.
type Kind int

const (
	// KindInput covers a grammar file that is missing, unreadable, wrongly
	// encoded, or an imported grammar that could not be located.
	KindInput Kind = iota

	// KindParse covers a syntax error surfaced while parsing .g4 source.
	KindParse

	// KindIllFormed covers an infinite or unreachable rule found by the
	// depth solver, or a rule with no alternatives.
	KindIllFormed

	// KindInternal covers an invariant violation: an edge to an unknown
	// vertex, an unexpected tree shape. It indicates a compiler bug.
	KindInternal

	// KindOutput covers failure to write the emitted file or create working
	// directories.
	KindOutput
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "InputError"
	case KindParse:
		return "ParseError"
	case KindIllFormed:
		return "IllFormedGrammar"
	case KindInternal:
		return "InternalAssertion"
	case KindOutput:
		return "OutputError"
	default:
		return "Error"
	}
}

// Error is a typed compiler error. It always carries a Kind and a
// human-readable message naming the offending rule or file; it may also wrap
// a lower-level cause.
type Error struct {
	Kind  Kind
	msg   string
	cause error
}

// Error returns the message for e, followed by the cause's message if one is
// set.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap returns the cause of e, or nil if none was set.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is returns whether target is an *Error with the same Kind as e. This makes
// errors.Is(err, gerrors.New(gerrors.KindIllFormed, "")) work as a kind test;
// in practice callers compare against the exported sentinel values below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New creates an Error of the given kind with the given message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, a ...interface{}) *Error {
	return New(kind, fmt.Sprintf(format, a...))
}

// Wrap creates an Error of the given kind with the given message, wrapping
// cause.
func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// Wrapf creates an Error of the given kind wrapping cause, with a formatted
// message.
func Wrapf(kind Kind, cause error, format string, a ...interface{}) *Error {
	return Wrap(kind, cause, fmt.Sprintf(format, a...))
}

// Sentinel values usable with errors.Is to test the Kind of an error without
// inspecting its message or cause.
var (
	ErrInput     = &Error{Kind: KindInput}
	ErrParse     = &Error{Kind: KindParse}
	ErrIllFormed = &Error{Kind: KindIllFormed}
	ErrInternal  = &Error{Kind: KindInternal}
	ErrOutput    = &Error{Kind: KindOutput}
)
