package generation

import "fmt"

// ErrorKind classifies generation failures so callers can pick a recovery
// policy per kind: skip the unit during full-schedule generation, surface
// during completion analysis.
type ErrorKind string

const (
	// ErrMalformed means the upstream call succeeded but the response was
	// not valid JSON of the expected shape.
	ErrMalformed ErrorKind = "malformed"
	// ErrUpstream means the external call itself failed or timed out.
	ErrUpstream ErrorKind = "upstream"
)

// Error is the typed failure of a generation call.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func malformed(err error) *Error {
	return &Error{Kind: ErrMalformed, Err: err}
}

func upstream(err error) *Error {
	return &Error{Kind: ErrUpstream, Err: err}
}
