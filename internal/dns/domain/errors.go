package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure families. Typed errors below unwrap
// to them so callers can branch with errors.Is and inspect with errors.As.
var (
	// ErrParse marks malformed zone text. Fatal to that load only.
	ErrParse = errors.New("zone parse error")
	// ErrValidation marks zone data that parsed but breaks a zone invariant.
	ErrValidation = errors.New("zone validation error")
	// ErrResolverFault marks a broken internal invariant found while answering.
	ErrResolverFault = errors.New("resolver fault")
	// ErrMissingSOA is wrapped by the ParseError returned for zones without an SOA.
	ErrMissingSOA = errors.New("zone has no SOA record")
)

// ParseError reports malformed zone text.
type ParseError struct {
	// Source names the file or input the text came from, if known.
	Source string
	// Line is the 1-based line of the failure, or 0 when not line specific.
	Line   int
	Reason string
	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Source != "" {
		msg += " in " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrParse}
	}
	return []error{ErrParse, e.Err}
}

// ValidationError reports zone data that breaks a zone invariant.
type ValidationError struct {
	Zone   string
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid zone %q: %s: %s", e.Zone, e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid zone %q: %s", e.Zone, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ResolverFault reports an internal invariant violation discovered while
// answering a query. It is surfaced to the client as SERVFAIL.
type ResolverFault struct {
	Zone   string
	Name   string
	Reason string
}

func (e *ResolverFault) Error() string {
	return fmt.Sprintf("resolver fault in zone %q answering %q: %s", e.Zone, e.Name, e.Reason)
}

func (e *ResolverFault) Unwrap() error { return ErrResolverFault }
