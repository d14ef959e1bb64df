package ipmatch

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAddress is wrapped by every *ParseError.
	ErrMalformedAddress = errors.New("malformed IP address")

	// ErrMalformedRange is wrapped by a *RangeError for a token that matches
	// no supported range notation.
	ErrMalformedRange = errors.New("malformed IP range")

	// ErrEmptyInput is reported when a candidate address or a range list is
	// empty. Membership checks treat it as "not contained".
	ErrEmptyInput = errors.New("empty input")
)

// ParseError reports an address that matches neither the IPv4 nor the IPv6
// grammar.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse address %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RangeError reports a range token that matches no supported notation.
type RangeError struct {
	Input string
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("parse range %q: %v", e.Input, e.Err)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

func malformedRange(input, format string, args ...any) error {
	if format == "" {
		return &RangeError{Input: input, Err: ErrMalformedRange}
	}
	return &RangeError{
		Input: input,
		Err:   fmt.Errorf("%w: %s", ErrMalformedRange, fmt.Sprintf(format, args...)),
	}
}
