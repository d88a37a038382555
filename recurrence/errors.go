package recurrence

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparsableDateLiteral is returned when a RDATE/EXDATE literal matches neither
	// the local nor the UTC date-time layout.
	ErrUnparsableDateLiteral = errors.New("unparsable date literal")
	// ErrMalformedRuleSet is returned when the expansion engine rejects the canonical rule text.
	ErrMalformedRuleSet = errors.New("malformed rule set")
)

// RuleError records which step failed, on what input, and why.
type RuleError struct {
	Op    string // "reconcile", "reformat", "compile", "limit", "expand"
	Input string
	Kind  error
	Err   error
}

func (e *RuleError) Error() string {
	msg := fmt.Sprintf("recurrence %s: %v", e.Op, e.Kind)
	if e.Input != "" {
		msg += fmt.Sprintf(" %q", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuleError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
