package datetime

import "errors"

// ErrInvalidDateTime is matched by every error returned from the constructors in this package.
var ErrInvalidDateTime = errors.New("invalid DateTime")

// Reasons reported by InvalidDateTimeError.
const (
	ReasonUnparsable      = "unparsable"
	ReasonUnsupportedZone = "unsupported zone"
	ReasonOutOfRange      = "unit out of range"
	ReasonInvalidInput    = "invalid input"
)

// InvalidDateTimeError reports a date-time construction that failed validation.
type InvalidDateTimeError struct {
	Reason      string
	Explanation string
	Err         error
}

func (e *InvalidDateTimeError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = "unknown"
	}
	if e.Explanation != "" {
		msg += ": " + e.Explanation
	}
	return ErrInvalidDateTime.Error() + ": " + msg
}

// Is makes errors.Is(err, ErrInvalidDateTime) succeed for any InvalidDateTimeError.
func (e *InvalidDateTimeError) Is(target error) bool {
	return target == ErrInvalidDateTime
}

func (e *InvalidDateTimeError) Unwrap() error {
	return e.Err
}

func invalid(reason, explanation string, err error) error {
	return &InvalidDateTimeError{Reason: reason, Explanation: explanation, Err: err}
}
