package recurrence

import (
	"errors"
	"time"

	"github.com/cyp0633/librecur/datetime"
)

// Literal layouts used inside DTSTART/RDATE/EXDATE values. The trailing Z of the UTC
// layout is matched literally, so its wall clock is read in whatever zone is supplied.
const (
	LayoutLocal = "20060102T150405"
	LayoutUTC   = "20060102T150405Z"
)

var literalLayouts = []string{LayoutLocal, LayoutUTC}

// ReformatInZone reads literal as a wall-clock time in sourceZone and writes the same
// instant as a local literal in targetZone.
func ReformatInZone(literal, sourceZone, targetZone string) (string, error) {
	var lastErr error
	for _, layout := range literalLayouts {
		t, err := datetime.FromFormat(literal, layout, datetime.Options{Zone: sourceZone})
		if err != nil {
			lastErr = err
			var dtErr *datetime.InvalidDateTimeError
			if errors.As(err, &dtErr) && dtErr.Reason == datetime.ReasonUnsupportedZone {
				break
			}
			continue
		}

		moved, err := datetime.SetZone(t, targetZone, datetime.ZoneOptions{})
		if err != nil {
			return "", err
		}
		return moved.Format(LayoutLocal), nil
	}

	return "", &RuleError{Op: "reformat", Input: literal, Kind: ErrUnparsableDateLiteral, Err: lastErr}
}

// FormatInZone writes t as a local literal in loc.
func FormatInZone(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(LayoutLocal)
}
