package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// MaxOccurrencesCount is the ceiling applied to rules without an explicit count:
// two years of a daily event, the same limit Google Calendar applies.
const MaxOccurrencesCount = 730

// Options control a single normalization call.
type Options struct {
	// Dtstart, when present, becomes the DTSTART line of the rule set.
	Dtstart mo.Option[time.Time]
	// TZID selects the target zone. Absent means UTC.
	TZID mo.Option[string]
	// Count > 0 forces the generated instance count. 0 applies the default ceiling.
	Count int
}

// Event is the part of a calendar event the normalizer reads.
type Event struct {
	StartAt         time.Time
	AllDay          bool
	RecurrenceRules []string
}

// EventOptions control TryNormalizeEvent.
type EventOptions struct {
	// UseStartDate anchors the rules at the event start.
	UseStartDate bool
	Count        int
}

// TimeOccurrence represents a single projected occurrence of an event.
type TimeOccurrence struct {
	Start   time.Time // Start in the event's zone
	End     time.Time
	Instant time.Time // Zone-naive instant produced by the engine
}
