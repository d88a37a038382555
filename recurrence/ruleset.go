package recurrence

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"
)

// RuleSet is the canonical, single-zone rule set produced by one normalization call.
// It is not modified after Normalize returns.
type RuleSet struct {
	set    *rrule.Set
	source []string
	loc    *time.Location
}

// Set exposes the compiled engine value. Callers must not modify it.
func (rs *RuleSet) Set() *rrule.Set {
	return rs.set
}

// Location is the target zone every line was reconciled to.
func (rs *RuleSet) Location() *time.Location {
	return rs.loc
}

// Source returns the canonical lines that were handed to the engine.
func (rs *RuleSet) Source() []string {
	return slices.Clone(rs.source)
}

// Rule returns the compiled options of the set's RRULE after capping.
func (rs *RuleSet) Rule() mo.Option[rrule.ROption] {
	r := rs.set.GetRRule()
	if r == nil {
		return mo.None[rrule.ROption]()
	}
	return mo.Some(r.OrigOptions)
}

// DTStart is the anchor of the set, zero when no DTSTART was given.
func (rs *RuleSet) DTStart() time.Time {
	return rs.set.GetDTStart()
}

// RDates lists the extra occurrences, already in the target zone.
func (rs *RuleSet) RDates() []time.Time {
	return rs.set.GetRDate()
}

// ExDates lists the excluded occurrences, already in the target zone.
func (rs *RuleSet) ExDates() []time.Time {
	return rs.set.GetExDate()
}

// Lines serializes the compiled set, one directive per line.
func (rs *RuleSet) Lines() []string {
	return rs.set.Recurrence()
}

// AllDayLines serializes the set and applies FormatAllDay.
func (rs *RuleSet) AllDayLines(allDay bool) []string {
	return FormatAllDay(rs.Lines(), allDay)
}

// String joins Lines with newlines.
func (rs *RuleSet) String() string {
	return strings.Join(rs.Lines(), "\n")
}
