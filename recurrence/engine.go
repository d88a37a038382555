package recurrence

import (
	"errors"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/datetime"
	"github.com/cyp0633/librecur/internal/ruleline"
)

var errEmptyRuleSet = errors.New("no recurrence directives")

// Engine compiles rule text and expands compiled sets
type Engine struct {
	cache  *RecurrenceCache
	config EngineConfig
}

// NewEngine creates a new expansion engine with DefaultEngineConfig
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig)
}

// Close releases the expansion cache, if any
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// Compile parses newline-separated directives. Values without a TZID are read in loc.
// DTSTART must come first when present.
func (e *Engine) Compile(text string, loc *time.Location) (*rrule.Set, error) {
	lines := ruleline.Unfold(text)
	if len(lines) == 0 {
		return nil, errEmptyRuleSet
	}
	if loc == nil {
		loc = time.UTC
	}
	return rrule.StrSliceToRRuleSetInLoc(lines, loc)
}

// Between expands rs inside [after, before] and returns zone-naive instants: each
// occurrence's wall clock in the rule zone, expressed in UTC. The window bounds are
// read the same way. At most EngineConfig.MaxOccurrences instants are returned.
func (e *Engine) Between(rs *RuleSet, after, before time.Time) []time.Time {
	loc := rs.Location()

	var key string
	if e.cache != nil {
		key = cacheKey(rs.String(), loc.String(), after, before)
		if instants, ok := e.cache.Get(key); ok {
			return instants
		}
	}

	occurrences := rs.Set().Between(datetime.KeepLocal(after, loc), datetime.KeepLocal(before, loc), true)
	if len(occurrences) > e.config.MaxOccurrences {
		occurrences = occurrences[:e.config.MaxOccurrences]
	}

	instants := make([]time.Time, len(occurrences))
	for i, o := range occurrences {
		instants[i] = naive(o.In(loc))
	}

	if e.cache != nil {
		e.cache.Set(key, instants)
	}
	return instants
}

// HasOccurrenceInRange reports whether any occurrence of rs, lasting duration, overlaps
// [rangeStart, rangeEnd]. Bounds are absolute instants. Only the first candidate is
// generated, so wide ranges cost no more than narrow ones.
func (e *Engine) HasOccurrenceInRange(rs *RuleSet, duration time.Duration, rangeStart, rangeEnd time.Time) bool {
	if rangeEnd.Before(rangeStart) {
		return false
	}
	// start <= rangeEnd AND start+duration >= rangeStart
	next := rs.Set().After(rangeStart.Add(-duration), true)
	if next.IsZero() {
		return false
	}
	return !next.After(rangeEnd)
}

// OccurrencesBetween compiles raw rule text in UTC and expands it over an RFC 3339
// window. Rules without a count, or with one above the ceiling, are capped.
func (e *Engine) OccurrencesBetween(text, after, before string) ([]time.Time, error) {
	opts := datetime.Options{Zone: datetime.ZoneUTC}
	start, err := datetime.FromISO(after, opts)
	if err != nil {
		return nil, &RuleError{Op: "expand", Input: after, Kind: ErrMalformedRuleSet, Err: err}
	}
	end, err := datetime.FromISO(before, opts)
	if err != nil {
		return nil, &RuleError{Op: "expand", Input: before, Kind: ErrMalformedRuleSet, Err: err}
	}

	lines := ruleline.Unfold(Sanitize([]string{text}))
	for i, line := range lines {
		if isBareRule(line) {
			lines[i] = ruleline.NameRRule + ":" + line
		}
	}

	set, err := e.Compile(strings.Join(lines, "\n"), time.UTC)
	if err != nil {
		return nil, &RuleError{Op: "expand", Input: text, Kind: ErrMalformedRuleSet, Err: err}
	}

	if rule := set.GetRRule(); rule != nil {
		ropt := rule.OrigOptions
		if ropt.Count <= 0 || ropt.Count > e.config.MaxOccurrences {
			ropt.Count = e.config.MaxOccurrences
			capped, err := rrule.NewRRule(ropt)
			if err != nil {
				return nil, &RuleError{Op: "expand", Input: text, Kind: ErrMalformedRuleSet, Err: err}
			}
			set.RRule(capped)
		}
	}

	occurrences := set.Between(start, end, true)
	if len(occurrences) > e.config.MaxOccurrences {
		occurrences = occurrences[:e.config.MaxOccurrences]
	}
	return occurrences, nil
}

// Instances expands rs inside the naive window [after, before] and projects every
// instant into origin through p.
func (e *Engine) Instances(rs *RuleSet, p *Projector, origin *time.Location, duration time.Duration, after, before time.Time) []TimeOccurrence {
	instants := e.Between(rs, after, before)
	out := make([]TimeOccurrence, 0, len(instants))
	for _, instant := range instants {
		start := p.Project(instant, origin)
		out = append(out, TimeOccurrence{
			Start:   start,
			End:     start.Add(duration),
			Instant: instant,
		})
	}
	return out
}

// naive keeps the wall clock of t and drops its zone.
func naive(t time.Time) time.Time {
	return datetime.KeepLocal(t, time.UTC)
}
