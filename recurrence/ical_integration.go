package recurrence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/librecur/internal/ruleline"
)

// recurrenceProps are the properties owned by the recurrence layer, in output order.
var recurrenceProps = []string{ical.PropRecurrenceRule, ical.PropRecurrenceDates, ical.PropExceptionDates}

// EventFromComponent extracts the start and recurrence lines of an iCal component
func EventFromComponent(comp *ical.Component) (Event, error) {
	var ev Event
	if comp == nil {
		return ev, fmt.Errorf("nil component")
	}

	if dtstart := comp.Props.Get(ical.PropDateTimeStart); dtstart != nil {
		start, err := dtstart.DateTime(nil)
		if err != nil {
			return ev, fmt.Errorf("failed to parse DTSTART: %w", err)
		}
		ev.StartAt = start
		ev.AllDay = dtstart.ValueType() == ical.ValueDate
	}

	for _, name := range recurrenceProps {
		for _, prop := range comp.Props.Values(name) {
			if prop.Value == "" {
				continue
			}
			ev.RecurrenceRules = append(ev.RecurrenceRules, propLine(prop).String())
		}
	}

	return ev, nil
}

// ApplyRecurrence replaces the RRULE, RDATE and EXDATE properties of comp with lines.
// Other directives in lines, such as DTSTART, are ignored.
func ApplyRecurrence(comp *ical.Component, lines []string) error {
	if comp == nil {
		return fmt.Errorf("nil component")
	}

	props := make([]*ical.Prop, 0, len(lines))
	for _, raw := range lines {
		line, err := ruleline.Parse(raw)
		if err != nil {
			return &RuleError{Op: "apply", Input: raw, Kind: ErrMalformedRuleSet, Err: err}
		}
		if !isRecurrenceProp(line.Name) {
			continue
		}

		prop := ical.NewProp(line.Name)
		prop.Value = line.Value
		for _, p := range line.Params {
			prop.Params.Set(p.Name, p.Value)
		}
		props = append(props, prop)
	}

	for _, name := range recurrenceProps {
		delete(comp.Props, name)
	}
	for _, prop := range props {
		comp.Props.Add(prop)
	}
	return nil
}

func propLine(prop ical.Prop) ruleline.Line {
	line := ruleline.Line{Name: strings.ToUpper(prop.Name), Value: prop.Value}

	names := make([]string, 0, len(prop.Params))
	for name := range prop.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		line.Params = append(line.Params, ruleline.Param{
			Name:  strings.ToUpper(name),
			Value: strings.Join(prop.Params[name], ","),
		})
	}
	return line
}

func isRecurrenceProp(name string) bool {
	for _, n := range recurrenceProps {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
