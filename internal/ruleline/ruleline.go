// Package ruleline splits recurrence content lines such as
// "RDATE;TZID=Europe/Berlin:20240530T200000,20240531T200000" into name, parameters and value.
package ruleline

import (
	"errors"
	"fmt"
	"strings"
)

// Property names handled by the recurrence layer.
const (
	NameDTStart = "DTSTART"
	NameRRule   = "RRULE"
	NameRDate   = "RDATE"
	NameExDate  = "EXDATE"
)

// Parameter names.
const (
	ParamTZID  = "TZID"
	ParamValue = "VALUE"
)

// ErrMissingValue is returned by Parse when a line has no unquoted ':'.
var ErrMissingValue = errors.New("content line has no value separator")

// Param is a single NAME=VALUE parameter. Order is preserved when formatting.
type Param struct {
	Name  string
	Value string
}

// Line is one lexed content line.
type Line struct {
	Name   string
	Params []Param
	Value  string
}

// Parse lexes a content line. Parameter values may be quoted, in which case
// ';' and ':' inside the quotes are literal.
func Parse(s string) (Line, error) {
	sep := -1
	inQuotes := false
	for i, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ':' && !inQuotes:
			sep = i
		}
		if sep >= 0 {
			break
		}
	}
	if sep < 0 {
		return Line{}, fmt.Errorf("%w: %q", ErrMissingValue, s)
	}

	head, value := s[:sep], s[sep+1:]
	parts := splitUnquoted(head, ';')

	line := Line{Name: strings.ToUpper(strings.TrimSpace(parts[0])), Value: value}
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		name, val, _ := strings.Cut(p, "=")
		line.Params = append(line.Params, Param{Name: strings.ToUpper(name), Value: strings.Trim(val, `"`)})
	}
	return line, nil
}

// Param returns the first value of the named parameter.
func (l Line) Param(name string) (string, bool) {
	for _, p := range l.Params {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// WithoutParam returns a copy of l without any parameter of the given name.
func (l Line) WithoutParam(name string) Line {
	out := Line{Name: l.Name, Value: l.Value}
	for _, p := range l.Params {
		if !strings.EqualFold(p.Name, name) {
			out.Params = append(out.Params, p)
		}
	}
	return out
}

// WithParam returns a copy of l with the named parameter set, replacing an existing one in place.
func (l Line) WithParam(name, value string) Line {
	out := Line{Name: l.Name, Value: l.Value, Params: make([]Param, 0, len(l.Params)+1)}
	replaced := false
	for _, p := range l.Params {
		if strings.EqualFold(p.Name, name) {
			if !replaced {
				out.Params = append(out.Params, Param{Name: p.Name, Value: value})
				replaced = true
			}
			continue
		}
		out.Params = append(out.Params, p)
	}
	if !replaced {
		out.Params = append(out.Params, Param{Name: name, Value: value})
	}
	return out
}

// Values splits a list value such as RDATE/EXDATE on commas.
func (l Line) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, ",")
}

// Key renders the name and parameters, i.e. everything before the value separator.
func (l Line) Key() string {
	var b strings.Builder
	b.WriteString(l.Name)
	for _, p := range l.Params {
		b.WriteByte(';')
		b.WriteString(p.Name)
		b.WriteByte('=')
		if strings.ContainsAny(p.Value, ";:,") {
			b.WriteString(`"` + p.Value + `"`)
		} else {
			b.WriteString(p.Value)
		}
	}
	return b.String()
}

func (l Line) String() string {
	return l.Key() + ":" + l.Value
}

// HasName reports whether the raw line starts with the given property name.
func HasName(s, name string) bool {
	return len(s) >= len(name) && strings.EqualFold(s[:len(name)], name)
}

// Unfold joins folded continuation lines (CRLF or LF followed by a space or tab),
// trims carriage returns and drops blank lines.
func Unfold(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n ", "")
	text = strings.ReplaceAll(text, "\n\t", "")

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func splitUnquoted(s string, sep rune) []string {
	var parts []string
	inQuotes := false
	start := 0
	for i, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
