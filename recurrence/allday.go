package recurrence

import (
	"regexp"
	"strings"

	"github.com/cyp0633/librecur/internal/ruleline"
)

const midnightUTC = "T000000Z"

var untilMidnightRegex = regexp.MustCompile(`(UNTIL=\d{8})T000000Z`)

// FormatAllDay rewrites serialized rule lines for an all-day event: RDATE and EXDATE
// become VALUE=DATE lists and UNTIL drops its midnight time. Lines of timed events are
// returned unchanged. The input slice is never modified and the result is stable
// under repeated application.
func FormatAllDay(lines []string, allDay bool) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	if !allDay {
		return out
	}

	for i, raw := range out {
		switch {
		case ruleline.HasName(raw, ruleline.NameExDate), ruleline.HasName(raw, ruleline.NameRDate):
			line, err := ruleline.Parse(raw)
			if err != nil {
				continue
			}
			params := make([]ruleline.Param, 0, len(line.Params)+1)
			params = append(params, ruleline.Param{Name: ruleline.ParamValue, Value: "DATE"})
			for _, p := range line.Params {
				if !strings.EqualFold(p.Name, ruleline.ParamValue) {
					params = append(params, p)
				}
			}
			line.Params = params
			line.Value = strings.ReplaceAll(line.Value, midnightUTC, "")
			out[i] = line.String()
		case ruleline.HasName(raw, ruleline.NameRRule):
			out[i] = untilMidnightRegex.ReplaceAllString(raw, "${1}")
		}
	}
	return out
}
