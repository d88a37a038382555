package recurrence

import (
	"regexp"
	"strings"
)

// evolutionEndDateRegex matches the Evolution-specific UNTIL companion parameter,
// which the expansion engine rejects.
var evolutionEndDateRegex = regexp.MustCompile(`;X-EVOLUTION-ENDDATE=\d{8}T\d{6}Z`)

// Sanitize joins the rule lines and strips parameters the engine does not understand.
func Sanitize(rules []string) string {
	return evolutionEndDateRegex.ReplaceAllString(strings.Join(rules, "\n"), "")
}
