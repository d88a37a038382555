package recurrence

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/teambition/rrule-go"

	"github.com/cyp0633/librecur/datetime"
	"github.com/cyp0633/librecur/internal/ruleline"
)

// Normalizer turns raw recurrence directives into a canonical RuleSet in one zone.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	engine         *Engine
	logger         *slog.Logger
	maxOccurrences int
}

var defaultNormalizer = NewNormalizer(DefaultConfig)

// NewNormalizer creates a Normalizer from config, filling unset fields with defaults.
func NewNormalizer(config Config) *Normalizer {
	if config.MaxOccurrences <= 0 {
		config.MaxOccurrences = MaxOccurrencesCount
	}
	if config.Engine == nil {
		config.Engine = NewEngine()
	}
	return &Normalizer{
		engine:         config.Engine,
		logger:         config.Logger,
		maxOccurrences: config.MaxOccurrences,
	}
}

// Normalize runs Normalizer.Normalize with DefaultConfig.
func Normalize(rules []string, opts Options) (*RuleSet, error) {
	return defaultNormalizer.Normalize(rules, opts)
}

// TryNormalize runs Normalizer.TryNormalize with DefaultConfig.
func TryNormalize(rules []string, opts Options) mo.Option[*RuleSet] {
	return defaultNormalizer.TryNormalize(rules, opts)
}

// Normalize reconciles every line to the target zone, compiles the result and bounds
// the compiled RRULE.
//
// An explicit opts.Count replaces whatever count was parsed. Without it the parsed
// count is kept when it is below the ceiling and the ceiling is used otherwise. When
// opts.TZID is given, UNTIL keeps its wall clock and moves to the target zone.
func (n *Normalizer) Normalize(rules []string, opts Options) (*RuleSet, error) {
	lines, loc, err := n.reconcile(rules, opts)
	if err != nil {
		return nil, err
	}

	// the engine holds a single RRULE per set and keeps the last one
	if count := countRRules(lines); count > 1 {
		n.log().Debug("dropping extra recurrence rules", "rules", count, "dropped", count-1)
	}

	text := Sanitize(lines)
	set, err := n.engine.Compile(text, loc)
	if err != nil {
		return nil, &RuleError{Op: "compile", Input: text, Kind: ErrMalformedRuleSet, Err: err}
	}

	limited, err := n.limit(set, opts, loc)
	if err != nil {
		return nil, err
	}

	return &RuleSet{set: limited, source: ruleline.Unfold(text), loc: loc}, nil
}

// TryNormalize is the best-effort form of Normalize: failures are logged with the
// offending rules and reported as None.
func (n *Normalizer) TryNormalize(rules []string, opts Options) mo.Option[*RuleSet] {
	rs, err := n.Normalize(rules, opts)
	if err != nil {
		n.log().Error("failed to parse recurrence rules", "rules", rules, "error", err)
		return mo.None[*RuleSet]()
	}
	return mo.Some(rs)
}

// TryNormalizeEvent normalizes the recurrence rules of ev. With UseStartDate, all-day
// events are anchored at midnight UTC of their date and timed events at StartAt in
// StartAt's zone.
func (n *Normalizer) TryNormalizeEvent(ev *Event, opts EventOptions) mo.Option[*RuleSet] {
	if ev == nil || len(ev.RecurrenceRules) == 0 {
		return mo.None[*RuleSet]()
	}

	parse := Options{Count: opts.Count}
	if opts.UseStartDate && !ev.StartAt.IsZero() {
		if ev.AllDay {
			y, m, d := ev.StartAt.Date()
			parse.Dtstart = mo.Some(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
		} else {
			parse.Dtstart = mo.Some(ev.StartAt)
			if name := zoneName(ev.StartAt.Location()); name != "" {
				parse.TZID = mo.Some(name)
			}
		}
	}

	return n.TryNormalize(ev.RecurrenceRules, parse)
}

// Reconcile returns the canonical lines Normalize would hand to the engine.
func (n *Normalizer) Reconcile(rules []string, opts Options) ([]string, error) {
	lines, _, err := n.reconcile(rules, opts)
	return lines, err
}

func (n *Normalizer) reconcile(rules []string, opts Options) ([]string, *time.Location, error) {
	tzid, hasTZID := opts.TZID.Get()
	targetZone := datetime.ZoneUTC
	if hasTZID {
		targetZone = strings.ToLower(tzid)
	}

	loc, err := datetime.LoadZone(targetZone, nil)
	if err != nil {
		return nil, nil, &datetime.InvalidDateTimeError{
			Reason:      datetime.ReasonUnsupportedZone,
			Explanation: fmt.Sprintf("the zone %q is not supported", tzid),
			Err:         err,
		}
	}

	var head, body []string

	dtstart, hasDtstart := opts.Dtstart.Get()
	if hasDtstart {
		if err := datetime.Validate(dtstart); err != nil {
			return nil, nil, err
		}
		head = append(head, dtstartLine(FormatInZone(dtstart, loc), loc).String())
	}

	for _, rule := range rules {
		for _, raw := range ruleline.Unfold(rule) {
			switch {
			case ruleline.HasName(raw, ruleline.NameDTStart):
				if hasDtstart {
					continue
				}
				adjusted, err := reconcileDTStartLine(raw, targetZone, loc)
				if err != nil {
					return nil, nil, err
				}
				head = append(head, adjusted)
			case ruleline.HasName(raw, ruleline.NameRDate), ruleline.HasName(raw, ruleline.NameExDate):
				adjusted, err := reconcileDateLine(raw, targetZone, loc)
				if err != nil {
					return nil, nil, err
				}
				body = append(body, adjusted)
			case isBareRule(raw):
				body = append(body, ruleline.NameRRule+":"+raw)
			default:
				body = append(body, raw)
			}
		}
	}

	return append(head, body...), loc, nil
}

// reconcileDTStartLine moves a DTSTART line into the target zone. The engine reads
// every untagged RDATE/EXDATE value in the DTSTART zone, so the two must agree.
func reconcileDTStartLine(raw, targetZone string, target *time.Location) (string, error) {
	line, err := ruleline.Parse(raw)
	if err != nil {
		return "", &RuleError{Op: "reconcile", Input: raw, Kind: ErrMalformedRuleSet, Err: err}
	}
	value := strings.TrimSpace(line.Value)

	// dates carry no zone and are read in the target zone
	if v, ok := line.Param(ruleline.ParamValue); ok && strings.EqualFold(v, "DATE") {
		return ruleline.Line{Name: ruleline.NameDTStart, Value: value}.String(), nil
	}

	ruleZone := targetZone
	if tzid, ok := line.Param(ruleline.ParamTZID); ok && tzid != "" {
		ruleZone = tzid
	} else if strings.HasSuffix(strings.ToUpper(value), "Z") {
		ruleZone = datetime.ZoneUTC
	}

	local, err := ReformatInZone(value, ruleZone, targetZone)
	if err != nil {
		return "", err
	}
	return dtstartLine(local, target).String(), nil
}

// dtstartLine tags a local literal with the target zone: a canonical TZID for named
// zones, the UTC suffix for UTC, nothing for fixed offsets the engine cannot load.
func dtstartLine(local string, target *time.Location) ruleline.Line {
	line := ruleline.Line{Name: ruleline.NameDTStart, Value: local}
	switch {
	case target == time.UTC:
		line.Value += "Z"
	case !datetime.IsUniversal(target):
		line = line.WithParam(ruleline.ParamTZID, target.String())
	}
	return line
}

// reconcileDateLine rewrites a RDATE/EXDATE line declared in another zone into the
// target zone. Lines already in the target zone keep their TZID, spelled canonically.
func reconcileDateLine(raw, targetZone string, target *time.Location) (string, error) {
	line, err := ruleline.Parse(raw)
	if err != nil {
		return "", &RuleError{Op: "reconcile", Input: raw, Kind: ErrMalformedRuleSet, Err: err}
	}

	// date-only values carry no zone
	if value, ok := line.Param(ruleline.ParamValue); ok && strings.EqualFold(value, "DATE") {
		return raw, nil
	}

	tzid, hasTZID := line.Param(ruleline.ParamTZID)
	ruleZone := datetime.ZoneUTC
	if hasTZID && tzid != "" {
		ruleZone = tzid
	}

	if strings.EqualFold(ruleZone, targetZone) {
		// the engine reads untagged values in the target zone already
		if hasTZID && !datetime.IsUniversal(target) {
			line = line.WithParam(ruleline.ParamTZID, target.String())
		} else {
			line = line.WithoutParam(ruleline.ParamTZID)
		}
		return line.String(), nil
	}

	values := line.Values()
	adjusted := make([]string, len(values))
	for i, v := range values {
		out, err := ReformatInZone(strings.TrimSpace(v), ruleZone, targetZone)
		if err != nil {
			return "", err
		}
		adjusted[i] = out
	}

	line = line.WithoutParam(ruleline.ParamTZID)
	line.Value = strings.Join(adjusted, ",")
	return line.String(), nil
}

// limit rebuilds the set with a bounded RRULE. The parsed set is left untouched.
func (n *Normalizer) limit(set *rrule.Set, opts Options, loc *time.Location) (*rrule.Set, error) {
	rule := set.GetRRule()
	if rule == nil {
		return set, nil
	}

	ropt := rule.OrigOptions
	ropt.Count = limitCount(ropt.Count, opts.Count, n.maxOccurrences)
	if !ropt.Until.IsZero() && opts.TZID.IsPresent() {
		// UNTIL is usually written in UTC but bounds the rule in its own zone
		ropt.Until = datetime.KeepLocal(ropt.Until, loc)
	}

	limited, err := rrule.NewRRule(ropt)
	if err != nil {
		return nil, &RuleError{Op: "limit", Input: rule.String(), Kind: ErrMalformedRuleSet, Err: err}
	}

	out := &rrule.Set{}
	out.RRule(limited)
	if dtstart := set.GetDTStart(); !dtstart.IsZero() {
		out.DTStart(dtstart)
	}
	for _, d := range set.GetRDate() {
		out.RDate(d)
	}
	for _, d := range set.GetExDate() {
		out.ExDate(d)
	}

	n.log().Debug("limited recurrence rule", "count", ropt.Count, "until", ropt.Until)
	return out, nil
}

// isBareRule reports whether raw is an RRULE value written without its property name.
func isBareRule(raw string) bool {
	return len(raw) > 5 && strings.EqualFold(raw[:5], "FREQ=")
}

func countRRules(lines []string) int {
	count := 0
	for _, line := range lines {
		if ruleline.HasName(line, ruleline.NameRRule) {
			count++
		}
	}
	return count
}

func limitCount(parsed, requested, ceiling int) int {
	if requested > 0 {
		return requested
	}
	if parsed > 0 && parsed < ceiling {
		return parsed
	}
	return ceiling
}

func (n *Normalizer) log() *slog.Logger {
	if n.logger != nil {
		return n.logger
	}
	return slog.Default()
}

// zoneName returns a name the zone can be loaded by again, or "" for the process zone.
func zoneName(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	name := loc.String()
	if name == "Local" {
		return ""
	}
	return name
}
