package datetime

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // direct loads fall back to the embedded database
)

// Well-known zone identifiers.
const (
	ZoneUTC    = "utc"
	ZoneSystem = "system"
)

// ErrUnknownZone is returned by LoadZone when no zone matches the identifier.
var ErrUnknownZone = errors.New("unknown time zone")

var fixedOffsetRegex = regexp.MustCompile(`(?i)^(?:utc|gmt)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// zoneinfoRoots are scanned for case-insensitive lookups when the direct load fails.
var zoneinfoRoots = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
}

// LoadZone resolves a zone identifier the way calendar clients write them.
//
// Identifiers are matched case-insensitively, so "europe/stockholm" resolves to
// Europe/Stockholm. "utc", "gmt" and "z" map to time.UTC, "system" and "local" to the
// given system zone (time.Local when nil), and "UTC+05:30" style offsets to fixed zones.
func LoadZone(name string, system *time.Location) (*time.Location, error) {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	switch lower {
	case "", ZoneSystem, "local":
		return systemOrLocal(system), nil
	case ZoneUTC, "gmt", "z", "uct", "universal", "zulu", "etc/utc", "etc/gmt", "etc/universal", "etc/zulu":
		return time.UTC, nil
	}

	if loc, ok := parseFixedOffset(name); ok {
		return loc, nil
	}

	if loc, err := time.LoadLocation(name); err == nil {
		return loc, nil
	}

	for _, candidate := range canonicalCandidates(name) {
		if loc, err := time.LoadLocation(candidate); err == nil {
			return loc, nil
		}
	}

	if canonical, ok := zoneIndex()[lower]; ok {
		if loc, err := time.LoadLocation(canonical); err == nil {
			return loc, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownZone, name)
}

// IsUniversal reports whether loc has a single fixed offset that carries no
// regional rules, i.e. UTC or an explicit offset zone.
func IsUniversal(loc *time.Location) bool {
	if loc == nil || loc == time.UTC {
		return true
	}
	name := loc.String()
	switch strings.ToLower(name) {
	case "", "utc", "gmt", "z", "uct", "universal", "zulu":
		return true
	}
	_, fixed := parseFixedOffset(name)
	return fixed
}

// KeepLocal re-expresses t in loc keeping its wall-clock fields rather than its instant.
func KeepLocal(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func systemOrLocal(system *time.Location) *time.Location {
	if system != nil {
		return system
	}
	return time.Local
}

func parseFixedOffset(name string) (*time.Location, bool) {
	m := fixedOffsetRegex.FindStringSubmatch(name)
	if m == nil {
		return nil, false
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if hours > 18 || minutes > 59 {
		return nil, false
	}
	offset := hours*3600 + minutes*60
	if offset == 0 {
		return time.UTC, true
	}
	if m[1] == "-" {
		offset = -offset
	}
	return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", m[1], hours, minutes), offset), true
}

// canonicalCandidates guesses IANA capitalisation: "america/new_york" -> "America/New_York",
// "us/pacific" -> "US/Pacific", "est5edt" -> "EST5EDT".
func canonicalCandidates(name string) []string {
	segments := strings.Split(name, "/")
	titled := make([]string, len(segments))
	for i, seg := range segments {
		titled[i] = titleWords(seg)
	}
	candidates := []string{strings.Join(titled, "/")}

	if len(segments) > 1 && len(segments[0]) <= 3 {
		upperFirst := append([]string{strings.ToUpper(segments[0])}, titled[1:]...)
		candidates = append(candidates, strings.Join(upperFirst, "/"))
	}
	return append(candidates, strings.ToUpper(name))
}

// lowerParticles stay lower case inside a segment, as in Port-au-Prince or Dar_es_Salaam.
var lowerParticles = map[string]bool{"au": true, "es": true, "of": true}

func titleWords(s string) string {
	var b strings.Builder
	word := 0
	for start := 0; start <= len(s); {
		end := strings.IndexAny(s[start:], "_-")
		if end < 0 {
			end = len(s)
		} else {
			end += start
		}

		w := strings.ToLower(s[start:end])
		if w != "" && (word == 0 || !lowerParticles[w]) {
			w = strings.ToUpper(w[:1]) + w[1:]
		}
		b.WriteString(w)
		if end < len(s) {
			b.WriteByte(s[end])
		}
		word++
		start = end + 1
	}
	return b.String()
}

var (
	zoneIndexOnce sync.Once
	zoneIndexMap  map[string]string
)

// zoneIndex maps lower-cased zone names to their canonical spelling, built once
// from the host zoneinfo tree.
func zoneIndex() map[string]string {
	zoneIndexOnce.Do(func() {
		zoneIndexMap = make(map[string]string)
		roots := zoneinfoRoots
		if env := os.Getenv("ZONEINFO"); env != "" {
			roots = append([]string{env}, roots...)
		}
		for _, root := range roots {
			indexZoneinfoRoot(root, zoneIndexMap)
		}
	})
	return zoneIndexMap
}

func indexZoneinfoRoot(root string, index map[string]string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return filepath.SkipDir
			}
			return nil
		}
		rel = filepath.ToSlash(rel)
		if _, seen := index[strings.ToLower(rel)]; seen || !isTZif(path) {
			return nil
		}
		index[strings.ToLower(rel)] = rel
		return nil
	})
}

// isTZif checks the RFC 8536 magic so tables such as zone.tab are skipped.
func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return false
	}
	return string(magic) == "TZif"
}
