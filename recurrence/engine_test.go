package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stockholmDaily(t *testing.T, count int) *RuleSet {
	t.Helper()
	stockholm := mustLoad(t, "Europe/Stockholm")
	rs, err := Normalize([]string{"RRULE:FREQ=DAILY"}, Options{
		Dtstart: mo.Some(time.Date(2024, 3, 29, 9, 0, 0, 0, stockholm)),
		TZID:    mo.Some("Europe/Stockholm"),
		Count:   count,
	})
	require.NoError(t, err)
	return rs
}

func TestEngine_Compile(t *testing.T) {
	e := NewEngine()

	set, err := e.Compile("DTSTART:20240101T090000Z\nRRULE:FREQ=DAILY;COUNT=3", nil)
	require.NoError(t, err)
	assert.Len(t, set.All(), 3)

	_, err = e.Compile(" \n\r\n", time.UTC)
	assert.ErrorIs(t, err, errEmptyRuleSet)

	_, err = e.Compile("RRULE:FREQ=HOURLY;BYDAY=XX", time.UTC)
	assert.Error(t, err)
}

func TestEngine_Between_NaiveInstants(t *testing.T) {
	e := NewEngine()
	rs := stockholmDaily(t, 5)

	got := e.Between(rs, time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 5)
	for i, instant := range got {
		// wall clock stays at 09:00 on both sides of the DST change
		assert.Equal(t, time.Date(2024, 3, 29+i, 9, 0, 0, 0, time.UTC), instant)
	}
}

func TestEngine_Between_WindowInclusive(t *testing.T) {
	e := NewEngine()
	rs := stockholmDaily(t, 10)

	got := e.Between(rs, time.Date(2024, 3, 30, 9, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC))
	assert.Len(t, got, 3)
}

func TestEngine_Between_Limit(t *testing.T) {
	e := NewEngineWithConfig(EngineConfig{MaxOccurrences: 3})
	rs := stockholmDaily(t, 10)

	got := e.Between(rs, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Len(t, got, 3)
}

func TestEngine_Between_Cached(t *testing.T) {
	e := NewEngineWithConfig(CachedEngineConfig)
	defer e.Close()
	rs := stockholmDaily(t, 5)

	after := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	first := e.Between(rs, after, before)
	require.Len(t, first, 5)
	first[0] = time.Time{}

	second := e.Between(rs, after, before)
	require.Len(t, second, 5)
	assert.Equal(t, time.Date(2024, 3, 29, 9, 0, 0, 0, time.UTC), second[0])
	assert.Equal(t, 1, e.cache.Stats().TotalEntries)

	e.Between(rs, after, before.Add(24*time.Hour))
	assert.Equal(t, 2, e.cache.Stats().TotalEntries)
}

func TestEngine_HasOccurrenceInRange(t *testing.T) {
	e := NewEngine()
	rs, err := Normalize([]string{"DTSTART:20240101T090000Z", "RRULE:FREQ=DAILY;COUNT=3"}, Options{})
	require.NoError(t, err)

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"contains start", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), true},
		{"overlaps tail", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC), time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), true},
		{"touches end", time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 11, 0, 0, 0, time.UTC), true},
		{"between occurrences", time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC), false},
		{"after last", time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"wide range", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"inverted range", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.HasOccurrenceInRange(rs, time.Hour, tt.start, tt.end))
		})
	}
}

func TestEngine_OccurrencesBetween(t *testing.T) {
	e := NewEngine()

	t.Run("window", func(t *testing.T) {
		got, err := e.OccurrencesBetween("DTSTART:20240101T090000Z\nRRULE:FREQ=DAILY", "2024-01-01T00:00:00Z", "2024-01-05T23:59:59Z")
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.True(t, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC).Equal(got[4]))
	})

	t.Run("offset window", func(t *testing.T) {
		got, err := e.OccurrencesBetween("DTSTART:20240101T090000Z\nRRULE:FREQ=DAILY", "2024-01-02T10:00:00+01:00", "2024-01-02T10:00:00+01:00")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("unbounded rule capped", func(t *testing.T) {
		got, err := e.OccurrencesBetween("DTSTART:20200101T000000Z\nFREQ=DAILY", "2020-01-01T00:00:00Z", "2030-01-01T00:00:00Z")
		require.NoError(t, err)
		assert.Len(t, got, MaxOccurrencesCount)
	})

	t.Run("large count capped", func(t *testing.T) {
		got, err := e.OccurrencesBetween("DTSTART:20200101T000000Z\nRRULE:FREQ=DAILY;COUNT=5000", "2020-01-01T00:00:00Z", "2030-01-01T00:00:00Z")
		require.NoError(t, err)
		assert.Len(t, got, MaxOccurrencesCount)
	})

	t.Run("bad window", func(t *testing.T) {
		_, err := e.OccurrencesBetween("RRULE:FREQ=DAILY", "yesterday", "2030-01-01T00:00:00Z")
		assert.ErrorIs(t, err, ErrMalformedRuleSet)
	})

	t.Run("bad rule", func(t *testing.T) {
		_, err := e.OccurrencesBetween("RRULE:FREQ=SOMETIMES", "2020-01-01T00:00:00Z", "2030-01-01T00:00:00Z")
		assert.ErrorIs(t, err, ErrMalformedRuleSet)
	})
}

func TestEngine_Instances(t *testing.T) {
	stockholm := mustLoad(t, "Europe/Stockholm")
	e := NewEngine()
	p := NewProjector(time.UTC)
	rs := stockholmDaily(t, 4)

	got := e.Instances(rs, p, stockholm, 90*time.Minute,
		time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 4)

	for i, occ := range got {
		assert.Equal(t, time.Date(2024, 3, 29+i, 9, 0, 0, 0, stockholm), occ.Start)
		assert.Equal(t, 90*time.Minute, occ.End.Sub(occ.Start))
		assert.Equal(t, time.Date(2024, 3, 29+i, 9, 0, 0, 0, time.UTC), occ.Instant)
	}
}
