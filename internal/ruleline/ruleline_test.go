package ruleline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Line
	}{
		{
			name: "rrule",
			in:   "RRULE:FREQ=WEEKLY;BYDAY=TU;UNTIL=20220906T091500Z",
			want: Line{Name: "RRULE", Value: "FREQ=WEEKLY;BYDAY=TU;UNTIL=20220906T091500Z"},
		},
		{
			name: "rdate with tzid and list",
			in:   "RDATE;TZID=Europe/Berlin:20240530T200000,20240531T200000",
			want: Line{
				Name:   "RDATE",
				Params: []Param{{Name: "TZID", Value: "Europe/Berlin"}},
				Value:  "20240530T200000,20240531T200000",
			},
		},
		{
			name: "quoted parameter with colon",
			in:   `EXDATE;TZID="Custom:Zone";VALUE=DATE-TIME:20240530T200000`,
			want: Line{
				Name:   "EXDATE",
				Params: []Param{{Name: "TZID", Value: "Custom:Zone"}, {Name: "VALUE", Value: "DATE-TIME"}},
				Value:  "20240530T200000",
			},
		},
		{
			name: "lower case name",
			in:   "dtstart;tzid=Asia/Tokyo:20240101T090000",
			want: Line{Name: "DTSTART", Params: []Param{{Name: "TZID", Value: "Asia/Tokyo"}}, Value: "20240101T090000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_MissingValue(t *testing.T) {
	_, err := Parse("RRULE")
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestLine_Params(t *testing.T) {
	line, err := Parse("RDATE;VALUE=DATE-TIME;TZID=Europe/Stockholm:20211217T120000")
	require.NoError(t, err)

	tzid, ok := line.Param("tzid")
	assert.True(t, ok)
	assert.Equal(t, "Europe/Stockholm", tzid)

	assert.Equal(t, "RDATE;VALUE=DATE-TIME:20211217T120000", line.WithoutParam(ParamTZID).String())
	assert.Equal(t, "RDATE;VALUE=DATE-TIME;TZID=UTC:20211217T120000", line.WithParam(ParamTZID, "UTC").String())
	assert.Equal(t, "RDATE;VALUE=DATE-TIME;TZID=Europe/Stockholm;X-FOO=1:20211217T120000", line.WithParam("X-FOO", "1").String())

	// the original line is untouched
	assert.Equal(t, "RDATE;VALUE=DATE-TIME;TZID=Europe/Stockholm:20211217T120000", line.String())
}

func TestLine_Values(t *testing.T) {
	line := Line{Name: NameExDate, Value: "20240101T000000Z,20240102T000000Z"}
	assert.Equal(t, []string{"20240101T000000Z", "20240102T000000Z"}, line.Values())
	assert.Nil(t, Line{Name: NameExDate}.Values())
}

func TestHasName(t *testing.T) {
	assert.True(t, HasName("EXDATE;TZID=UTC:20240101T000000", NameExDate))
	assert.True(t, HasName("rdate:20240101T000000Z", NameRDate))
	assert.False(t, HasName("RRULE:FREQ=DAILY", NameRDate))
	assert.False(t, HasName("RD", NameRDate))
}

func TestUnfold(t *testing.T) {
	in := "DTSTART:20120201T093000Z\r\nRRULE:FREQ=DAILY;\r\n INTERVAL=2\r\n\r\nEXDATE:20120203T093000Z\n"
	want := []string{
		"DTSTART:20120201T093000Z",
		"RRULE:FREQ=DAILY;INTERVAL=2",
		"EXDATE:20120203T093000Z",
	}
	if diff := cmp.Diff(want, Unfold(in)); diff != "" {
		t.Errorf("Unfold() mismatch (-want +got):\n%s", diff)
	}
}
