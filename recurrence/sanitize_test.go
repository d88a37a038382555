package recurrence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		rules []string
		want  string
	}{
		{
			name:  "evolution end date removed",
			rules: []string{"RRULE:FREQ=DAILY;UNTIL=20240105T000000Z;X-EVOLUTION-ENDDATE=20240105T000000Z"},
			want:  "RRULE:FREQ=DAILY;UNTIL=20240105T000000Z",
		},
		{
			name:  "lines joined",
			rules: []string{"DTSTART:20240101T000000Z", "RRULE:FREQ=DAILY"},
			want:  "DTSTART:20240101T000000Z\nRRULE:FREQ=DAILY",
		},
		{
			name:  "other parameters untouched",
			rules: []string{"RRULE:FREQ=WEEKLY;X-OTHER=1"},
			want:  "RRULE:FREQ=WEEKLY;X-OTHER=1",
		},
		{
			name:  "empty",
			rules: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.rules)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Sanitize([]string{got}), "not idempotent")
		})
	}
}
