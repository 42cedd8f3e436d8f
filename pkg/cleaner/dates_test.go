package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseJoinDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2022-01-13", "2022-01-13", true},
		{"  2022-01-13\t", "2022-01-13", true},
		{"2022-1-3", "2022-01-03", true},
		{"2022/01/13", "2022-01-13", true},
		{"2022-01-13 08:30:00", "2022-01-13", true},
		{"2022-01-13T08:30:00", "2022-01-13", true},
		{"2022-01-13T08:30:00Z", "2022-01-13", true},
		{"01/13/2022", "2022-01-13", true},
		{"1/3/2022", "2022-01-03", true},
		{"01-13-2022", "2022-01-13", true},
		{"Jan 13, 2022", "2022-01-13", true},
		{"January 13, 2022", "2022-01-13", true},
		{"13 Jan 2022", "2022-01-13", true},
		{"13 january 2022", "2022-01-13", true},
		{"13-Jan-2022", "2022-01-13", true},
		{"1900-01-01", "1900-01-01", true},

		// Day-first numeric dates are not accepted.
		{"13-01-2022", "", false},
		{"13/01/2022", "", false},
		{"not-a-date", "", false},
		{"2022-02-30", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseJoinDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
