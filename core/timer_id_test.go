package core

import (
	"testing"

	"github.com/pkg/errors"
)

func TestTimerIDString(t *testing.T) {
	if Timer2.String() != "timer2" {
		t.Errorf("Expected timer2, got %s", Timer2)
	}
	if TimerID(9).String() != "timer(9)" {
		t.Errorf("Expected timer(9), got %s", TimerID(9))
	}
}

func TestParseTimerID(t *testing.T) {
	testCases := []struct {
		in   string
		want TimerID
		ok   bool
	}{
		{"0", Timer0, true},
		{"t1", Timer1, true},
		{"timer2", Timer2, true},
		{"3", 0, false},
		{"timer", 0, false},
		{"x", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseTimerID(tc.in)
			if tc.ok {
				if err != nil {
					t.Fatalf("ParseTimerID(%q) failed: %v", tc.in, err)
				}
				if got != tc.want {
					t.Errorf("ParseTimerID(%q) = %s, expected %s", tc.in, got, tc.want)
				}
				return
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("ParseTimerID(%q): expected ConfigurationError, got %v", tc.in, err)
			}
		})
	}
}
