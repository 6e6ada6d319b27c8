package worktime

import (
	"testing"

	"hrportal/internal/domain/policy"
)

func TestNightHours(t *testing.T) {
	p := policy.DefaultOvertimeNight()
	cases := []struct {
		in, out string
		want    float64
	}{
		{"09:00", "17:00", 0},
		{"18:00", "02:00", 4},
		{"21:00", "07:00", 8},
		{"22:00", "06:00", 8},
		{"22:00", "22:20", 0.3},
		{"05:00", "09:00", 1},
		{"20:00", "25:30", 3.5},
	}
	for _, tc := range cases {
		got, err := NightHours(tc.in, tc.out, p)
		if err != nil {
			t.Fatalf("%s-%s: unexpected error: %v", tc.in, tc.out, err)
		}
		if got != tc.want {
			t.Fatalf("%s-%s: expected %v, got %v", tc.in, tc.out, tc.want, got)
		}
	}
}

func TestNightHoursCustomWindow(t *testing.T) {
	p := policy.DefaultOvertimeNight()
	p.NightStartMinute = 21 * 60
	p.NightEndMinute = 23 * 60
	got, err := NightHours("18:00", "23:30", p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestNightHoursBoundedByShift(t *testing.T) {
	p := policy.DefaultOvertimeNight()
	clocks := []string{"00:00", "03:15", "06:00", "09:30", "13:00", "17:45", "19:00", "21:59", "22:00", "23:30"}
	for _, in := range clocks {
		for _, out := range clocks {
			shift, err := NewShift(referenceDate, in, out)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := nightDuration(shift, p)
			if got < 0 || got > shift.Duration() {
				t.Fatalf("%s-%s: night %v outside [0,%v]", in, out, got, shift.Duration())
			}
		}
	}
}
