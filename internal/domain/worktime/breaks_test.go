package worktime

import "testing"

func TestBreakMinutes(t *testing.T) {
	cases := []struct {
		in, out   string
		hadDinner bool
		want      int
	}{
		{"09:00:00", "12:00:00", false, 0},
		{"09:00:00", "14:00:00", false, 60},
		{"09:00:00", "19:00:00", true, 120},
		{"16:00:00", "20:00:00", true, 60},
		{"15:00:00", "20:00:00", true, 120},
		{"09:00:00", "13:30:00", false, 0},
		{"22:00:00", "06:00:00", false, 60},
	}
	for _, tc := range cases {
		got, err := BreakMinutes(tc.in, tc.out, tc.hadDinner)
		if err != nil {
			t.Fatalf("%s-%s: unexpected error: %v", tc.in, tc.out, err)
		}
		if got != tc.want {
			t.Fatalf("%s-%s dinner=%v: expected %d, got %d", tc.in, tc.out, tc.hadDinner, tc.want, got)
		}
	}
}

func TestAutoDetectDinnerFlag(t *testing.T) {
	cases := []struct {
		in, out string
		want    bool
	}{
		{"09:00:00", "19:00:00", true},
		{"18:01:00", "02:00:00", false},
		{"09:00:00", "18:59:00", false},
		{"10:00:00", "18:00:00", false},
		{"12:00:00", "03:00:00", true},
	}
	for _, tc := range cases {
		got, err := AutoDetectDinnerFlag(tc.in, tc.out)
		if err != nil {
			t.Fatalf("%s-%s: unexpected error: %v", tc.in, tc.out, err)
		}
		if got != tc.want {
			t.Fatalf("%s-%s: expected %v, got %v", tc.in, tc.out, tc.want, got)
		}
	}
}

func TestBreakMinutesMalformed(t *testing.T) {
	if _, err := BreakMinutes("nine", "17:00", false); err == nil {
		t.Fatal("expected error for malformed check-in")
	}
}
