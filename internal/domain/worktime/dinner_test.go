package worktime

import "testing"

func TestDetectMissingDinner(t *testing.T) {
	cases := []struct {
		name      string
		in, out   string
		status    string
		hadDinner bool
		missing   bool
		reason    string
		net       float64
	}{
		{"long evening shift", "09:00", "21:00", "", false, true, ReasonDinnerMissing, 11},
		{"dinner flag set", "09:00", "21:00", "", true, false, ReasonDinnerRecorded, 10},
		{"dinner already stored", "09:00", "21:00", "recorded", false, false, ReasonDinnerRecorded, 11},
		{"short shift", "13:00", "20:00", "", false, false, ReasonInsufficientHours, 6},
		{"late start", "20:00", "06:00", "", false, false, ReasonLateCheckIn, 9},
		{"leaves before dinner", "07:00", "18:30", "", false, false, ReasonEarlyCheckOut, 10.5},
	}
	for _, tc := range cases {
		got, err := DetectMissingDinner(tc.in, tc.out, tc.status, tc.hadDinner)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got.IsMissing != tc.missing || got.Reason != tc.reason {
			t.Fatalf("%s: expected (%v,%s), got (%v,%s)", tc.name, tc.missing, tc.reason, got.IsMissing, got.Reason)
		}
		if got.NetHours != tc.net {
			t.Fatalf("%s: expected net %v, got %v", tc.name, tc.net, got.NetHours)
		}
	}
}
