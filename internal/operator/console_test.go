package operator

import (
	"testing"

	"dronesys/internal/sharedstate"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in     string
		want   sharedstate.Action
		wantOk bool
	}{
		{"fly\n", sharedstate.Fly, true},
		{"FLY\n", sharedstate.Fly, true},
		{"  samplegps  \n", sharedstate.SampleGPS, true},
		{"Land", sharedstate.Land, true},
		{"idle\n", sharedstate.Idle, true},
		{"charge\n", sharedstate.Charge, true},
		{"abort\n", sharedstate.Abort, true},
		{"takeoff\n", 0, false},
		{"\n", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parseCommand(c.in)
		if ok != c.wantOk || (ok && got != c.want) {
			t.Errorf("parseCommand(%q) = (%s, %v), want (%s, %v)", c.in, got, ok, c.want, c.wantOk)
		}
	}
}
