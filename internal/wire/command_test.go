package wire

import (
	"errors"
	"testing"

	"dronesys/internal/sharedstate"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, a := range []sharedstate.Action{
		sharedstate.Fly, sharedstate.Land, sharedstate.Idle,
		sharedstate.Charge, sharedstate.Abort, sharedstate.SampleGPS,
	} {
		b := EncodeCommand(a)
		if len(b) != 1 {
			t.Fatalf("EncodeCommand(%s) length = %d, want 1", a, len(b))
		}
		got, err := DecodeCommand(b)
		if err != nil {
			t.Fatalf("DecodeCommand(%v) = %v", b, err)
		}
		if got != a {
			t.Errorf("round trip: got %s, want %s", got, a)
		}
	}
}

func TestDecodeCommandWrongSize(t *testing.T) {
	cases := [][]byte{{}, {1, 2}, {1, 2, 3}}
	for _, b := range cases {
		if _, err := DecodeCommand(b); !errors.Is(err, ErrBadSize) {
			t.Errorf("DecodeCommand(%v) = %v, want ErrBadSize", b, err)
		}
	}
}
