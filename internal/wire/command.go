// Package wire implements the command datagram format of spec.md §6:
// "single UDP datagram carrying the raw byte pattern of the Action tag
// (size of the language's representation of the tag)." Action is a single
// byte in this port, so the datagram is exactly one byte.
package wire

import (
	"errors"

	"dronesys/internal/sharedstate"
)

// ErrBadSize is returned when a received datagram's length does not equal
// the size of the Action tag; spec.md §6 requires such datagrams be
// ignored rather than rejected with an error visible to the sender.
var ErrBadSize = errors.New("wire: command datagram has wrong size")

// EncodeCommand returns the one-byte wire representation of a.
func EncodeCommand(a sharedstate.Action) []byte {
	return []byte{byte(a)}
}

// DecodeCommand parses a received datagram into an Action. It returns
// ErrBadSize if len(b) != 1, matching "other sizes are ignored."
func DecodeCommand(b []byte) (sharedstate.Action, error) {
	if len(b) != 1 {
		return 0, ErrBadSize
	}
	return sharedstate.Action(b[0]), nil
}
