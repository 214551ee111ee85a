// Package sharedstate implements the SharedRegion data model of spec.md §3:
// the Action state machine, the synchronization primitives described in
// §4.1 (RW-lock, atomic battery, bounded ring buffer), and the aggregate
// region every actor reads or writes through.
package sharedstate

import "fmt"

// Action is the drone's current mode. The bit-flag values mirror
// original_source/proj_types.h's current_action_t so that the numeric
// value reported by telemetry (§4.6, "ACTION = <numeric action>") matches
// the original wire contract.
type Action uint8

const (
	Reserved  Action = 1 << 0
	SampleGPS Action = 1 << 1
	Fly       Action = 1 << 2
	Land      Action = 1 << 3
	Idle      Action = 1 << 4
	Charge    Action = 1 << 5
	Abort     Action = 1 << 6
)

// String renders the action the way original_source/proj_types.h's
// printactln does, for log lines and debugging.
func (a Action) String() string {
	switch a {
	case Reserved:
		return "Reserved"
	case SampleGPS:
		return "SampleGPS"
	case Fly:
		return "Fly"
	case Land:
		return "Land"
	case Idle:
		return "Idle"
	case Charge:
		return "Charge"
	case Abort:
		return "Abort"
	default:
		return fmt.Sprintf("Undefined(%d)", uint8(a))
	}
}

// Valid reports whether a is one of the seven known tags. The Flight
// Controller discards a received command that is not Valid; a current
// Action outside the known tags is forced to Abort by its state switch.
func (a Action) Valid() bool {
	switch a {
	case Reserved, SampleGPS, Fly, Land, Idle, Charge, Abort:
		return true
	default:
		return false
	}
}

// FlightAccepts reports whether op is an operator command the current
// state is eligible to accept, per spec.md §4.3.
func FlightAccepts(current, op Action) bool {
	switch current {
	case Fly:
		return op == SampleGPS || op == Land || op == Abort
	case SampleGPS:
		return op == Fly || op == Abort
	case Idle:
		return op == Fly || op == Charge || op == Abort
	case Charge:
		return op == Idle || op == Abort
	case Land:
		return op == Fly || op == Abort
	case Abort:
		return false
	default:
		return false
	}
}
