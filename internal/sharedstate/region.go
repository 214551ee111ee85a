package sharedstate

import (
	"sync"
	"sync/atomic"
)

// ActorID names one of the six spawned roles. The NMEA ring buffer and the
// action lock are shared by all actors; each actor below owns exactly one
// other field, per spec.md §3 "Ownership".
type ActorID string

const (
	ActorBattery      ActorID = "battery"
	ActorAccel        ActorID = "accel"
	ActorFlightCtrl   ActorID = "flightctrl"
	ActorGPS          ActorID = "gps"
	ActorTelemetry    ActorID = "telemetry"
	ActorWatchdog     ActorID = "watchdog"
)

// Acceleration is the drone's acceleration triple in m/s², written only
// by the Accelerometer actor.
type Acceleration struct {
	X, Y, Z float64
}

// Motors holds the PWM ratio (0..1) of the four motors, written only by
// the Flight Controller.
type Motors struct {
	Values [4]float64
}

// Heartbeats are the five per-actor monotonic counters the Watchdog reads.
// Each actor increments only its own field (spec.md §3).
type Heartbeats struct {
	Battery    atomic.Uint32
	Accel      atomic.Uint32
	FlightCtrl atomic.Uint32
	GPS        atomic.Uint32
	Telemetry  atomic.Uint32
}

// Get returns the current value of the counter for id, or 0 for unknown
// or watchdog-only ids (the Watchdog does not own a counter).
func (h *Heartbeats) Get(id ActorID) uint32 {
	switch id {
	case ActorBattery:
		return h.Battery.Load()
	case ActorAccel:
		return h.Accel.Load()
	case ActorFlightCtrl:
		return h.FlightCtrl.Load()
	case ActorGPS:
		return h.GPS.Load()
	case ActorTelemetry:
		return h.Telemetry.Load()
	default:
		return 0
	}
}

// Bump increments the counter owned by id.
func (h *Heartbeats) Bump(id ActorID) {
	switch id {
	case ActorBattery:
		h.Battery.Add(1)
	case ActorAccel:
		h.Accel.Add(1)
	case ActorFlightCtrl:
		h.FlightCtrl.Add(1)
	case ActorGPS:
		h.GPS.Add(1)
	case ActorTelemetry:
		h.Telemetry.Add(1)
	}
}

// Generations records how many times the supervisor has (re)spawned each
// actor. It stands in for proj_types.h's drone_pids_t — in a goroutine
// model there is no OS pid to record, but the same "written by supervisor
// only" discipline applies, and an incrementing generation number gives
// log lines and tests something concrete to assert on across a respawn.
type Generations struct {
	mu    sync.Mutex
	gen   map[ActorID]uint64
}

// NewGenerations returns an empty generation table.
func NewGenerations() *Generations {
	return &Generations{gen: make(map[ActorID]uint64)}
}

// Next increments and returns the new generation number for id. Only the
// supervisor calls this, on every spawn and respawn.
func (g *Generations) Next(id ActorID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[id]++
	return g.gen[id]
}

// Current returns the current generation number for id without advancing it.
func (g *Generations) Current(id ActorID) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[id]
}

// NetworkInfo is the read-only-after-spawn network configuration written
// once by the supervisor before any actor starts (spec.md §3).
type NetworkInfo struct {
	OperatorIP     string
	OperatorPort   uint16
	DroneIP        string
	FlightCtrlPort uint16
}

// Region is the SharedRegion of spec.md §3: the single instance created by
// the supervisor and visible to every actor. Each mutable field names its
// sole writer in its doc comment; violating that discipline is a bug the
// spec explicitly leaves undefined (§7 "Sole-writer invariants violated").
type Region struct {
	// Generations replaces drone_pids_t; written by the supervisor only.
	Generations *Generations

	Network NetworkInfo // written once before spawn, read-only thereafter

	Heartbeats Heartbeats // each actor increments only its own field

	actionLock *RWLock
	action     Action // written only under actionLock, by any actor permitted to transition it

	accelMu sync.Mutex
	accel   Acceleration // written only by the Accelerometer, under accelMu

	pwmMu sync.Mutex
	pwm   Motors // written only by the Flight Controller, under pwmMu

	GPS *RingBuffer // written only by the GPS Producer, read only by Telemetry

	battery atomic.Uint32 // single-writer atomic (Battery actor), range 0..100
}

// NewRegion creates a zero-initialized region with the defaults spec.md §3
// names: battery=100, action=Idle, zero acceleration, zero motors.
func NewRegion(ringCapacity int, net NetworkInfo) *Region {
	r := &Region{
		Generations: NewGenerations(),
		Network:     net,
		actionLock:  NewRWLock(),
		action:      Idle,
		GPS:         NewRingBuffer(ringCapacity),
	}
	r.battery.Store(100)
	return r
}

// Action returns the current Action under the RW-lock's reader discipline.
func (r *Region) Action() Action {
	r.actionLock.RLock()
	defer r.actionLock.RUnlock()
	return r.action
}

// SetAction overwrites the current Action under the RW-lock's writer
// discipline. Every actor permitted to transition the state machine calls
// this; which transitions are legal from which state is enforced by the
// caller (internal/actor/flightcontroller.go), not by Region itself.
func (r *Region) SetAction(a Action) {
	r.actionLock.Lock()
	defer r.actionLock.Unlock()
	r.action = a
}

// ResetLocks reinitializes the action RW-lock in place, preserving the
// current Action value. Only the supervisor calls this, and only after
// terminating every actor (spec.md §5).
func (r *Region) ResetLocks() {
	r.actionLock.Reset()
}

// Accel returns the current acceleration triple under accelMu.
func (r *Region) Accel() Acceleration {
	r.accelMu.Lock()
	defer r.accelMu.Unlock()
	return r.accel
}

// SetAccel overwrites the acceleration triple under accelMu. Only the
// Accelerometer actor calls this.
func (r *Region) SetAccel(a Acceleration) {
	r.accelMu.Lock()
	defer r.accelMu.Unlock()
	r.accel = a
}

// TryAccel attempts a non-blocking read of the acceleration triple,
// returning ok=false if the mutex is currently held. Telemetry uses this
// for its best-effort ACCEL section (spec.md §4.6).
func (r *Region) TryAccel() (a Acceleration, ok bool) {
	if !r.accelMu.TryLock() {
		return Acceleration{}, false
	}
	defer r.accelMu.Unlock()
	return r.accel, true
}

// PWM returns the current motor values under pwmMu.
func (r *Region) PWM() Motors {
	r.pwmMu.Lock()
	defer r.pwmMu.Unlock()
	return r.pwm
}

// SetPWM overwrites the motor values under pwmMu. Only the Flight
// Controller calls this.
func (r *Region) SetPWM(m Motors) {
	r.pwmMu.Lock()
	defer r.pwmMu.Unlock()
	r.pwm = m
}

// TryPWM attempts a non-blocking read of the motor values, returning
// ok=false if the mutex is currently held (spec.md §4.6 "MOTORS PWM"
// best-effort section).
func (r *Region) TryPWM() (m Motors, ok bool) {
	if !r.pwmMu.TryLock() {
		return Motors{}, false
	}
	defer r.pwmMu.Unlock()
	return r.pwm, true
}

// Battery returns the current charge percentage (0..100), acquire-ordered.
func (r *Region) Battery() uint8 {
	return uint8(r.battery.Load())
}

// SetBattery overwrites the charge percentage, release-ordered. Only the
// Battery actor calls this.
func (r *Region) SetBattery(v uint8) {
	r.battery.Store(uint32(v))
}
