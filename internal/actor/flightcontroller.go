package actor

import (
	"context"
	"net"
	"time"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
	"dronesys/internal/wire"
)

const (
	rebindInterval  = 2000 * time.Millisecond
	motorRampUp     = 0.005
	motorRampDown   = 0.01
	flyTimeoutLimit = 10
	flyAvgRampUp    = 0.7
	flyAvgDrag      = 0.5
)

// FlightController owns motor PWM and the non-blocking UDP command socket
// (spec.md §4.3). It is the central driver of Action transitions.
type FlightController struct {
	Region  *sharedstate.Region
	Tick    time.Duration // default 50ms
	DroneIP string
	Port    uint16

	conn            *net.UDPConn
	lastBindAttempt time.Time

	lastAccel  sharedstate.Acceleration
	haveAccel  bool
	flyTimeout int

	landingFromAbort bool
}

// Run executes the flight controller loop until ctx is canceled.
func (f *FlightController) Run(ctx context.Context) error {
	f.tryBind()

	ticker := time.NewTicker(f.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			f.closeConn()
			return nil
		case <-ticker.C:
			f.tick()
		}
	}
}

func (f *FlightController) tick() {
	if f.conn == nil && time.Since(f.lastBindAttempt) >= rebindInterval {
		f.tryBind()
	}

	cmd, hasCmd := f.readCommand()

	current := f.Region.Action()

	switch current {
	case sharedstate.Fly:
		f.stepFly(cmd, hasCmd)
	case sharedstate.SampleGPS, sharedstate.Idle:
		if hasCmd && sharedstate.FlightAccepts(current, cmd) {
			f.Region.SetAction(cmd)
		}
	case sharedstate.Charge:
		if hasCmd && sharedstate.FlightAccepts(current, cmd) {
			if f.Region.Battery() >= batteryLowThreshold {
				f.Region.SetAction(cmd)
			} else {
				logging.Infof("flightctrl", "cannot leave Charge below %d%%", batteryLowThreshold)
			}
		}
	case sharedstate.Land:
		if hasCmd && sharedstate.FlightAccepts(current, cmd) {
			f.Region.SetAction(cmd)
		} else {
			f.landStep()
		}
	case sharedstate.Abort:
		// Operator commands are ignored entirely in Abort.
		if f.Region.Battery() < batteryLowThreshold {
			f.Region.SetAction(sharedstate.Charge)
			// Stop this tick: spec.md §4.3 "stop this tick" — do not
			// fall through into the Land step below.
		} else {
			f.landingFromAbort = true
			// Intentional fallthrough (spec.md §9 Open Question #2): this
			// same tick runs the Land motor-decrease step while Action
			// stays Abort. flight_ctrl.c sets last_action = current_action
			// (Abort) before this switch, so the revert resolves to Abort,
			// not the pre-Abort action — Abort keeps landing the aircraft
			// until at rest, never resuming Fly mid-descent. landStep
			// transitions to Charge, not back to Fly, once the motors
			// reach zero.
			f.landStep()
		}
	default:
		f.Region.SetAction(sharedstate.Abort)
	}

	f.Region.Heartbeats.Bump(sharedstate.ActorFlightCtrl)
}

// stepFly implements spec.md §4.3's Fly case: motor ramp/drag, stall
// detection via unchanged acceleration, and eligible operator commands.
func (f *FlightController) stepFly(cmd sharedstate.Action, hasCmd bool) {
	motors := f.Region.PWM()
	avg := (motors.Values[0] + motors.Values[1] + motors.Values[2] + motors.Values[3]) / 4

	if avg < flyAvgRampUp {
		for i := range motors.Values {
			motors.Values[i] = clamp01(motors.Values[i] + motorRampUp)
		}
	}

	accel := f.Region.Accel()
	if avg >= flyAvgDrag {
		drag := accel.X + accel.Y
		for i := range motors.Values {
			motors.Values[i] = clamp01(motors.Values[i] - drag)
		}
	}
	f.Region.SetPWM(motors)

	if f.haveAccel && accel == f.lastAccel {
		f.flyTimeout++
		if f.flyTimeout >= flyTimeoutLimit {
			f.Region.SetAction(sharedstate.Abort)
			f.flyTimeout = 0
		}
	} else {
		f.flyTimeout = 0
	}
	f.lastAccel = accel
	f.haveAccel = true

	if hasCmd && sharedstate.FlightAccepts(sharedstate.Fly, cmd) {
		f.Region.SetAction(cmd)
	}
}

// landStep implements the "otherwise" branch of spec.md §4.3's Land case:
// decrement every motor, and on reaching zero mean, transition to Idle
// (normal landing) or Charge (if this landing was entered via Abort).
func (f *FlightController) landStep() {
	motors := f.Region.PWM()
	for i := range motors.Values {
		motors.Values[i] = clamp01(motors.Values[i] - motorRampDown)
	}
	f.Region.SetPWM(motors)

	mean := (motors.Values[0] + motors.Values[1] + motors.Values[2] + motors.Values[3]) / 4
	if mean <= 0 {
		if f.landingFromAbort {
			f.Region.SetAction(sharedstate.Charge)
			f.landingFromAbort = false
		} else {
			f.Region.SetAction(sharedstate.Idle)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// tryBind opens the non-blocking UDP receive socket. Communication errors
// force Action=Abort and flag a re-bind (spec.md §4.3).
func (f *FlightController) tryBind() {
	f.lastBindAttempt = time.Now()
	addr := &net.UDPAddr{IP: net.ParseIP(f.DroneIP), Port: int(f.Port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		logging.Errorf("flightctrl", "bind %s:%d failed: %v", f.DroneIP, f.Port, err)
		f.Region.SetAction(sharedstate.Abort)
		return
	}
	f.conn = conn
	logging.Infof("flightctrl", "bound %s:%d", f.DroneIP, f.Port)
}

// readCommand performs a non-blocking read of one Action-sized datagram.
// Retriable errors (would-block, timeout) are silent; other errors force
// Abort and flag a re-bind.
func (f *FlightController) readCommand() (sharedstate.Action, bool) {
	if f.conn == nil {
		return 0, false
	}
	buf := make([]byte, 64)
	_ = f.conn.SetReadDeadline(time.Now())
	n, _, err := f.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, false
		}
		logging.Errorf("flightctrl", "udp read error: %v", err)
		f.closeConn()
		f.Region.SetAction(sharedstate.Abort)
		return 0, false
	}
	cmd, decodeErr := wire.DecodeCommand(buf[:n])
	if decodeErr != nil {
		return 0, false
	}
	if !cmd.Valid() {
		return 0, false
	}
	return cmd, true
}

func (f *FlightController) closeConn() {
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
}
