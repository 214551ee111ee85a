// Package actor implements the six actor loops of spec.md §4.2–§4.8:
// Battery, Accelerometer, Flight Controller, GPS Producer, Telemetry, and
// Watchdog. Each Run function loops until ctx is canceled (graceful
// shutdown) or returns a non-nil error (crash, which the supervisor in
// internal/supervisor treats as a respawn signal), mirroring
// original_source/drone_sys.c's fork-one-process-per-actor model collapsed
// to goroutines per spec.md §9.
package actor

import (
	"context"
	"time"

	"golang.org/x/sys/unix"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
)

const (
	batteryDischargeInterval = 2000 * time.Millisecond
	batteryChargeInterval    = 500 * time.Millisecond
	batteryLowThreshold      = 15
)

// Battery is the sole writer of the charge scalar (spec.md §4.2). It
// drives the Abort-on-low-charge transition and the hard shutdown at 0%.
type Battery struct {
	Region *sharedstate.Region
	Tick   time.Duration // battery_tick_us, default 100µs
}

// Run executes the battery loop until ctx is canceled. Grounded on
// original_source/battery.c: a monotonic-clock-gated discharge/charge
// cadence, Abort trigger below 15%, and process-group termination at 0%.
func (b *Battery) Run(ctx context.Context) error {
	last := time.Now()
	ticker := time.NewTicker(b.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			current := b.Region.Battery()
			action := b.Region.Action()

			if action == sharedstate.Charge {
				if elapsed >= batteryChargeInterval {
					last = now
					if current < 100 {
						current++
						b.Region.SetBattery(current)
					}
					logging.Infof("battery", "charging: %d%%", current)
				}
			} else if elapsed >= batteryDischargeInterval {
				last = now
				if current > 0 {
					current--
					b.Region.SetBattery(current)
					logging.Infof("battery", "discharging: %d%%", current)

					if current < batteryLowThreshold && action != sharedstate.Abort {
						logging.Warnf("battery", "low (%d%%), forcing Abort", current)
						b.Region.SetAction(sharedstate.Abort)
					}
				} else {
					logging.Errorf("battery", "charge is 0%%, hard system shutdown")
					// Mirrors battery.c's kill(0, SIGTERM): terminate the
					// whole process group, not just this goroutine.
					_ = unix.Kill(0, unix.SIGTERM)
					return nil
				}
			}

			b.Region.Heartbeats.Bump(sharedstate.ActorBattery)
		}
	}
}
