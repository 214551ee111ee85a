package actor

import (
	"context"
	"time"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
)

// watchedActors lists the five heartbeat counters the Watchdog observes.
// Watchdog itself owns no counter.
var watchedActors = []sharedstate.ActorID{
	sharedstate.ActorBattery,
	sharedstate.ActorAccel,
	sharedstate.ActorFlightCtrl,
	sharedstate.ActorGPS,
	sharedstate.ActorTelemetry,
}

// Watchdog observes the five heartbeat counters and escalates a stall to
// the supervisor (spec.md §4.7). It tracks elapsed time with wall-clock
// ticks, never via the counters themselves.
type Watchdog struct {
	Region *sharedstate.Region
	Tick   time.Duration // default 100ms
	Stall  time.Duration // default 2000ms

	// Recover is called once, at most, when any counter has been stalled
	// for >= Stall. The watchdog then exits (spec.md §4.7 "signal the
	// supervisor and exit").
	Recover func()

	lastValue map[sharedstate.ActorID]uint32
	lastSeen  map[sharedstate.ActorID]time.Time
}

// Run executes the watchdog loop until ctx is canceled or a stall is
// detected, in which case it calls Recover and returns.
func (w *Watchdog) Run(ctx context.Context) error {
	now := time.Now()
	w.lastValue = make(map[sharedstate.ActorID]uint32, len(watchedActors))
	w.lastSeen = make(map[sharedstate.ActorID]time.Time, len(watchedActors))
	for _, id := range watchedActors {
		w.lastValue[id] = w.Region.Heartbeats.Get(id)
		w.lastSeen[id] = now
	}

	ticker := time.NewTicker(w.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, id := range watchedActors {
				v := w.Region.Heartbeats.Get(id)
				if v != w.lastValue[id] {
					w.lastValue[id] = v
					w.lastSeen[id] = now
					continue
				}
				if now.Sub(w.lastSeen[id]) >= w.Stall {
					logging.Errorf("watchdog", "actor %s stalled for >= %s, signaling recovery", id, w.Stall)
					if w.Recover != nil {
						w.Recover()
					}
					return nil
				}
			}
		}
	}
}
