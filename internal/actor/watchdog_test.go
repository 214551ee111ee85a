package actor

import (
	"context"
	"testing"
	"time"

	"dronesys/internal/sharedstate"
)

func TestWatchdogDetectsStallAndRecovers(t *testing.T) {
	region := newTestRegion(t)
	region.Heartbeats.Bump(sharedstate.ActorBattery)

	recovered := make(chan struct{})
	w := &Watchdog{
		Region:  region,
		Tick:    time.Millisecond,
		Stall:   5 * time.Millisecond,
		Recover: func() { close(recovered) },
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-recovered:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("watchdog never called Recover on a stalled counter")
	}

	if err := <-done; err != nil {
		t.Errorf("Run() = %v, want nil", err)
	}
}

func TestWatchdogDoesNotRecoverWhileCountersProgress(t *testing.T) {
	region := newTestRegion(t)

	recovered := false
	w := &Watchdog{
		Region:  region,
		Tick:    time.Millisecond,
		Stall:   20 * time.Millisecond,
		Recover: func() { recovered = true },
	}

	stopBumping := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopBumping:
				return
			case <-ticker.C:
				region.Heartbeats.Bump(sharedstate.ActorBattery)
				region.Heartbeats.Bump(sharedstate.ActorAccel)
				region.Heartbeats.Bump(sharedstate.ActorFlightCtrl)
				region.Heartbeats.Bump(sharedstate.ActorGPS)
				region.Heartbeats.Bump(sharedstate.ActorTelemetry)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	err := w.Run(ctx)
	close(stopBumping)
	cancel()

	if err != nil {
		t.Errorf("Run() = %v, want nil (ctx expired before a stall)", err)
	}
	if recovered {
		t.Error("Recover was called despite every counter making progress")
	}
}
