package actor

import (
	"context"
	"testing"
	"time"

	"dronesys/internal/sharedstate"
)

func newTestRegion(t *testing.T) *sharedstate.Region {
	t.Helper()
	return sharedstate.NewRegion(16, sharedstate.NetworkInfo{
		OperatorIP: "127.0.0.1", OperatorPort: 9000,
		DroneIP: "127.0.0.1", FlightCtrlPort: 9001,
	})
}

func runUntilCanceled(t *testing.T, run func(ctx context.Context) error, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return run(ctx)
}

func TestBatteryDoesNotDischargeBeforeInterval(t *testing.T) {
	region := newTestRegion(t)
	b := &Battery{Region: region, Tick: time.Millisecond}

	// batteryDischargeInterval is 2s of simulated elapsed time; with a 1ms
	// tick, a handful of ticks won't cross that threshold yet.
	if err := runUntilCanceled(t, b.Run, 20*time.Millisecond); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := region.Battery(); got != 100 {
		t.Errorf("Battery() after a short run = %d, want unchanged 100", got)
	}
}

func TestBatteryForcesAbortBelowThreshold(t *testing.T) {
	region := newTestRegion(t)
	region.SetBattery(batteryLowThreshold) // one discharge tick crosses below 15

	b := &Battery{Region: region, Tick: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()

	deadline := time.After(3 * time.Second)
	for region.Action() != sharedstate.Abort {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("battery never forced Abort, battery=%d action=%s", region.Battery(), region.Action())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	<-done
}

func TestBatteryChargesWhenActionIsCharge(t *testing.T) {
	region := newTestRegion(t)
	region.SetBattery(50)
	region.SetAction(sharedstate.Charge)

	b := &Battery{Region: region, Tick: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(done)
	}()

	deadline := time.After(1500 * time.Millisecond)
	for region.Battery() <= 50 {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatalf("battery never increased while charging, battery=%d", region.Battery())
		default:
			time.Sleep(time.Millisecond)
		}
	}
	cancel()
	<-done
}
