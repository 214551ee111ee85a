package actor

import (
	"context"
	"testing"
	"time"
)

func TestEmitSamplePushesEveryByte(t *testing.T) {
	region := newTestRegion(t)
	g := &GPSProducer{Region: region}

	sample := "$GPGGA,X\n"
	g.emitSample(sample)

	for i := 0; i < len(sample); i++ {
		b, err := region.GPS.Pop(time.Second)
		if err != nil {
			t.Fatalf("Pop() at index %d = %v", i, err)
		}
		if b != sample[i] {
			t.Errorf("Pop() at index %d = %q, want %q", i, b, sample[i])
		}
	}
}

func TestEmitSampleAbandonsOnFullBuffer(t *testing.T) {
	region := newTestRegion(t) // ring capacity 16
	g := &GPSProducer{Region: region}

	// 19 bytes into a 16-byte ring with nobody draining: the push loop
	// must abandon rather than block forever.
	done := make(chan struct{})
	go func() {
		g.emitSample("0123456789012345678")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emitSample did not abandon on a full buffer within gpsPushTimeout")
	}
}

func TestEmitSampleReportsCompletion(t *testing.T) {
	fits := newTestRegion(t) // ring capacity 16, empty
	g := &GPSProducer{Region: fits}
	if ok := g.emitSample("short"); !ok {
		t.Error("emitSample() on a sample that fits = false, want true")
	}

	full := newTestRegion(t) // ring capacity 16, pre-filled so every push blocks
	for i := 0; i < 16; i++ {
		if err := full.GPS.Push('x', time.Second); err != nil {
			t.Fatalf("Push() to fill buffer: %v", err)
		}
	}
	g2 := &GPSProducer{Region: full}
	if ok := g2.emitSample("y"); ok {
		t.Error("emitSample() on a full buffer = true, want false (abandoned)")
	}
}

func TestRunDoesNotAdvanceSampleIndexOnAbandon(t *testing.T) {
	region := newTestRegion(t) // ring capacity 16, pre-filled so every push times out
	for i := 0; i < 16; i++ {
		if err := region.GPS.Push('x', time.Second); err != nil {
			t.Fatalf("Push() to fill buffer: %v", err)
		}
	}
	g := &GPSProducer{Region: region, Tick: 10 * time.Millisecond, Samples: []string{"A", "B"}}

	// One tick is enough to observe the abandonment: emitSample blocks for
	// gpsPushTimeout (1s) before giving up, so this ctx deadline only needs
	// to exceed that by a margin once the tick fires.
	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()
	_ = g.Run(ctx)

	if g.sampleIdx != 0 {
		t.Errorf("sampleIdx = %d, want 0 (an abandoned sample must be retried, not skipped)", g.sampleIdx)
	}
}

func TestRunCyclesThroughSamples(t *testing.T) {
	region := newTestRegion(t)
	samples := []string{"A", "B"}
	g := &GPSProducer{Region: region, Tick: time.Millisecond, Samples: samples}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	seen := map[byte]bool{}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			b, err := region.GPS.Pop(50 * time.Millisecond)
			if err != nil {
				return
			}
			seen[b] = true
		}
	}()

	_ = g.Run(ctx)
	<-drained

	if !seen['A'] || !seen['B'] {
		t.Errorf("expected both samples to have been emitted, saw %v", seen)
	}
}
