package actor

import (
	"bufio"
	"context"
	"time"

	serial "go.bug.st/serial"

	"dronesys/internal/logging"
	"dronesys/internal/nmea"
	"dronesys/internal/sharedstate"
)

const gpsPushTimeout = 1 * time.Second

// GPSProducer is the sole writer of the NMEA ring buffer (spec.md §4.5).
// It cycles through a static sample table once per second, gated only by
// the ring buffer's empty-semaphore appetite — it does not inspect Action
// itself; flow control comes entirely from the consumer.
type GPSProducer struct {
	Region  *sharedstate.Region
	Tick    time.Duration // default 1000ms
	Samples []string      // defaults to nmea.Samples

	// Device, when non-empty, switches to streaming raw lines from a real
	// serial GPS receiver instead of the canned table (SPEC_FULL.md §2).
	Device string
	Baud   int

	sampleIdx int
	port      serial.Port
	reader    *bufio.Reader
}

// Run executes the GPS producer loop until ctx is canceled.
func (g *GPSProducer) Run(ctx context.Context) error {
	samples := g.Samples
	if len(samples) == 0 {
		samples = nmea.Samples
	}

	if g.Device != "" {
		if err := g.openSerial(); err != nil {
			logging.Errorf("gps", "open serial %s failed, falling back to sample table: %v", g.Device, err)
			g.Device = ""
		} else {
			defer g.closeSerial()
		}
	}

	ticker := time.NewTicker(g.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if g.Device != "" {
				g.emitFromSerial()
			} else if g.emitSample(samples[g.sampleIdx]) {
				g.sampleIdx = (g.sampleIdx + 1) % len(samples)
			}
			g.Region.Heartbeats.Bump(sharedstate.ActorGPS)
		}
	}
}

// emitSample pushes each character of sample into the ring buffer,
// abandoning the sample if empty isn't signaled within 1 second. It
// reports whether the whole sample was pushed: on abandonment the caller
// must retry the same sample next tick rather than advance past it,
// matching original_source/gps_ctrl.c's goto _wdg, which skips the
// sample_index increment.
func (g *GPSProducer) emitSample(sample string) bool {
	for i := 0; i < len(sample); i++ {
		if err := g.Region.GPS.Push(sample[i], gpsPushTimeout); err != nil {
			logging.Warnf("gps", "sample abandoned: %v", err)
			return false
		}
	}
	return true
}

func (g *GPSProducer) openSerial() error {
	p, err := serial.Open(g.Device, &serial.Mode{BaudRate: g.Baud})
	if err != nil {
		return err
	}
	g.port = p
	g.reader = bufio.NewReader(p)
	return nil
}

func (g *GPSProducer) closeSerial() {
	if g.port != nil {
		_ = g.port.Close()
		g.port = nil
	}
}

// emitFromSerial reads one line from the real GPS receiver and pushes its
// raw bytes into the ring buffer. It moves bytes only — it does not parse
// NMEA sentences, keeping "real GPS decoding" out of scope per spec.md §1.
func (g *GPSProducer) emitFromSerial() {
	if g.reader == nil {
		return
	}
	line, err := g.reader.ReadString('\n')
	if err != nil {
		return
	}
	g.emitSample(line)
}
