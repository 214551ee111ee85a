package actor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
)

const gpsDrainTimeout = 5 * time.Second

// Telemetry is the TCP client and the sole consumer of the GPS ring
// buffer (spec.md §4.6).
type Telemetry struct {
	Region       *sharedstate.Region
	Tick         time.Duration // default 10ms
	OperatorAddr string        // host:port

	// DebugWSAddr, when non-empty, starts a websocket mirror of every
	// telemetry message for external dashboards (SPEC_FULL.md §2).
	DebugWSAddr string

	// GPSDrainTimeout overrides the per-character wait when draining the
	// ring buffer; zero defaults to gpsDrainTimeout (5s, spec.md §4.6).
	GPSDrainTimeout time.Duration

	conn net.Conn

	mirror *telemetryMirror
}

// Run executes the telemetry loop until ctx is canceled.
func (t *Telemetry) Run(ctx context.Context) error {
	if t.DebugWSAddr != "" {
		t.mirror = newTelemetryMirror(t.DebugWSAddr)
		go t.mirror.serve()
		defer t.mirror.close()
	}

	ticker := time.NewTicker(t.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.closeConn()
			return nil
		case <-ticker.C:
			t.tick()
		}
	}
}

func (t *Telemetry) tick() {
	if t.conn == nil {
		if err := t.connect(); err != nil {
			logging.Errorf("telemetry", "connect %s failed: %v", t.OperatorAddr, err)
			t.Region.Heartbeats.Bump(sharedstate.ActorTelemetry)
			return
		}
	}

	msg := t.compose()
	if t.mirror != nil {
		t.mirror.broadcast(msg)
	}

	if _, err := t.conn.Write([]byte(msg)); err != nil {
		logging.Warnf("telemetry", "send failed, will reconnect: %v", err)
		t.closeConn()
	}

	t.Region.Heartbeats.Bump(sharedstate.ActorTelemetry)
}

func (t *Telemetry) connect() error {
	conn, err := net.DialTimeout("tcp", t.OperatorAddr, 2*time.Second)
	if err != nil {
		return err
	}
	t.conn = conn
	return nil
}

func (t *Telemetry) closeConn() {
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
}

// compose builds one tick's message in the exact order spec.md §4.6
// requires. ACCEL and MOTORS sections appear only on successful
// try-locks, making partial messages acceptable.
func (t *Telemetry) compose() string {
	var b strings.Builder

	fmt.Fprintf(&b, "BAT = %d%%\n", t.Region.Battery())

	if accel, ok := t.Region.TryAccel(); ok {
		fmt.Fprintf(&b, "ACCEL = (x: %.6f, y: %.6f, z: %.6f)\n", accel.X, accel.Y, accel.Z)
	}

	if motors, ok := t.Region.TryPWM(); ok {
		fmt.Fprintf(&b, "MOTORS PWM = [%d%%, %d%%, %d%%, %d%%]\n",
			pctRound(motors.Values[0]), pctRound(motors.Values[1]),
			pctRound(motors.Values[2]), pctRound(motors.Values[3]))
	}

	action := t.Region.Action()
	fmt.Fprintf(&b, "ACTION = %d\n", uint8(action))

	if action == sharedstate.SampleGPS {
		gps, noFix := t.drainGPS()
		if noFix {
			b.WriteString("GPS { " + gps + "NO FIX. }\n")
			t.Region.SetAction(sharedstate.Abort)
		} else {
			b.WriteString("GPS { " + gps + " }\n")
		}
	}

	return b.String()
}

// drainGPS reads characters from the ring buffer until a newline or the
// buffer's capacity is reached. If full isn't signaled within
// GPSDrainTimeout (5 seconds when unset), it returns noFix=true
// (spec.md §4.6).
func (t *Telemetry) drainGPS() (sample string, noFix bool) {
	timeout := t.GPSDrainTimeout
	if timeout <= 0 {
		timeout = gpsDrainTimeout
	}

	var b strings.Builder
	capacity := t.Region.GPS.Capacity()
	for i := 0; i < capacity; i++ {
		c, err := t.Region.GPS.Pop(timeout)
		if err != nil {
			return b.String(), true
		}
		if c == '\n' {
			break
		}
		b.WriteByte(c)
	}
	return b.String(), false
}

func pctRound(f float64) int {
	return int(f*100 + 0.5)
}

// telemetryMirror optionally fans out the telemetry text stream over
// websocket for external dashboards, the way core.FogServer.broadcast /
// handleWS fan out vehicle telemetry to websocket clients in the teacher
// repo.
type telemetryMirror struct {
	addr     string
	upgrader websocket.Upgrader
	srv      *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newTelemetryMirror(addr string) *telemetryMirror {
	m := &telemetryMirror{
		addr:     addr,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]bool),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", m.handleWS)
	m.srv = &http.Server{Addr: addr, Handler: mux}
	return m
}

func (m *telemetryMirror) serve() {
	if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Errorf("telemetry", "debug ws server error: %v", err)
	}
}

func (m *telemetryMirror) close() {
	_ = m.srv.Close()
}

func (m *telemetryMirror) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *telemetryMirror) broadcast(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.clients {
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			_ = c.Close()
			delete(m.clients, c)
		}
	}
}
