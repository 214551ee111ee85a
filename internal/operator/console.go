// Package operator implements the standalone operator console (spec.md
// §4.9): a TCP telemetry server, a UDP command sender, and a stdin
// command reader multiplexed over one select(2) loop, the way
// original_source/operator.c multiplexes its listening socket, its one
// telemetry client, and STDIN_FILENO with fd_set/select.
package operator

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/creack/goselect"

	"dronesys/internal/logging"
	"dronesys/internal/sharedstate"
	"dronesys/internal/wire"
)

// pollInterval bounds how long a single select() call blocks, so the
// loop can still observe ctx cancellation promptly. original_source's
// select() call blocks forever and relies on a SIGTERM handler instead;
// spec.md §9 replaces that with context cancellation.
const pollInterval = 200 * time.Millisecond

// Console is the operator-side process: it accepts one drone telemetry
// connection, prints whatever arrives on it, and sends operator commands
// typed on stdin to the drone's flight controller over UDP.
type Console struct {
	TelemetryAddr  string // host:port the drone dials into
	FlightCtrlAddr string // host:port of the drone's UDP command socket

	listener *net.TCPListener
	client   *net.TCPConn
	udpConn  *net.UDPConn
	stdin    *bufio.Reader

	listenerReady bool
	clientReady   bool
	stdinReady    bool
}

// Run parses addresses, opens the listening and sending sockets, and
// drives the select loop until ctx is canceled.
func (c *Console) Run(ctx context.Context) error {
	telAddr, err := net.ResolveTCPAddr("tcp", c.TelemetryAddr)
	if err != nil {
		return fmt.Errorf("bad telemetry address %q: %w", c.TelemetryAddr, err)
	}
	listener, err := net.ListenTCP("tcp", telAddr)
	if err != nil {
		return fmt.Errorf("listen(TCP) %s: %w", c.TelemetryAddr, err)
	}
	c.listener = listener
	defer c.listener.Close()
	logging.Infof("operator", "telemetry TCP listener created on %s", c.TelemetryAddr)

	fcAddr, err := net.ResolveUDPAddr("udp", c.FlightCtrlAddr)
	if err != nil {
		return fmt.Errorf("bad flight controller address %q: %w", c.FlightCtrlAddr, err)
	}
	udpConn, err := net.DialUDP("udp", nil, fcAddr)
	if err != nil {
		return fmt.Errorf("socket(UDP): %w", err)
	}
	c.udpConn = udpConn
	defer c.udpConn.Close()
	logging.Infof("operator", "UDP socket ready for flight controller commands")

	c.stdin = bufio.NewReader(os.Stdin)
	fmt.Println("Starting operator console...")
	fmt.Println("Valid commands: fly, samplegps, land, idle, charge, abort")

	for {
		select {
		case <-ctx.Done():
			c.closeClient()
			fmt.Println("Shutting down cleanly...")
			return nil
		default:
		}

		ready, err := c.poll()
		if err != nil {
			logging.Errorf("operator", "select: %v", err)
			continue
		}
		if !ready {
			continue
		}

		if c.listenerReady {
			c.acceptClient()
		}
		if c.client != nil && c.clientReady {
			c.readTelemetry()
		}
		if c.stdinReady {
			c.readCommand()
		}
	}
}

// poll runs one select() round, recording which descriptors are ready on
// the receiver's listenerReady/clientReady/stdinReady fields for Run to
// consume. It returns false (with every flag cleared) on a timeout.
func (c *Console) poll() (bool, error) {
	c.listenerReady, c.clientReady, c.stdinReady = false, false, false

	listenerFD, err := rawFD(c.listener)
	if err != nil {
		return false, err
	}
	stdinFD := uintptr(os.Stdin.Fd())

	rfds := &goselect.FDSet{}
	rfds.Zero()
	rfds.Set(listenerFD)
	rfds.Set(stdinFD)
	maxFD := listenerFD
	if stdinFD > maxFD {
		maxFD = stdinFD
	}

	var clientFD uintptr
	if c.client != nil {
		clientFD, err = rawFD(c.client)
		if err != nil {
			return false, err
		}
		rfds.Set(clientFD)
		if clientFD > maxFD {
			maxFD = clientFD
		}
	}

	timeout := pollInterval
	if err := goselect.Select(int(maxFD)+1, rfds, nil, nil, timeout); err != nil {
		return false, err
	}

	c.listenerReady = rfds.IsSet(listenerFD)
	c.stdinReady = rfds.IsSet(stdinFD)
	if c.client != nil {
		c.clientReady = rfds.IsSet(clientFD)
	}
	if !c.listenerReady && !c.stdinReady && !c.clientReady {
		return false, nil
	}
	return true, nil
}

func (c *Console) acceptClient() {
	conn, err := c.listener.AcceptTCP()
	if err != nil {
		logging.Errorf("operator", "accept: %v", err)
		return
	}
	c.closeClient()
	c.client = conn
	fmt.Println("Telemetry client connected.")
}

func (c *Console) readTelemetry() {
	buf := make([]byte, 1024)
	n, err := c.client.Read(buf)
	if n > 0 {
		fmt.Printf("[TELEMETRY] {\n%s}\n", buf[:n])
	}
	if err != nil {
		fmt.Println("Telemetry disconnected.")
		c.closeClient()
	}
}

func (c *Console) closeClient() {
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
	}
}

func (c *Console) readCommand() {
	line, err := c.stdin.ReadString('\n')
	if err != nil && line == "" {
		return
	}
	action, ok := parseCommand(line)
	if !ok {
		fmt.Printf("Invalid command: %s", line)
		fmt.Println("Valid: fly, samplegps, land, idle, charge, abort")
		return
	}

	buf := wire.EncodeCommand(action)
	if _, err := c.udpConn.Write(buf); err != nil {
		logging.Errorf("operator", "sendto: %v", err)
		return
	}
	fmt.Printf("Sent command %q via UDP.\n", strings.TrimSpace(line))
}

// parseCommand matches original_source/operator.c's get_action_from_cmd:
// case-insensitive, trailing newline tolerated.
func parseCommand(line string) (sharedstate.Action, bool) {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "samplegps":
		return sharedstate.SampleGPS, true
	case "fly":
		return sharedstate.Fly, true
	case "land":
		return sharedstate.Land, true
	case "idle":
		return sharedstate.Idle, true
	case "charge":
		return sharedstate.Charge, true
	case "abort":
		return sharedstate.Abort, true
	default:
		return 0, false
	}
}

// rawFD extracts the underlying file descriptor of a TCP socket without
// duplicating it or altering its blocking mode, for use with a raw
// select(2) call alongside Go's own netpoller.
func rawFD(c syscall.Conn) (uintptr, error) {
	rc, err := c.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd uintptr
	ctrlErr := rc.Control(func(f uintptr) { fd = f })
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}
