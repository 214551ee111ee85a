// Operator console program: the standalone binary wrapping
// internal/operator.Console (spec.md §4.9).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dronesys/internal/operator"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 5 {
		fmt.Fprintf(os.Stderr,
			"Usage: %s <operator_ip> <telemetry_tcp_port> <drone_ip> <flight_ctrl_udp_port>\n",
			os.Args[0])
		return 1
	}

	console := &operator.Console{
		TelemetryAddr:  fmt.Sprintf("%s:%s", os.Args[1], os.Args[2]),
		FlightCtrlAddr: fmt.Sprintf("%s:%s", os.Args[3], os.Args[4]),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := console.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "operator console: %v\n", err)
		return 1
	}
	return 0
}
