// Drone-side process: spawns the six actors under one supervisor (spec.md
// §4.8). Positional arguments mirror original_source/drone_sys.c's argv
// layout exactly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"dronesys/internal/actor"
	"dronesys/internal/config"
	"dronesys/internal/sharedstate"
	"dronesys/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 5 {
		fmt.Fprintf(os.Stderr,
			"Usage: %s <operator_ip> <operator_tcp_port> <drone_ip> <flight_ctrl_udp_port> [config.yaml]\n",
			os.Args[0])
		return 1
	}

	operatorIP := os.Args[1]
	operatorPort, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad operator_tcp_port %q: %v\n", os.Args[2], err)
		return 1
	}
	droneIP := os.Args[3]
	flightPort, err := strconv.Atoi(os.Args[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad flight_ctrl_udp_port %q: %v\n", os.Args[4], err)
		return 1
	}

	configPath := ""
	if len(os.Args) > 5 {
		configPath = os.Args[5]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	netInfo := sharedstate.NetworkInfo{
		OperatorIP:     operatorIP,
		OperatorPort:   uint16(operatorPort),
		DroneIP:        droneIP,
		FlightCtrlPort: uint16(flightPort),
	}
	region := sharedstate.NewRegion(cfg.RingCapacity, netInfo)

	sup := supervisor.New(region)

	watchdog := &actor.Watchdog{
		Region: region,
		Tick:   cfg.Tick.WatchdogInterval(),
		Stall:  cfg.Tick.WatchdogStall(),
	}
	watchdog.Recover = sup.RequestRecovery

	sup.Register(sharedstate.ActorBattery, (&actor.Battery{
		Region: region,
		Tick:   cfg.Tick.BatteryInterval(),
	}).Run)
	sup.Register(sharedstate.ActorAccel, (&actor.Accelerometer{
		Region: region,
		Tick:   cfg.Tick.AccelInterval(),
	}).Run)
	sup.Register(sharedstate.ActorFlightCtrl, (&actor.FlightController{
		Region:  region,
		Tick:    cfg.Tick.FlightInterval(),
		DroneIP: droneIP,
		Port:    uint16(flightPort),
	}).Run)
	sup.Register(sharedstate.ActorGPS, (&actor.GPSProducer{
		Region: region,
		Tick:   cfg.Tick.GPSInterval(),
		Device: cfg.GPSDevice,
		Baud:   cfg.GPSBaud,
	}).Run)
	sup.Register(sharedstate.ActorTelemetry, (&actor.Telemetry{
		Region:       region,
		Tick:         cfg.Tick.TelemetryInterval(),
		OperatorAddr: fmt.Sprintf("%s:%d", operatorIP, operatorPort),
		DebugWSAddr:  cfg.DebugWSAddr,
	}).Run)
	sup.Register(sharedstate.ActorWatchdog, watchdog.Run)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("drone system starting")
	sup.Run(ctx)
	sup.Wait()
	log.Println("drone system stopped")
	return 0
}
