// Package config loads the tunable parameters of the drone subsystem from a
// YAML document: ring buffer capacity and per-actor tick intervals. None
// of these values are contracts of the specification; they are knobs the
// original C source hardcoded as #define.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tick holds the per-actor loop period, overriding spec.md §4's defaults.
type Tick struct {
	BatteryMicros       int `yaml:"battery_tick_us"`
	FlightMillis        int `yaml:"flight_tick_ms"`
	AccelMillis         int `yaml:"accel_tick_ms"`
	GPSMillis           int `yaml:"gps_tick_ms"`
	TelemetryMillis     int `yaml:"telemetry_tick_ms"`
	WatchdogMillis      int `yaml:"watchdog_tick_ms"`
	WatchdogStallMillis int `yaml:"watchdog_stall_ms"`
}

// Config is the root document loaded from disk. Network addresses and
// ports are never read from it: spec.md §6 requires them as CLI
// arguments, and those always take precedence.
type Config struct {
	RingCapacity int  `yaml:"ring_capacity"`
	Tick         Tick `yaml:"tick"`

	// DebugWSAddr, when non-empty, starts a websocket mirror of the
	// telemetry stream for external dashboards. Off by default.
	DebugWSAddr string `yaml:"debug_ws_addr"`

	// GPSDevice, when non-empty, switches the GPS producer from the
	// canned NMEA sample table to a real serial device.
	GPSDevice string `yaml:"gps_device"`
	GPSBaud   int    `yaml:"gps_baud"`
}

// Default returns the configuration matching the original C source's
// hardcoded constants.
func Default() Config {
	return Config{
		RingCapacity: 1280,
		Tick: Tick{
			BatteryMicros:       100,
			FlightMillis:        50,
			AccelMillis:         10,
			GPSMillis:           1000,
			TelemetryMillis:     10,
			WatchdogMillis:      100,
			WatchdogStallMillis: 2000,
		},
	}
}

// Load reads a YAML document at path and overlays it onto Default().
// A missing file is not an error: the defaults apply and only CLI
// arguments (network endpoints) are required.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// BatteryInterval returns the battery tick period as a time.Duration.
func (t Tick) BatteryInterval() time.Duration { return time.Duration(t.BatteryMicros) * time.Microsecond }

// FlightInterval returns the flight controller tick period.
func (t Tick) FlightInterval() time.Duration { return time.Duration(t.FlightMillis) * time.Millisecond }

// AccelInterval returns the accelerometer tick period.
func (t Tick) AccelInterval() time.Duration { return time.Duration(t.AccelMillis) * time.Millisecond }

// GPSInterval returns the GPS producer tick period.
func (t Tick) GPSInterval() time.Duration { return time.Duration(t.GPSMillis) * time.Millisecond }

// TelemetryInterval returns the telemetry actor tick period.
func (t Tick) TelemetryInterval() time.Duration {
	return time.Duration(t.TelemetryMillis) * time.Millisecond
}

// WatchdogInterval returns the watchdog tick period.
func (t Tick) WatchdogInterval() time.Duration {
	return time.Duration(t.WatchdogMillis) * time.Millisecond
}

// WatchdogStall returns the no-progress duration that triggers recovery.
func (t Tick) WatchdogStall() time.Duration {
	return time.Duration(t.WatchdogStallMillis) * time.Millisecond
}
