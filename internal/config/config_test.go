package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RingCapacity != 1280 {
		t.Errorf("RingCapacity = %d, want 1280", cfg.RingCapacity)
	}
	if got := cfg.Tick.BatteryInterval(); got != 100*time.Microsecond {
		t.Errorf("BatteryInterval() = %s, want 100µs", got)
	}
	if got := cfg.Tick.FlightInterval(); got != 50*time.Millisecond {
		t.Errorf("FlightInterval() = %s, want 50ms", got)
	}
	if got := cfg.Tick.WatchdogStall(); got != 2000*time.Millisecond {
		t.Errorf("WatchdogStall() = %s, want 2000ms", got)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() = %v, want nil error for a missing file", err)
	}
	if cfg.RingCapacity != Default().RingCapacity {
		t.Errorf("Load() on a missing file = %+v, want Default()", cfg)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if cfg.RingCapacity != Default().RingCapacity {
		t.Errorf("Load(\"\") = %+v, want Default()", cfg)
	}
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "ring_capacity: 256\ntick:\n  battery_tick_us: 50\ndebug_ws_addr: \":9999\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.RingCapacity != 256 {
		t.Errorf("RingCapacity = %d, want 256", cfg.RingCapacity)
	}
	if cfg.Tick.BatteryMicros != 50 {
		t.Errorf("Tick.BatteryMicros = %d, want 50", cfg.Tick.BatteryMicros)
	}
	if cfg.DebugWSAddr != ":9999" {
		t.Errorf("DebugWSAddr = %q, want %q", cfg.DebugWSAddr, ":9999")
	}
	// Fields absent from the document keep their default.
	if cfg.Tick.FlightMillis != Default().Tick.FlightMillis {
		t.Errorf("Tick.FlightMillis = %d, want default %d", cfg.Tick.FlightMillis, Default().Tick.FlightMillis)
	}
}
