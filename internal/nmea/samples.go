// Package nmea holds the static table of sample NMEA sentences the GPS
// Producer cycles through (spec.md §4.5). The specific sample corpus is
// explicitly out of scope per spec.md §1 ("the specific NMEA sample
// corpus"); this table exists only so the producer has something fixed
// and deterministic to emit, the same role original_source/gps_ctrl.c's
// hardcoded sample array plays.
package nmea

// Samples is the fixed, cyclic table of sentences the GPS Producer emits
// once per second. The producer does not check Action; once the ring
// buffer is full, its pushes succeed only as Telemetry drains the buffer,
// which Telemetry does only while Action == SampleGPS.
var Samples = []string{
	"$GPGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,*47\n",
	"$GPRMC,123520,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A\n",
	"$GPGGA,123521,4807.036,N,01131.002,E,1,08,0.9,545.6,M,46.9,M,,*4B\n",
	"$GPRMC,123522,A,4807.034,N,01131.004,E,022.6,084.6,230394,003.1,W*68\n",
}
