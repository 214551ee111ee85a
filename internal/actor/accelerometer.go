package actor

import (
	"context"
	"math"
	"math/rand"
	"time"

	"dronesys/internal/sharedstate"
)

// Simulation parameters. spec.md §4.4 marks these as tunable, not
// contractual — only the fact that acceleration derives from current PWM
// plus additive noise is a contract, since the Flight Controller's stall
// detection (§4.3) depends on it changing tick to tick.
const (
	maxThrust  = 19.62
	diffFactor = 0.2
	gravity    = 9.81
	noiseXY    = 0.02
	noiseZ     = 0.05
)

// Accelerometer is the sole writer of the acceleration triple (spec.md
// §4.4). It simulates acceleration from the current motor PWM with
// additive Gaussian noise.
type Accelerometer struct {
	Region *sharedstate.Region
	Tick   time.Duration // default 10ms
	Rand   *rand.Rand    // nil uses the package-level source
}

// Run executes the accelerometer loop until ctx is canceled.
func (a *Accelerometer) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			motors := a.Region.PWM()
			avg := (motors.Values[0] + motors.Values[1] + motors.Values[2] + motors.Values[3]) / 4

			nx := a.gaussian(noiseXY)
			ny := a.gaussian(noiseXY)
			nz := a.gaussian(noiseZ)

			accel := sharedstate.Acceleration{
				X: diffFactor*(motors.Values[0]-motors.Values[1]) + nx,
				Y: diffFactor*(motors.Values[2]-motors.Values[3]) + ny,
				Z: avg*maxThrust - gravity + nz,
			}
			a.Region.SetAccel(accel)
			a.Region.Heartbeats.Bump(sharedstate.ActorAccel)
		}
	}
}

// gaussian returns one Box-Muller sample scaled by sigma, drawn from two
// independent uniforms as spec.md §4.4 specifies.
func (a *Accelerometer) gaussian(sigma float64) float64 {
	u1, u2 := a.uniform(), a.uniform()
	// avoid log(0)
	if u1 <= 1e-12 {
		u1 = 1e-12
	}
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
	return z * sigma
}

func (a *Accelerometer) uniform() float64 {
	if a.Rand != nil {
		return a.Rand.Float64()
	}
	return rand.Float64()
}
