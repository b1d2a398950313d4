// Package wheel models the selection wheel: an impulse/decay rotation
// engine and the pointer-resolution algorithm that maps a rotation angle
// back to a segment and a contributing sender.
package wheel

import (
	"math"
	"math/rand"
	"time"
)

// SpinConfig tunes the impulse/decay rotation model. Angles are in degrees,
// velocities in degrees per tick.
type SpinConfig struct {
	ImpulseMin  float64
	ImpulseMax  float64
	MaxVelocity float64
	Decay       float64
	StopEpsilon float64
}

// DefaultSpinConfig returns the stock tuning.
func DefaultSpinConfig() SpinConfig {
	return SpinConfig{
		ImpulseMin:  18,
		ImpulseMax:  28,
		MaxVelocity: 120,
		Decay:       0.985,
		StopEpsilon: 0.05,
	}
}

// Engine owns the wheel's rotation angle and angular velocity. It is
// advanced by the consumer loop's fixed tick and is not safe for concurrent
// use.
type Engine struct {
	cfg      SpinConfig
	rng      *rand.Rand
	rotation float64
	velocity float64
	spinning bool
}

// NewEngine creates an idle engine. A nil rng gets a time-seeded source;
// tests pass a fixed seed.
func NewEngine(cfg SpinConfig, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, rng: rng}
}

// Rotation returns the current angle in [0,360).
func (e *Engine) Rotation() float64 { return e.rotation }

// Velocity returns the current angular velocity in degrees per tick.
func (e *Engine) Velocity() float64 { return e.velocity }

// Spinning reports whether the wheel is in motion.
func (e *Engine) Spinning() bool { return e.spinning }

// Spin adds a random impulse drawn uniformly from the configured range,
// clamped to the configured maximum. A request against a view with zero
// total weight is rejected: the return value is false and the engine is
// untouched ("nothing to spin").
func (e *Engine) Spin(totalWeight int) bool {
	if totalWeight <= 0 {
		return false
	}
	e.velocity += e.cfg.ImpulseMin + e.rng.Float64()*(e.cfg.ImpulseMax-e.cfg.ImpulseMin)
	e.velocity = math.Min(e.velocity, e.cfg.MaxVelocity)
	e.spinning = true
	return true
}

// Tick advances the rotation by one fixed period: the angle moves by the
// current velocity (wrapped to [0,360)) and the velocity decays
// exponentially, snapping to 0 below the stop epsilon.
func (e *Engine) Tick() {
	if !e.spinning && e.velocity <= 0 {
		return
	}
	e.rotation = math.Mod(e.rotation+e.velocity, 360)
	e.velocity *= e.cfg.Decay
	if e.velocity < e.cfg.StopEpsilon {
		e.velocity = 0
		e.spinning = false
	}
}
